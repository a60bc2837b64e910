package captioning

import (
	"strings"

	"github.com/lehigh-university-libraries/promptcaptioner/internal/models"
)

const (
	DefaultImagePrompt = "Describe this image as a prompt. But don't say anything about the characteristics and styles, prompt about the movement and background, and the clothes this character is wearing in detailed, and detailed on background"

	DefaultVideoPrompt = "Describe this video as a prompt. but without the characteristics and styles, just the movement and clothes, extra detail on clothes."
)

// BuildPrompt returns the instruction for a media kind. A non-empty override replaces the
// default; character, when set, is appended so the model names the subject.
func BuildPrompt(kind models.MediaKind, override, character string) string {
	prompt := override
	if prompt == "" {
		switch kind {
		case models.KindVideo:
			prompt = DefaultVideoPrompt
		default:
			prompt = DefaultImagePrompt
		}
	}
	if character = strings.TrimSpace(character); character != "" {
		prompt = strings.TrimSpace(prompt) + " character name " + character
	}
	return prompt
}

// CleanCaption strips an echoed copy of the instruction from the start of the model
// output and trims surrounding whitespace.
func CleanCaption(raw, instruction string) string {
	text := strings.TrimSpace(raw)
	instruction = strings.TrimSpace(instruction)
	if instruction != "" && strings.HasPrefix(text, instruction) {
		text = strings.TrimPrefix(text, instruction)
	}
	return strings.TrimSpace(text)
}
