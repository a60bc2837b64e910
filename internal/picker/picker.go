package picker

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
)

// ErrCancelled is returned when the user declines to choose a folder
var ErrCancelled = errors.New("no folder selected")

// Picker asks the user for a directory to process
type Picker interface {
	PickDirectory(title string) (string, error)
}

// Prompt reads a folder path from the terminal with line editing and history
type Prompt struct {
	Stdin  io.ReadCloser
	Stdout io.Writer
}

// PickDirectory prompts until the user enters an existing directory. An empty line,
// Ctrl-C or Ctrl-D cancel the selection.
func (p *Prompt) PickDirectory(title string) (string, error) {
	cfg := &readline.Config{
		Prompt:          title + ": ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	}
	if p.Stdin != nil {
		cfg.Stdin = p.Stdin
	}
	if p.Stdout != nil {
		cfg.Stdout = p.Stdout
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to open prompt: %w", err)
	}
	defer func() {
		_ = rl.Close()
	}()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		if err != nil {
			return "", err
		}

		dir, err := Resolve(line)
		if errors.Is(err, ErrCancelled) {
			return "", ErrCancelled
		}
		if err != nil {
			fmt.Fprintln(rl.Stderr(), err)
			continue
		}
		return dir, nil
	}
}

// Resolve cleans a typed path and checks it names a directory. Surrounding quotes from
// drag-and-drop and a leading ~ are handled.
func Resolve(input string) (string, error) {
	dir := strings.TrimSpace(input)
	dir = strings.Trim(dir, `"'`)
	if dir == "" {
		return "", ErrCancelled
	}

	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}

	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("folder %q does not exist", dir)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%q is not a folder", dir)
	}
	return filepath.Clean(dir), nil
}
