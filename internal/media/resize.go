package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"os"

	"github.com/lehigh-university-libraries/promptcaptioner/internal/utils"
	"golang.org/x/image/draw"
)

// Image is the encoded image that will be sent to the model
type Image struct {
	Data     []byte
	MIMEType string
	Width    int
	Height   int
	Resized  bool
}

// FitWithin returns the dimensions of w x h scaled down so that the pixel count does not
// exceed maxPixels. The scale factor is the square root of the area ratio, which keeps
// the aspect ratio. The last result is false when no scaling is needed.
func FitWithin(w, h, maxPixels int) (int, int, bool) {
	if maxPixels <= 0 || w*h <= maxPixels {
		return w, h, false
	}
	ratio := math.Sqrt(float64(maxPixels) / float64(w*h))
	nw := max(int(float64(w)*ratio), 1)
	nh := max(int(float64(h)*ratio), 1)
	// float error can land one pixel over
	for nw*nh > maxPixels && nw > 1 && nh > 1 {
		if nw >= nh {
			nw--
		} else {
			nh--
		}
	}
	return nw, nh, true
}

// LoadImage reads the image at path. Images over maxPixels are scaled down into a new
// buffer; the file on disk is not modified.
func LoadImage(path string, maxPixels int) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image header: %w", err)
	}

	nw, nh, needed := FitWithin(cfg.Width, cfg.Height, maxPixels)
	if !needed {
		return &Image{
			Data:     data,
			MIMEType: "image/" + format,
			Width:    cfg.Width,
			Height:   cfg.Height,
		}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, dst)
	default:
		format = "jpeg"
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 95})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}

	return &Image{
		Data:     buf.Bytes(),
		MIMEType: "image/" + format,
		Width:    nw,
		Height:   nh,
		Resized:  true,
	}, nil
}

// ReplaceSource overwrites the original file with the resized image
func ReplaceSource(path string, img *Image) error {
	if !img.Resized {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return utils.WriteFileAtomic(path, img.Data, info.Mode().Perm())
}
