package utils

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // webp decoding for uploads
)

// FitImage downsizes data so that neither edge exceeds maxDimension.
// Images already within bounds are returned untouched with resized=false.
// Resized output is PNG for PNG input and JPEG otherwise.
func FitImage(data []byte, maxDimension int) (out []byte, resized bool, err error) {
	if maxDimension <= 0 {
		return data, false, nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("file is not a valid image: %w", err)
	}
	if cfg.Width <= maxDimension && cfg.Height <= maxDimension {
		return data, false, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, false, fmt.Errorf("corrupt image data: %w", err)
	}

	fitted := imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if format == "png" {
		err = png.Encode(buf, fitted)
	} else {
		err = jpeg.Encode(buf, fitted, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		return nil, false, err
	}
	return buf.Bytes(), true, nil
}
