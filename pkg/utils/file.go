package utils

import (
	"github.com/gabriel-vasile/mimetype"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// DetectImage sniffs data and reports its mime type and canonical extension.
// ok is false for anything that is not an accepted image format.
func DetectImage(data []byte) (mimeType, ext string, ok bool) {
	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		if allowedImageTypes[m.String()] {
			return m.String(), m.Extension(), true
		}
	}
	return mt.String(), mt.Extension(), false
}
