package service

import (
	"fmt"
	"image"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"canvas/internal/storage"
)

// decodeImageFile reads and decodes one image asset. Every error is
// folded into ErrImageUnavailable: the loader treats a missing file and
// an undecodable file the same way.
func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrImageUnavailable, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", storage.ErrImageUnavailable, path, err)
	}
	return img, nil
}
