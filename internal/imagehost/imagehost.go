// Package imagehost stores product photos and returns the URL to serve
// them from.
package imagehost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

const MaxImageSize = 5 << 20

var (
	ErrMissingExtension = errors.New("image file extension is required")
	ErrUnsupportedType  = errors.New("unsupported image type")
	ErrTooLarge         = errors.New("image file too large (max 5MB)")
)

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

// Host uploads one image and returns its public URL.
type Host interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Remover is implemented by hosts that can delete what they stored.
type Remover interface {
	Remove(url string) error
}

// CheckImage validates the file name and size of an upload and returns
// the lower-cased extension.
func CheckImage(filename string, size int64) (string, error) {
	extension := strings.ToLower(filepath.Ext(filename))
	if extension == "" {
		return "", ErrMissingExtension
	}
	if _, ok := allowedExtensions[extension]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, extension)
	}
	if size > MaxImageSize {
		return "", ErrTooLarge
	}
	return extension, nil
}
