package imagehost

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PublicPrefix = "/public"
	uploadsDir   = "uploads/products"
)

// Local keeps uploads on disk under root. Files are served by the HTTP
// server at PublicPrefix.
type Local struct {
	root string
}

func NewLocal(root string) *Local {
	return &Local{root: root}
}

func (l *Local) Root() string { return l.root }

func (l *Local) Upload(_ context.Context, filename string, r io.Reader) (string, error) {
	extension, err := CheckImage(filename, 0)
	if err != nil {
		return "", err
	}

	name := primitive.NewObjectID().Hex() + extension
	dir := filepath.Join(l.root, filepath.FromSlash(uploadsDir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("[UPLOAD] failed to create directory %s: %v", dir, err)
		return "", err
	}

	fullPath := filepath.Join(dir, name)
	out, err := os.Create(fullPath)
	if err != nil {
		log.Printf("[UPLOAD] failed to create file %s: %v", fullPath, err)
		return "", err
	}
	defer out.Close()

	written, err := io.Copy(out, io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		_ = os.Remove(fullPath)
		return "", err
	}
	if written > MaxImageSize {
		out.Close()
		_ = os.Remove(fullPath)
		return "", ErrTooLarge
	}

	log.Printf("[UPLOAD] stored %s (%d bytes)", fullPath, written)
	return path.Join(PublicPrefix, uploadsDir, name), nil
}

// Remove deletes a file previously returned by Upload. URLs that do not
// point into the uploads directory are refused; missing files are not
// an error.
func (l *Local) Remove(url string) error {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return nil
	}

	cleanRel := path.Clean("/" + strings.TrimPrefix(trimmed, "/"))
	cleanRel = strings.TrimPrefix(cleanRel, PublicPrefix)
	cleanRel = strings.TrimPrefix(cleanRel, "/")

	if !strings.HasPrefix(cleanRel, "uploads/") {
		return fmt.Errorf("refusing to delete non-upload path: %s", url)
	}

	cleanBase, err := filepath.Abs(l.root)
	if err != nil {
		return err
	}
	cleanTarget := filepath.Clean(filepath.Join(cleanBase, filepath.FromSlash(cleanRel)))
	if cleanTarget != cleanBase && !strings.HasPrefix(cleanTarget, cleanBase+string(os.PathSeparator)) {
		return fmt.Errorf("refusing to delete path outside public root: %s", url)
	}

	if err := os.Remove(cleanTarget); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return nil
}
