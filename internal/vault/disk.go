package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DiskSaver writes uploads under a base directory and returns the stored
// filename as the opaque reference the workflows carry around. It has no
// workflow logic.
type DiskSaver struct {
	baseDir string
}

func NewDiskSaver(baseDir string) (*DiskSaver, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskSaver{baseDir: baseDir}, nil
}

// SaveUpload writes the file and returns its reference. The reference is a
// generated name, never the client-supplied one, so path traversal in the
// original filename is inert.
func (s *DiskSaver) SaveUpload(kind, filename string, data []byte) (string, error) {
	ext := filepath.Ext(filepath.Base(filename))
	ref := kind + "-" + uuid.NewString() + sanitizeExt(ext)
	if err := os.WriteFile(filepath.Join(s.baseDir, ref), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return ref, nil
}

func sanitizeExt(ext string) string {
	ext = strings.ToLower(ext)
	switch ext {
	case ".jpg", ".jpeg", ".png", ".pdf":
		return ext
	}
	return ""
}
