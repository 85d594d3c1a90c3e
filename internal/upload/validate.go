// Package upload validates files before they are attached to a dialog.
package upload

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// MaxFileSize is the largest accepted attachment, in bytes (10 MiB).
const MaxFileSize = 10 << 20

// Validation failures.
var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
)

var allowedTypes = map[string]struct{}{
	"image/jpeg":         {},
	"image/png":          {},
	"image/gif":          {},
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

// FileInfo describes a candidate attachment.
type FileInfo struct {
	Name     string
	Size     int64
	MIMEType string
}

// Validate checks a file against the size limit and the MIME allow-list.
// Size is checked first, so an oversized file fails with ErrFileTooLarge
// regardless of its type.
func Validate(f FileInfo) error {
	if f.Size > MaxFileSize {
		return fmt.Errorf("%w: %q is %d bytes, limit is %d", ErrFileTooLarge, f.Name, f.Size, int64(MaxFileSize))
	}
	if _, ok := allowedTypes[f.MIMEType]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, f.MIMEType)
	}
	return nil
}

// Stat resolves FileInfo for a file on disk. The MIME type is derived from
// the file extension.
func Stat(path string) (FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("stat attachment: %w", err)
	}
	return FileInfo{
		Name:     filepath.Base(path),
		Size:     st.Size(),
		MIMEType: DetectType(path),
	}, nil
}

// DetectType maps a file path to a MIME type by extension, with the
// parameters stripped. Unknown extensions yield application/octet-stream.
func DetectType(path string) string {
	t := mime.TypeByExtension(filepath.Ext(path))
	if t == "" {
		return "application/octet-stream"
	}
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}
