// Package receipts stores uploaded receipt files on local disk. Only the
// metadata lives in the database; files are keyed by a generated name so
// originals can never collide or traverse paths.
package receipts

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/core"
	"github.com/google/uuid"
)

// MaxSize is the upload limit for a single receipt.
const MaxSize = 5 << 20 // 5 MiB

var (
	ErrInvalidType = errors.New("invalid file type (JPG, PNG, PDF)")
	ErrTooLarge    = errors.New("receipt exceeds the 5 MiB limit")
)

var allowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the uploaded content to disk and returns its metadata.
// The declared size is checked first, but the copy is capped as well in case
// the declaration lied.
func (s *Store) Save(src io.Reader, originalName, mimeType string, declaredSize int64) (*core.Receipt, error) {
	ext, ok := allowedTypes[mimeType]
	if !ok {
		return nil, ErrInvalidType
	}
	if declaredSize > MaxSize {
		return nil, ErrTooLarge
	}

	filename := uuid.NewString() + ext
	path := filepath.Join(s.dir, filename)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create receipt file: %w", err)
	}
	written, err := io.Copy(dst, io.LimitReader(src, MaxSize+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write receipt file: %w", err)
	}
	if written > MaxSize {
		os.Remove(path)
		return nil, ErrTooLarge
	}

	return &core.Receipt{
		Filename:     filename,
		OriginalName: originalName,
		MimeType:     mimeType,
		Size:         written,
	}, nil
}

// Path resolves a stored filename to its on-disk location, rejecting
// anything that would escape the uploads directory.
func (s *Store) Path(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", os.ErrNotExist
	}
	path := filepath.Join(s.dir, filename)
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

// Remove deletes a stored file. A missing file is not an error; the metadata
// row is authoritative and cleanup must be idempotent.
func (s *Store) Remove(filename string) {
	if filename == "" {
		return
	}
	path := filepath.Join(s.dir, filepath.Base(filename))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to remove receipt file", "filename", filename, "error", err)
	}
}
