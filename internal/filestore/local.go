package filestore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/nurpe/freelancehub/internal/model"
	"github.com/nurpe/freelancehub/internal/store"
)

// Local keeps files flat in one directory under generated names. Locations handed out
// are bare file names, never paths.
type Local struct {
	dir      string
	maxBytes int64
}

func NewLocal(dir string, maxBytes int64) (*Local, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, maxBytes: maxBytes}, nil
}

func (l *Local) Save(ctx context.Context, originalName string, r io.Reader) (model.StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return model.StoredFile{}, err
	}

	location := uuid.NewString() + safeExt(originalName)
	path := filepath.Join(l.dir, location)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return model.StoredFile{}, err
	}

	hasher := blake3.New()
	src := io.LimitReader(r, l.maxBytes+1)
	n, err := io.Copy(io.MultiWriter(f, hasher), src)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && n > l.maxBytes {
		err = fmt.Errorf("%w: limit is %d bytes", store.ErrTooLarge, l.maxBytes)
	}
	if err != nil {
		_ = os.Remove(path)
		return model.StoredFile{}, err
	}

	return model.StoredFile{
		Location:  location,
		SizeBytes: n,
		Checksum:  hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

func (l *Local) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	path, err := l.resolve(location)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, store.ErrNotFound
	}
	return f, err
}

// Delete removes the file. Deleting a missing file is not an error.
func (l *Local) Delete(ctx context.Context, location string) error {
	path, err := l.resolve(location)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (l *Local) resolve(location string) (string, error) {
	if location == "" || location != filepath.Base(location) || strings.HasPrefix(location, ".") {
		return "", fmt.Errorf("invalid file location %q", location)
	}
	return filepath.Join(l.dir, location), nil
}

func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) > 10 {
		return ""
	}
	for _, r := range ext[min(1, len(ext)):] {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return ""
		}
	}
	return ext
}
