package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

var ErrBlobNotFound = errors.New("blob not found")

// BlobStore holds staged attachment files keyed by attachment id.
type BlobStore interface {
	Put(ctx context.Context, id string, r io.Reader) (int64, error)
	Open(id string) (io.ReadSeekCloser, error)
	Delete(id string) error
	List() ([]BlobInfo, error)
}

type BlobInfo struct {
	ID      string
	ModTime time.Time
}

// DiskBlobStore writes each blob to its own file under dir.
type DiskBlobStore struct {
	dir string
}

func NewDiskBlobStore(dir string) (*DiskBlobStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &DiskBlobStore{dir: dir}, nil
}

// path only accepts uuids so an id can never escape dir.
func (s *DiskBlobStore) path(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", ErrBlobNotFound
	}
	return filepath.Join(s.dir, parsed.String()), nil
}

func (s *DiskBlobStore) Put(ctx context.Context, id string, r io.Reader) (int64, error) {
	p, err := s.path(id)
	if err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(tmp, readerWithContext(ctx, r))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("failed to store blob %s: %w", id, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return 0, err
	}
	return n, nil
}

func (s *DiskBlobStore) Open(id string) (io.ReadSeekCloser, error) {
	p, err := s.path(id)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *DiskBlobStore) Delete(id string) error {
	p, err := s.path(id)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, os.ErrNotExist) {
		return ErrBlobNotFound
	}
	return err
}

// List returns every stored blob. Temp files of uploads in progress are skipped.
func (s *DiskBlobStore) List() ([]BlobInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	blobs := make([]BlobInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := uuid.Parse(e.Name()); err != nil {
			continue
		}
		info, err := e.Info()
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, BlobInfo{ID: e.Name(), ModTime: info.ModTime()})
	}
	return blobs, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
