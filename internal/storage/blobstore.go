// Package storage implements the filesystem-backed resume blob store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/careers-board/internal/types"
)

// maxKeyAttempts bounds key regeneration when a generated name already exists.
const maxKeyAttempts = 5

// maxExtLen caps the extension carried over from the uploaded file name.
const maxExtLen = 10

// BlobStore stores uploaded resumes under generated, never-reused keys.
type BlobStore struct {
	root string
	now  func() time.Time
	rand func() int
}

// BlobInfo describes a stored blob
type BlobInfo struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// NewBlobStore returns a store rooted at dir. The directory is created on first write.
func NewBlobStore(dir string) *BlobStore {
	return &BlobStore{
		root: dir,
		now:  time.Now,
		rand: func() int { return rand.IntN(1e9) },
	}
}

// Root returns the storage directory
func (s *BlobStore) Root() string {
	return s.root
}

// Save writes r under a new key of the form <field>-<unixMillis>-<random><ext>
// and returns the key and the number of bytes written. An existing blob is
// never overwritten.
func (s *BlobStore) Save(ctx context.Context, field, originalName string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, &types.StorageError{Op: "write", Cause: err}
	}
	if err := s.ensureRoot(); err != nil {
		return "", 0, err
	}

	ext := cleanExt(originalName)
	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		key := fmt.Sprintf("%s-%d-%d%s", field, s.now().UnixMilli(), s.rand(), ext)
		f, err := os.OpenFile(filepath.Join(s.root, key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", 0, &types.StorageError{Op: "create", Key: key, Cause: err}
		}

		n, err := io.Copy(f, &ctxReader{ctx: ctx, r: r})
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(filepath.Join(s.root, key))
			return "", 0, &types.StorageError{Op: "write", Key: key, Cause: err}
		}
		return key, n, nil
	}
	return "", 0, &types.StorageError{Op: "create", Cause: fmt.Errorf("no free key after %d attempts", maxKeyAttempts)}
}

// Open returns the blob stored under key for reading.
func (s *BlobStore) Open(key string) (*os.File, fs.FileInfo, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, &types.NotFoundError{Resource: "resume", ID: key}
		}
		return nil, nil, &types.StorageError{Op: "open", Key: key, Cause: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, &types.StorageError{Op: "stat", Key: key, Cause: err}
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, &types.NotFoundError{Resource: "resume", ID: key}
	}
	return f, info, nil
}

// Read returns the full contents of the blob stored under key.
func (s *BlobStore) Read(key string) ([]byte, error) {
	f, _, err := s.Open(key)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &types.StorageError{Op: "read", Key: key, Cause: err}
	}
	return data, nil
}

// Delete removes a blob. Only used to compensate a failed candidate insert
// and by the orphan sweep. Deleting a missing key is not an error.
func (s *BlobStore) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &types.StorageError{Op: "delete", Key: key, Cause: err}
	}
	return nil
}

// List returns blobs last modified before cutoff. A missing root yields an empty list.
func (s *BlobStore) List(cutoff time.Time) ([]BlobInfo, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &types.StorageError{Op: "list", Cause: err}
	}

	var out []BlobInfo
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			out = append(out, BlobInfo{Key: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
		}
	}
	return out, nil
}

func (s *BlobStore) ensureRoot() error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return &types.StorageError{Op: "mkdir", Key: s.root, Cause: err}
	}
	return nil
}

// path resolves key inside the root, rejecting anything that could escape it.
func (s *BlobStore) path(key string) (string, error) {
	if !ValidKey(key) {
		return "", &types.ValidationError{Field: "filename", Message: "invalid resume filename"}
	}
	return filepath.Join(s.root, key), nil
}

// ValidKey reports whether key is a plain file name.
func ValidKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return false
	}
	return !strings.ContainsRune(key, 0)
}

// cleanExt returns the lowercased extension of name if it is short and alphanumeric.
func cleanExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(strings.ReplaceAll(name, `\`, "/"))))
	if len(ext) < 2 || len(ext) > maxExtLen {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// ctxReader stops a copy once the context is cancelled.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
