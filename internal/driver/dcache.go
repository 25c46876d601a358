package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"pytutor/internal/diag"
	"pytutor/internal/kb"
)

// Bump when DiskPayload changes or when the detector output changes for the
// same input.
const diskCacheSchemaVersion uint16 = 1

// DiskCache stores detection results on disk keyed by content hash.
// Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the msgpack record for one file content.
type DiskPayload struct {
	Schema      uint16
	ContentHash [32]byte
	Items       []CachedDiagnostic
}

// CachedDiagnostic is a Diagnostic without its knowledge-base pointer.
type CachedDiagnostic struct {
	Severity uint8
	Kind     string
	Line     uint32
	Message  string
}

// OpenDiskCache returns a cache under $XDG_CACHE_HOME/app (or ~/.cache/app).
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt returns a cache rooted at dir, creating it when needed.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key [32]byte) string {
	return filepath.Join(c.dir, "results", hex.EncodeToString(key[:])+".mp")
}

// Put writes diagnostics for key, replacing any previous record atomically.
func (c *DiskCache) Put(key [32]byte, items []diag.Diagnostic) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := DiskPayload{
		Schema:      diskCacheSchemaVersion,
		ContentHash: key,
		Items:       make([]CachedDiagnostic, len(items)),
	}
	for i, d := range items {
		payload.Items[i] = CachedDiagnostic{
			Severity: uint8(d.Severity),
			Kind:     string(d.Kind),
			Line:     d.Line,
			Message:  d.Message,
		}
	}

	p := c.pathFor(key)
	if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if removeErr := os.Remove(f.Name()); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) && err == nil {
			err = removeErr
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(&payload); err != nil {
		_ = f.Close() //nolint:errcheck
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads the diagnostics stored for key. A missing record, a record from
// another schema version or a hash mismatch is a miss, not an error.
func (c *DiskCache) Get(key [32]byte) ([]diag.Diagnostic, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var payload DiskPayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, false, fmt.Errorf("corrupt cache record: %w", err)
	}
	if payload.Schema != diskCacheSchemaVersion || payload.ContentHash != key {
		return nil, false, nil
	}

	out := make([]diag.Diagnostic, len(payload.Items))
	for i, it := range payload.Items {
		out[i] = diag.New(diag.Severity(it.Severity), kb.Kind(it.Kind), it.Line, it.Message)
	}
	return out, true, nil
}

// DropAll removes every cached record.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
