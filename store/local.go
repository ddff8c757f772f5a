package store

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const localExt = ".entry"

// Local is a filesystem-backed KV with a hard byte quota.
// It backs the persistent-local tier: durable per-device storage where the
// platform grants a bounded budget.
//
// Keys are hex-encoded into file names so arbitrary key strings cannot
// escape the root directory.
type Local struct {
	mu    sync.Mutex
	root  string
	quota int64
	used  int64
	sizes map[string]int64 // key -> file size
}

// NewLocal creates a Local store rooted at dir with the given byte quota.
// The directory is created if absent; existing files are scanned to rebuild
// the usage accounting.
func NewLocal(dir string, quota int64) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	s := &Local{
		root:  dir,
		quota: quota,
		sizes: make(map[string]int64),
	}
	s.scanExistingFiles()
	return s, nil
}

func (s *Local) scanExistingFiles() {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), localExt) {
			continue
		}
		key, ok := decodeFileName(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		s.sizes[key] = info.Size()
		s.used += info.Size()
	}
}

func encodeFileName(key string) string {
	return hex.EncodeToString([]byte(key)) + localExt
}

func decodeFileName(name string) (string, bool) {
	raw, err := hex.DecodeString(strings.TrimSuffix(name, localExt))
	if err != nil {
		return "", false
	}
	return string(raw), true
}

func (s *Local) path(key string) string {
	return filepath.Join(s.root, encodeFileName(key))
}

// Get returns the bytes stored under key.
func (s *Local) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Put writes data under key. It fails with ErrQuotaExceeded when the write
// would push usage past the quota; the caller decides how to free space.
func (s *Local) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	newSize := int64(len(data))
	projected := s.used - s.sizes[key] + newSize
	if s.quota > 0 && projected > s.quota {
		return ErrQuotaExceeded
	}

	// Atomic write: temp file in the same directory, then rename.
	tmp, err := os.CreateTemp(s.root, "tmp-entry-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		return err
	}

	s.used = projected
	s.sizes[key] = newSize
	return nil
}

// Delete removes key.
func (s *Local) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	s.used -= s.sizes[key]
	delete(s.sizes, key)
	return nil
}

// Keys returns every key currently present.
func (s *Local) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.sizes))
	for k := range s.sizes {
		keys = append(keys, k)
	}
	return keys, nil
}

// Clear removes every key.
func (s *Local) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k := range s.sizes {
		if err := os.Remove(s.path(k)); err != nil && !os.IsNotExist(err) {
			// Keep the accounting consistent with what was removed so
			// far; the remaining entries are still on disk and counted.
			return err
		}
		s.used -= s.sizes[k]
		delete(s.sizes, k)
	}
	return nil
}

// Used reports the bytes currently accounted against the quota.
func (s *Local) Used() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.used
}
