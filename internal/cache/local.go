package cache

import (
	"context"
	"os"
	"path/filepath"

	"github.com/LimeMojito/trading-data-stream/internal/errs"
)

const defaultCacheDirName = ".dukascopy-cache"

// DefaultLocalCacheDir resolves the local cache root: the localCacheDir
// environment override, else "${HOME}/.dukascopy-cache".
func DefaultLocalCacheDir() string {
	if dir := os.Getenv("localCacheDir"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultCacheDirName
	}
	return filepath.Join(home, defaultCacheDirName)
}

type localStore struct {
	root string
}

func (s localStore) fullPath(path string) string {
	return filepath.Join(s.root, filepath.FromSlash(path))
}

func (s localStore) exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(s.fullPath(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errs.Wrap(errs.Io, err, "stat local cache entry %s", path)
}

func (s localStore) get(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(s.fullPath(path))
	if err != nil {
		return nil, errs.Wrap(errs.Io, err, "read local cache entry %s", path)
	}
	return data, nil
}

func (s localStore) put(_ context.Context, path string, data []byte) error {
	full := s.fullPath(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errs.Wrap(errs.Io, err, "create local cache directory for %s", path)
	}
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errs.Wrap(errs.Io, err, "write local cache staging file for %s", path)
	}
	if err := os.Rename(tmp, full); err != nil {
		return errs.Wrap(errs.Io, err, "rename local cache staging file for %s", path)
	}
	return nil
}

// NewLocalByteCache constructs the local-filesystem ByteCache tier rooted
// at root, falling back to fallback on miss.
func NewLocalByteCache(root string, fallback ByteCache) ByteCache {
	return newByteTier("local", localStore{root: root}, fallback)
}

// CacheSizeBytes recursively sums the byte length of every file under root.
func CacheSizeBytes(root string) (int64, error) {
	var total int64
	err := filepath.Walk(root, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, errs.Wrap(errs.Io, err, "compute local cache size under %s", root)
	}
	return total, nil
}

// RemoveCache deletes all entries under root but leaves root itself.
func RemoveCache(root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errs.Wrap(errs.Io, err, "list local cache root %s", root)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(root, entry.Name())); err != nil {
			return errs.Wrap(errs.Io, err, "remove local cache entry %s", entry.Name())
		}
	}
	return nil
}
