package driver

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"moveflow/internal/moves"
)

// diskCacheSchemaVersion is bumped whenever DiskPayload changes shape.
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит снапшоты move data по хешу содержимого фикстуры.
// It is safe for concurrent use; a nil *DiskCache is a cache that never hits.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload stores the gathered bodies of one fixture.
type DiskPayload struct {
	Schema uint16
	Path   string
	// Bodies holds one snapshot per gathered body, in file order. Bodies
	// that failed validation or gathering are absent.
	Bodies []*moves.Snapshot
}

// OpenDiskCache opens the cache under $XDG_CACHE_HOME/app, falling back to
// ~/.cache/app.
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

// OpenDiskCacheAt opens a cache rooted at dir, creating it if needed.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// Полезная нагрузка лежит в подкаталоге "bodies", его проще чистить.
func (c *DiskCache) bodiesDir() string { return filepath.Join(c.dir, "bodies") }

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.bodiesDir(), key.String()+".mp")
}

// Put stores payload under key. The file is written to a temp name and
// renamed, so readers never see a partial payload.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload.Schema = diskCacheSchemaVersion
	data, err := msgpack.Marshal(payload)
	if err != nil {
		return err
	}
	return writeAtomic(c.pathFor(key), data)
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	err = errors.Join(err, f.Close())
	if err == nil {
		err = os.Rename(f.Name(), path)
	}
	if err != nil {
		return errors.Join(err, os.Remove(f.Name()))
	}
	return nil
}

// Get loads the payload under key into out. A missing file or a payload
// with another schema version is a miss, not an error.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := msgpack.Unmarshal(data, out); err != nil {
		return false, err
	}
	return out.Schema == diskCacheSchemaVersion, nil
}

// Clear removes every stored payload and reports how many there were. The
// cache root stays in place.
func (c *DiskCache) Clear() (int, error) {
	if c == nil {
		return 0, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.bodiesDir())
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".mp" {
			n++
		}
	}
	return n, os.RemoveAll(c.bodiesDir())
}

// snapshots indexes the payload bodies by name.
func (p *DiskPayload) snapshots() map[string]*moves.Snapshot {
	out := make(map[string]*moves.Snapshot, len(p.Bodies))
	for _, s := range p.Bodies {
		if s != nil {
			out[s.Body] = s
		}
	}
	return out
}
