// Package sprite manages Pokémon sprites: a disk store of PNGs under the
// configured directory and a bounded LRU cache of rendered terminal art.
package sprite

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DiskStore holds raw sprite PNGs, one file per dex id.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the sprite directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating sprite directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (d *DiskStore) path(id int) string {
	return filepath.Join(d.dir, fmt.Sprintf("%d.png", id))
}

// Put writes the PNG bytes for a dex id.
func (d *DiskStore) Put(id int, data []byte) error {
	if err := os.WriteFile(d.path(id), data, 0o644); err != nil {
		return fmt.Errorf("writing sprite %d: %w", id, err)
	}
	return nil
}

// Read returns the PNG bytes for a dex id.
func (d *DiskStore) Read(id int) ([]byte, error) {
	data, err := os.ReadFile(d.path(id))
	if err != nil {
		return nil, fmt.Errorf("reading sprite %d: %w", id, err)
	}
	return data, nil
}

// Has reports whether a sprite exists on disk.
func (d *DiskStore) Has(id int) bool {
	_, err := os.Stat(d.path(id))
	return err == nil
}

// Size returns the total bytes used by stored sprites.
func (d *DiskStore) Size() (int64, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return 0, fmt.Errorf("reading sprite directory: %w", err)
	}
	var total int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}

// Trim deletes the oldest sprites (by modification time) until the store
// is at or under limitBytes. Returns the number of files removed.
func (d *DiskStore) Trim(limitBytes int64) (int, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return 0, fmt.Errorf("reading sprite directory: %w", err)
	}

	type fileInfo struct {
		path  string
		size  int64
		mtime int64
	}
	var (
		files []fileInfo
		total int64
	)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, fileInfo{
			path:  filepath.Join(d.dir, e.Name()),
			size:  info.Size(),
			mtime: info.ModTime().UnixNano(),
		})
		total += info.Size()
	}

	sort.Slice(files, func(i, j int) bool { return files[i].mtime < files[j].mtime })

	removed := 0
	for _, f := range files {
		if total <= limitBytes {
			break
		}
		if err := os.Remove(f.path); err != nil {
			continue
		}
		total -= f.size
		removed++
	}
	return removed, nil
}
