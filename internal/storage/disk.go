package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Files returns the database file together with its WAL and shared-memory
// siblings. An in-memory store has no files.
func (s *SQLiteStore) Files() []string {
	if s.path == "" || s.path == ":memory:" {
		return nil
	}
	return []string{s.path, s.path + "-wal", s.path + "-shm"}
}

// DiskUsageBytes sums the size of the given files and directories (directories
// recursively). Missing paths count as zero.
func DiskUsageBytes(paths ...string) (int64, error) {
	var total int64
	for _, p := range paths {
		if p == "" {
			continue
		}
		err := filepath.WalkDir(p, func(_ string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
			return nil
		})
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}
