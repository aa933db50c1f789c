package store

import (
	"io/fs"
	"path/filepath"
)

// Stats is a compact view of store health for maintenance logging.
type Stats struct {
	DiskBytes     uint64
	LastMessageID int64
}

// GetStats returns best-effort statistics about the pebble DB. Disk usage is
// computed by walking the DB directory; failures leave fields zero.
func GetStats() Stats {
	var s Stats
	if db == nil {
		return s
	}
	idMu.Lock()
	s.LastMessageID = lastID
	idMu.Unlock()
	if dbPath == "" {
		return s
	}
	var total uint64
	_ = filepath.WalkDir(dbPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if fi, err := d.Info(); err == nil {
			total += uint64(fi.Size())
		}
		return nil
	})
	s.DiskBytes = total
	return s
}
