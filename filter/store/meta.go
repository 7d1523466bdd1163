package store

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/rag-nar1/DiskFilters/filter"
)

// MetaSuffix is appended to the bit array path to name the sidecar record.
const MetaSuffix = ".meta"

// Metadata is the sidecar record persisted next to the bit array so a
// restarted process can recover the filter parameters without recomputing
// them.
type Metadata struct {
	Size      int `json:"size"`
	HashCount int `json:"hash_count"`
}

// SaveMetadata writes the record for the store at path. The record is
// staged and renamed into place, so a crashed or concurrent writer never
// leaves a truncated record behind.
func SaveMetadata(path string, md Metadata) error {
	buf, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("%w: encode metadata: %v", filter.ErrStorage, err)
	}
	staged := path + MetaSuffix + ".tmp"
	if err := os.WriteFile(staged, buf, 0o644); err != nil {
		return fmt.Errorf("%w: %v", filter.ErrStorage, err)
	}
	if err := os.Rename(staged, path+MetaSuffix); err != nil {
		return fmt.Errorf("%w: %v", filter.ErrStorage, err)
	}
	return nil
}

// LoadMetadata reads and validates the record for the store at path.
func LoadMetadata(path string) (Metadata, error) {
	buf, err := os.ReadFile(path + MetaSuffix)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", filter.ErrStorage, err)
	}
	var md Metadata
	if err := json.Unmarshal(buf, &md); err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", filter.ErrBadMetadata, err)
	}
	if md.Size <= 0 || md.HashCount <= 0 {
		return Metadata{}, fmt.Errorf("%w: size=%d hash_count=%d",
			filter.ErrBadMetadata, md.Size, md.HashCount)
	}
	return md, nil
}

// RemoveMetadata deletes the sidecar record for the store at path.
func RemoveMetadata(path string) error {
	if err := os.Remove(path + MetaSuffix); err != nil {
		return fmt.Errorf("%w: %v", filter.ErrStorage, err)
	}
	return nil
}
