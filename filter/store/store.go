// Package store persists a filter's bit array as a memory-mapped file with
// a metadata sidecar carrying the sizing parameters across restarts.
package store

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/rag-nar1/DiskFilters/filter"
)

// BitStore is a durable bit array mapped from a file, one byte per logical
// cell. A set cell stays set until the store is recreated.
type BitStore struct {
	f    *os.File
	data []byte
	size int
}

// Open creates or truncates the store at path to size zeroed cells and
// maps it.
func Open(path string, size int) (*BitStore, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: store size %d", filter.ErrConstruction, size)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", filter.ErrStorage, err)
	}
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", filter.ErrStorage, err)
	}
	return mapFile(f, size)
}

// Attach maps an existing store without zeroing it. The file length must
// match size exactly.
func Attach(path string, size int) (*BitStore, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: store size %d", filter.ErrConstruction, size)
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", filter.ErrStorage, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", filter.ErrStorage, err)
	}
	if fi.Size() != int64(size) {
		f.Close()
		return nil, fmt.Errorf("%w: store is %d cells, metadata says %d",
			filter.ErrStorage, fi.Size(), size)
	}
	return mapFile(f, size)
}

func mapFile(f *os.File, size int) (*BitStore, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: mmap: %v", filter.ErrStorage, err)
	}
	return &BitStore{f: f, data: data, size: size}, nil
}

func (s *BitStore) Size() int { return s.size }

func (s *BitStore) Get(index int) (bool, error) {
	if index < 0 || index >= s.size {
		return false, fmt.Errorf("%w: %d of %d", filter.ErrOutOfRange, index, s.size)
	}
	return s.data[index] != 0, nil
}

// Set marks the cell at index. Setting a set cell is a no-op.
func (s *BitStore) Set(index int) error {
	if index < 0 || index >= s.size {
		return fmt.Errorf("%w: %d of %d", filter.ErrOutOfRange, index, s.size)
	}
	s.data[index] = 1
	return nil
}

// Flush forces every prior Set onto the backing medium before returning.
func (s *BitStore) Flush() error {
	if err := unix.Msync(s.data, unix.MS_SYNC); err != nil {
		return fmt.Errorf("%w: msync: %v", filter.ErrStorage, err)
	}
	return nil
}

// Close unmaps the array and closes the backing file. The data on disk is
// kept.
func (s *BitStore) Close() error {
	var first error
	if s.data != nil {
		if err := unix.Munmap(s.data); err != nil {
			first = fmt.Errorf("%w: munmap: %v", filter.ErrStorage, err)
		}
		s.data = nil
	}
	if err := s.f.Close(); err != nil && first == nil {
		first = fmt.Errorf("%w: %v", filter.ErrStorage, err)
	}
	return first
}

// Remove deletes the bit array file at path.
func Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("%w: %v", filter.ErrStorage, err)
	}
	return nil
}
