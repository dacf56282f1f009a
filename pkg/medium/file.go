package medium

import (
	"fmt"
	"io"
	"os"
)

// FileMedium implements Medium over a regular file on disk, keyed by
// sector index rather than raw byte offset.
type FileMedium struct {
	f          *os.File
	sectorSize int
}

var _ Medium = (*FileMedium)(nil)

// OpenFileMedium opens an existing file for reading and writing.
func OpenFileMedium(path string, sectorSize int) (*FileMedium, error) {
	if err := validateSectorSize(sectorSize); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("medium: open %s: %w", path, err)
	}
	return &FileMedium{f: f, sectorSize: sectorSize}, nil
}

// CreateFileMedium creates (truncating if necessary) a new backing
// file for a medium the writer will populate from scratch.
func CreateFileMedium(path string, sectorSize int) (*FileMedium, error) {
	if err := validateSectorSize(sectorSize); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("medium: create %s: %w", path, err)
	}
	return &FileMedium{f: f, sectorSize: sectorSize}, nil
}

func (m *FileMedium) SectorSize() int { return m.sectorSize }

func (m *FileMedium) IsBlank() bool {
	info, err := m.f.Stat()
	return err != nil || info.Size() == 0
}

func (m *FileMedium) MaxSectors() int {
	info, err := m.f.Stat()
	if err != nil {
		return 0
	}
	return int(info.Size()) / m.sectorSize
}

func (m *FileMedium) ReadSector(idx int) ([]byte, error) {
	buf := make([]byte, m.sectorSize)
	off := int64(idx) * int64(m.sectorSize)
	_, err := m.f.ReadAt(buf, off)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return buf, nil
		}
		return nil, fmt.Errorf("medium: read sector %d: %w", idx, err)
	}
	return buf, nil
}

func (m *FileMedium) WriteSector(idx int, data []byte) error {
	if len(data) != m.sectorSize {
		return &ErrWriteSizeMismatch{Got: len(data), Want: m.sectorSize}
	}
	off := int64(idx) * int64(m.sectorSize)
	if _, err := m.f.WriteAt(data, off); err != nil {
		return fmt.Errorf("medium: write sector %d: %w", idx, err)
	}
	return nil
}

func (m *FileMedium) Sync() error {
	if err := m.f.Sync(); err != nil {
		return fmt.Errorf("medium: sync: %w", err)
	}
	return nil
}

func (m *FileMedium) Close() error {
	if err := m.f.Close(); err != nil {
		return fmt.Errorf("medium: close: %w", err)
	}
	return nil
}
