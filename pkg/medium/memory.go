package medium

// MemoryMedium implements Medium over an in-memory byte slice, used
// by the writer's own tests and by callers building small throwaway
// images without touching the filesystem.
type MemoryMedium struct {
	data       []byte
	sectorSize int
	blank      bool
}

var _ Medium = (*MemoryMedium)(nil)

// NewMemoryMedium creates an empty in-memory medium.
func NewMemoryMedium(sectorSize int) (*MemoryMedium, error) {
	if err := validateSectorSize(sectorSize); err != nil {
		return nil, err
	}
	return &MemoryMedium{sectorSize: sectorSize, blank: true}, nil
}

// NewMemoryMediumFromBytes wraps an existing byte slice (e.g. an ISO
// already read fully into memory) as a medium.
func NewMemoryMediumFromBytes(data []byte, sectorSize int) (*MemoryMedium, error) {
	if err := validateSectorSize(sectorSize); err != nil {
		return nil, err
	}
	return &MemoryMedium{data: data, sectorSize: sectorSize, blank: len(data) == 0}, nil
}

func (m *MemoryMedium) SectorSize() int { return m.sectorSize }

func (m *MemoryMedium) IsBlank() bool { return m.blank && len(m.data) == 0 }

func (m *MemoryMedium) MaxSectors() int { return len(m.data) / m.sectorSize }

func (m *MemoryMedium) ReadSector(idx int) ([]byte, error) {
	buf := make([]byte, m.sectorSize)
	off := idx * m.sectorSize
	if off >= len(m.data) {
		return buf, nil
	}
	end := off + m.sectorSize
	if end > len(m.data) {
		end = len(m.data)
	}
	copy(buf, m.data[off:end])
	return buf, nil
}

func (m *MemoryMedium) WriteSector(idx int, data []byte) error {
	if len(data) != m.sectorSize {
		return &ErrWriteSizeMismatch{Got: len(data), Want: m.sectorSize}
	}
	off := idx * m.sectorSize
	need := off + m.sectorSize
	if need > len(m.data) {
		grown := make([]byte, need)
		copy(grown, m.data)
		m.data = grown
	}
	copy(m.data[off:off+m.sectorSize], data)
	m.blank = false
	return nil
}

func (m *MemoryMedium) Sync() error { return nil }

func (m *MemoryMedium) Close() error { return nil }

// Bytes returns the medium's current backing slice. Callers must not
// mutate it concurrently with further medium I/O.
func (m *MemoryMedium) Bytes() []byte { return m.data }
