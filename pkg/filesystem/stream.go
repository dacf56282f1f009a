package filesystem

import (
	"fmt"
	"io"
)

// fileStream is a restartable lazy byte stream over
// [extentLBA, extentLBA+ceil(dataLength/blockSize)) truncated to
// dataLength bytes, reading block-aligned internally.
type fileStream struct {
	r          *Reader
	extentLBA  uint32
	dataLength uint32
	pos        int64

	buf       []byte
	bufBlock  int64
	bufLoaded bool
}

var _ io.ReadSeekCloser = (*fileStream)(nil)

// OpenFile returns a restartable lazy reader over entry's extent,
// truncated to its declared data length.
func (r *Reader) OpenFile(entry FSEntry) (io.ReadSeekCloser, error) {
	if entry.Kind != KindFile {
		return nil, fmt.Errorf("filesystem: %q is not a regular file", entry.Name)
	}
	return &fileStream{
		r:          r,
		extentLBA:  entry.Metadata.Record.ExtentLocation,
		dataLength: entry.Metadata.Record.DataLength,
	}, nil
}

func (s *fileStream) Read(p []byte) (int, error) {
	if s.pos >= int64(s.dataLength) {
		return 0, io.EOF
	}
	block := s.pos / int64(s.r.blockSize)
	if !s.bufLoaded || block != s.bufBlock {
		sector, err := s.r.medium.ReadSector(int(s.extentLBA) + int(block))
		if err != nil {
			return 0, fmt.Errorf("filesystem: streaming block %d: %w", block, err)
		}
		s.buf = sector
		s.bufBlock = block
		s.bufLoaded = true
	}

	offsetInBlock := int(s.pos % int64(s.r.blockSize))
	n := copy(p, s.buf[offsetInBlock:])
	remaining := int64(s.dataLength) - s.pos
	if int64(n) > remaining {
		n = int(remaining)
	}
	s.pos += int64(n)
	return n, nil
}

func (s *fileStream) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = s.pos + offset
	case io.SeekEnd:
		target = int64(s.dataLength) + offset
	default:
		return 0, fmt.Errorf("filesystem: invalid seek whence %d", whence)
	}
	if target < 0 {
		return 0, fmt.Errorf("filesystem: negative seek position")
	}
	s.pos = target
	return s.pos, nil
}

func (s *fileStream) Close() error {
	s.buf = nil
	s.bufLoaded = false
	return nil
}
