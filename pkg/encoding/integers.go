// Package encoding implements the primitive on-disc codecs shared by
// every higher-level structure: dual-endian integers, the two ECMA-119
// date formats, padded strings, and the identifier-or-file tag.
package encoding

import (
	"encoding/binary"
	"fmt"
	"io"
)

// BothEndianMismatchError reports that the little-endian and
// big-endian halves of a dual-endian integer disagree, which ECMA-119
// §7.2.3/§7.3.3 treats as corruption.
type BothEndianMismatchError struct {
	Width int
	LE    uint64
	BE    uint64
}

func (e *BothEndianMismatchError) Error() string {
	return fmt.Sprintf("encoding: %d-bit dual-endian mismatch: le=%d be=%d", e.Width, e.LE, e.BE)
}

// PutUint16Both writes the both-endian encoding of v (LE then BE) into
// dst, which must have at least 4 bytes of room.
func PutUint16Both(dst []byte, v uint16) {
	_ = dst[3] // bounds check hoist
	binary.LittleEndian.PutUint16(dst[0:2], v)
	binary.BigEndian.PutUint16(dst[2:4], v)
}

// PutUint32Both writes the both-endian encoding of v (LE then BE) into
// dst, which must have at least 8 bytes of room.
func PutUint32Both(dst []byte, v uint32) {
	_ = dst[7]
	binary.LittleEndian.PutUint32(dst[0:4], v)
	binary.BigEndian.PutUint32(dst[4:8], v)
}

// Uint16Both returns the 4-byte both-endian encoding of v.
func Uint16Both(v uint16) []byte {
	b := make([]byte, 4)
	PutUint16Both(b, v)
	return b
}

// Uint32Both returns the 8-byte both-endian encoding of v.
func Uint32Both(v uint32) []byte {
	b := make([]byte, 8)
	PutUint32Both(b, v)
	return b
}

// GetUint16Both parses a both-endian 16-bit integer, returning an
// error if the two halves disagree.
func GetUint16Both(data []byte) (uint16, error) {
	if len(data) < 4 {
		return 0, io.ErrUnexpectedEOF
	}
	le := binary.LittleEndian.Uint16(data[0:2])
	be := binary.BigEndian.Uint16(data[2:4])
	if le != be {
		return 0, &BothEndianMismatchError{Width: 16, LE: uint64(le), BE: uint64(be)}
	}
	return le, nil
}

// GetUint32Both parses a both-endian 32-bit integer, returning an
// error if the two halves disagree.
func GetUint32Both(data []byte) (uint32, error) {
	if len(data) < 8 {
		return 0, io.ErrUnexpectedEOF
	}
	le := binary.LittleEndian.Uint32(data[0:4])
	be := binary.BigEndian.Uint32(data[4:8])
	if le != be {
		return 0, &BothEndianMismatchError{Width: 32, LE: uint64(le), BE: uint64(be)}
	}
	return le, nil
}

// Endianness selects which half of a both-endian field a
// single-endian structure (path tables) stores.
type Endianness int

const (
	LittleEndian Endianness = iota
	BigEndian
)

// PutUint16 writes v in the given single endianness.
func PutUint16(dst []byte, v uint16, e Endianness) {
	if e == LittleEndian {
		binary.LittleEndian.PutUint16(dst, v)
	} else {
		binary.BigEndian.PutUint16(dst, v)
	}
}

// PutUint32 writes v in the given single endianness.
func PutUint32(dst []byte, v uint32, e Endianness) {
	if e == LittleEndian {
		binary.LittleEndian.PutUint32(dst, v)
	} else {
		binary.BigEndian.PutUint32(dst, v)
	}
}

// GetUint16 reads a 16-bit integer in the given single endianness.
func GetUint16(data []byte, e Endianness) uint16 {
	if e == LittleEndian {
		return binary.LittleEndian.Uint16(data)
	}
	return binary.BigEndian.Uint16(data)
}

// GetUint32 reads a 32-bit integer in the given single endianness.
func GetUint32(data []byte, e Endianness) uint32 {
	if e == LittleEndian {
		return binary.LittleEndian.Uint32(data)
	}
	return binary.BigEndian.Uint32(data)
}
