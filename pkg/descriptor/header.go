// Package descriptor implements the ECMA-119 volume descriptor
// variants (Primary, Supplementary, Enhanced, Boot, Partition,
// Generic, Terminator) and the sector-16-onward discovery/
// classification contract that selects among them.
package descriptor

import (
	"fmt"

	"github.com/arcfract/iso9660kit/pkg/consts"
)

// Header is the common 7-byte prefix of every volume descriptor
// sector: type byte, the "CD001" standard identifier, and version.
type Header struct {
	Type    byte
	Version byte
}

const HeaderSize = consts.ISO9660_VOLUME_DESC_HEADER_SIZE

// ErrBadMagic is returned when a sector doesn't carry the CD001
// standard identifier at its expected offset.
type ErrBadMagic struct {
	Got []byte
}

func (e *ErrBadMagic) Error() string {
	return fmt.Sprintf("descriptor: bad standard identifier %q, want %q", e.Got, consts.ISO9660_STD_IDENTIFIER)
}

// UnmarshalHeader parses the common 7-byte header from the start of a
// descriptor sector.
func UnmarshalHeader(sector []byte) (Header, error) {
	if len(sector) < HeaderSize {
		return Header{}, fmt.Errorf("descriptor: sector shorter than header")
	}
	magic := sector[1:6]
	if string(magic) != consts.ISO9660_STD_IDENTIFIER {
		return Header{}, &ErrBadMagic{Got: append([]byte(nil), magic...)}
	}
	return Header{Type: sector[0], Version: sector[6]}, nil
}

// Marshal writes the header into the first 7 bytes of dst.
func (h Header) Marshal(dst []byte) {
	dst[0] = h.Type
	copy(dst[1:6], []byte(consts.ISO9660_STD_IDENTIFIER))
	dst[6] = h.Version
}

// Kind classifies a descriptor sector by its type byte, following
// ECMA-119 §4.E's discovery rule: type 2 splits into Supplementary or
// Enhanced by version.
type Kind int

const (
	KindBoot Kind = iota
	KindPrimary
	KindSupplementary
	KindEnhanced
	KindPartition
	KindTerminator
	KindGeneric
)

// Classify returns the Kind for a parsed header.
func Classify(h Header) Kind {
	switch h.Type {
	case consts.VOLUME_DESC_TYPE_BOOT:
		return KindBoot
	case consts.VOLUME_DESC_TYPE_PRIMARY:
		return KindPrimary
	case consts.VOLUME_DESC_TYPE_SUPPLEMENTARY:
		if h.Version == consts.FILE_STRUCTURE_VERSION_ENHANCED {
			return KindEnhanced
		}
		return KindSupplementary
	case consts.VOLUME_DESC_TYPE_PARTITION:
		return KindPartition
	case consts.VOLUME_DESC_TYPE_TERMINATOR:
		return KindTerminator
	default:
		return KindGeneric
	}
}
