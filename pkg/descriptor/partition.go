package descriptor

import "github.com/arcfract/iso9660kit/pkg/consts"

// Partition is the type-3 descriptor. Multi-partition volumes aren't
// a supported feature; this is carried only for discovery/
// classification completeness (spec §4.E names it in the discovery
// contract) — the body is opaque past the header.
type Partition struct {
	Raw []byte
}

// Marshal serializes the descriptor into a full 2048-byte sector.
func (p Partition) Marshal() ([]byte, error) {
	return assembleSector(Header{Type: consts.VOLUME_DESC_TYPE_PARTITION, Version: consts.ISO9660_VOLUME_DESC_VERSION}, p.Raw)
}

// UnmarshalPartition parses a Partition descriptor, retaining its
// body verbatim.
func UnmarshalPartition(sector []byte) (Partition, error) {
	return Partition{Raw: append([]byte(nil), sector[HeaderSize:]...)}, nil
}

// Generic covers any volume descriptor type not otherwise classified
// (ECMA-119 reserves the remaining type bytes for future standards).
type Generic struct {
	Type byte
	Raw  []byte
}

// Marshal serializes the descriptor into a full 2048-byte sector.
func (g Generic) Marshal() ([]byte, error) {
	return assembleSector(Header{Type: g.Type, Version: consts.ISO9660_VOLUME_DESC_VERSION}, g.Raw)
}

// UnmarshalGeneric parses an unrecognized descriptor, retaining its
// body verbatim.
func UnmarshalGeneric(h Header, sector []byte) (Generic, error) {
	return Generic{Type: h.Type, Raw: append([]byte(nil), sector[HeaderSize:]...)}, nil
}

// Terminator is the type-255 descriptor that ends the volume
// descriptor set.
type Terminator struct{}

// Marshal serializes the descriptor into a full 2048-byte sector.
func (Terminator) Marshal() ([]byte, error) {
	return assembleSector(Header{Type: consts.VOLUME_DESC_TYPE_TERMINATOR, Version: consts.ISO9660_VOLUME_DESC_VERSION}, nil)
}
