package xattr

import "encoding/binary"

// Permissions is the big-endian permissions bitfield of an extended
// attribute record (ECMA-119 9.5.3), whose reserved bits are always
// forced to 1 on the wire.
type Permissions struct {
	SystemGroupRead    bool
	SystemGroupExecute bool
	OwnerRead          bool
	OwnerExecute       bool
	GroupRead          bool
	GroupExecute       bool
	OtherRead          bool
	OtherExecute       bool
}

// Marshal encodes the permissions into the 2-byte big-endian field,
// forcing every non-grant bit (the "reserved" positions the standard
// defines as always-1) to 1.
func (p Permissions) Marshal() []byte {
	var v uint16 = 0xFFFF // start all-1, then clear the bits we grant
	clear := func(bit uint16, grant bool) {
		if grant {
			v &^= bit
		}
	}
	clear(1<<0, p.SystemGroupRead)
	clear(1<<2, p.SystemGroupExecute)
	clear(1<<4, p.OwnerRead)
	clear(1<<6, p.OwnerExecute)
	clear(1<<8, p.GroupRead)
	clear(1<<10, p.GroupExecute)
	clear(1<<12, p.OtherRead)
	clear(1<<14, p.OtherExecute)

	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

// UnmarshalPermissions decodes the 2-byte big-endian permissions
// field: a grant bit is readable as "0" at its position (the standard
// represents permission as the absence of the reserved 1-bit).
func UnmarshalPermissions(data []byte) Permissions {
	v := binary.BigEndian.Uint16(data)
	granted := func(bit uint16) bool { return v&bit == 0 }
	return Permissions{
		SystemGroupRead:    granted(1 << 0),
		SystemGroupExecute: granted(1 << 2),
		OwnerRead:          granted(1 << 4),
		OwnerExecute:       granted(1 << 6),
		GroupRead:          granted(1 << 8),
		GroupExecute:       granted(1 << 10),
		OtherRead:          granted(1 << 12),
		OtherExecute:       granted(1 << 14),
	}
}
