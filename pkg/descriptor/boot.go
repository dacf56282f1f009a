package descriptor

import "github.com/arcfract/iso9660kit/pkg/consts"

// BootRecord is the type-0 descriptor. Catalog interpretation (El
// Torito) is out of scope; this is parsed far enough to expose the
// boot-system identifier and raw boot-system-use bytes for
// introspection and round-trip (see the supplemented-features note).
type BootRecord struct {
	BootSystemIdentifier string
	BootIdentifier       string
	BootSystemUse        []byte
}

const (
	bootSystemIDSize = 32
	bootIDSize       = 32
)

// Marshal serializes the descriptor into a full 2048-byte sector.
func (b BootRecord) Marshal() ([]byte, error) {
	body := make([]byte, bootSystemIDSize+bootIDSize+1977)
	copy(body[0:bootSystemIDSize], padASCII(b.BootSystemIdentifier, bootSystemIDSize))
	copy(body[bootSystemIDSize:bootSystemIDSize+bootIDSize], padASCII(b.BootIdentifier, bootIDSize))
	copy(body[bootSystemIDSize+bootIDSize:], b.BootSystemUse)
	return assembleSector(Header{Type: consts.VOLUME_DESC_TYPE_BOOT, Version: consts.ISO9660_VOLUME_DESC_VERSION}, body)
}

// UnmarshalBootRecord parses a BootRecord from a full sector.
func UnmarshalBootRecord(sector []byte) (BootRecord, error) {
	body := sector[HeaderSize:]
	sysID := trimASCII(body[0:bootSystemIDSize])
	id := trimASCII(body[bootSystemIDSize : bootSystemIDSize+bootIDSize])
	use := append([]byte(nil), body[bootSystemIDSize+bootIDSize:]...)
	return BootRecord{BootSystemIdentifier: sysID, BootIdentifier: id, BootSystemUse: use}, nil
}

func padASCII(s string, n int) []byte {
	out := make([]byte, n)
	copy(out, s)
	for i := len(s); i < n; i++ {
		out[i] = ' '
	}
	return out
}

func trimASCII(b []byte) string {
	end := len(b)
	for end > 0 && (b[end-1] == ' ' || b[end-1] == 0) {
		end--
	}
	return string(b[:end])
}
