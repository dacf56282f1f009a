package pathtable

import (
	"fmt"

	"github.com/arcfract/iso9660kit/pkg/encoding"
	"github.com/arcfract/iso9660kit/pkg/info"
)

// Type implements info.ImageObject.
func (r Record) Type() string { return "PathTableRecord" }

// Name implements info.ImageObject.
func (r Record) Name() string {
	if r.Identifier == "" {
		return "(root)"
	}
	return r.Identifier
}

// Description implements info.ImageObject.
func (r Record) Description() string {
	return fmt.Sprintf("path table record %q, extent %d, parent %d", r.Name(), r.ExtentLocation, r.ParentNumber)
}

// Properties implements info.ImageObject.
func (r Record) Properties() []info.Property {
	return []info.Property{
		{Name: "Identifier", Value: r.Name()},
		{Name: "ExtendedAttrLength", Value: fmt.Sprintf("%d", r.ExtendedAttrLength)},
		{Name: "ExtentLocation", Value: fmt.Sprintf("%d", r.ExtentLocation)},
		{Name: "ParentNumber", Value: fmt.Sprintf("%d", r.ParentNumber)},
	}
}

// Offset implements info.ImageObject. Path table records carry no
// self-knowledge of their position within the table; callers that
// need it track it alongside the record.
func (r Record) Offset() int64 { return -1 }

// Size implements info.ImageObject. Both LE and BE encodings of a
// record are the same length, so the choice of endianness here is
// arbitrary; the record's original name encoding isn't retained past
// decode, so this reports the ASCII-width size (exact for Primary
// records, an approximation for Joliet/Enhanced ones).
func (r Record) Size() int64 {
	return int64(len(r.MarshalEncoded(encoding.LittleEndian, encoding.ASCII)))
}

// GetObjects implements info.ImageObject; a path table record has no
// nested objects.
func (r Record) GetObjects() []info.ImageObject { return nil }

var _ info.ImageObject = Record{}
