package directory

import (
	"fmt"

	"github.com/arcfract/iso9660kit/pkg/encoding"
	"github.com/arcfract/iso9660kit/pkg/info"
)

// Type implements info.ImageObject.
func (r Record) Type() string { return "DirectoryRecord" }

// Name implements info.ImageObject.
func (r Record) Name() string {
	switch r.Identifier.Kind {
	case NameSelf:
		return "."
	case NameParent:
		return ".."
	default:
		return r.Identifier.Name
	}
}

// Description implements info.ImageObject.
func (r Record) Description() string {
	kind := "file"
	if r.Flags.IsDirectory() {
		kind = "directory"
	}
	return fmt.Sprintf("%s record %q, extent %d, %d bytes", kind, r.Name(), r.ExtentLocation, r.DataLength)
}

// Properties implements info.ImageObject.
func (r Record) Properties() []info.Property {
	return []info.Property{
		{Name: "Identifier", Value: r.Name()},
		{Name: "ExtendedAttrLength", Value: fmt.Sprintf("%d", r.ExtendedAttrLength)},
		{Name: "ExtentLocation", Value: fmt.Sprintf("%d", r.ExtentLocation)},
		{Name: "DataLength", Value: fmt.Sprintf("%d", r.DataLength)},
		{Name: "Flags", Value: fmt.Sprintf("%08b", byte(r.Flags))},
		{Name: "FileUnitSize", Value: fmt.Sprintf("%d", r.FileUnitSize)},
		{Name: "InterleaveGapSize", Value: fmt.Sprintf("%d", r.InterleaveGapSize)},
		{Name: "VolumeSequenceNumber", Value: fmt.Sprintf("%d", r.VolumeSequenceNumber)},
		{Name: "SystemUseLength", Value: fmt.Sprintf("%d", len(r.SystemUse))},
	}
}

// Offset implements info.ImageObject; a record's position within its
// owning extent is tracked by the caller walking that extent, not by
// the record itself.
func (r Record) Offset() int64 { return -1 }

// Size implements info.ImageObject, using the ASCII (Primary) width;
// Joliet/Enhanced records of the same logical entry are a different
// size because of the wider name encoding.
func (r Record) Size() int64 {
	n, err := r.Length(encoding.ASCII)
	if err != nil {
		return -1
	}
	return int64(n)
}

// GetObjects implements info.ImageObject; a record's SUSP entries are
// reachable only after resolving its system-use trailer through
// pkg/susp, which this package doesn't import to avoid a cycle.
func (r Record) GetObjects() []info.ImageObject { return nil }

var _ info.ImageObject = Record{}
