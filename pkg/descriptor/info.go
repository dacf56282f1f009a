package descriptor

import (
	"fmt"

	"github.com/arcfract/iso9660kit/pkg/consts"
	"github.com/arcfract/iso9660kit/pkg/info"
)

// Type implements info.ImageObject.
func (p Primary) Type() string { return "PrimaryVolumeDescriptor" }

// Name implements info.ImageObject.
func (p Primary) Name() string { return p.Body.VolumeIdentifier }

// Description implements info.ImageObject.
func (p Primary) Description() string {
	return fmt.Sprintf("primary descriptor %q, %d blocks", p.Body.VolumeIdentifier, p.Body.VolumeSpaceSize)
}

// Properties implements info.ImageObject.
func (p Primary) Properties() []info.Property { return bodyProperties(p.Body) }

// Offset implements info.ImageObject; volume descriptors always
// occupy exactly one sector and don't track their own index.
func (p Primary) Offset() int64 { return -1 }

// Size implements info.ImageObject.
func (p Primary) Size() int64 {
	b, err := p.Marshal()
	if err != nil {
		return -1
	}
	return int64(len(b))
}

// GetObjects implements info.ImageObject; the root directory record
// is the only structured nested object a descriptor carries.
func (p Primary) GetObjects() []info.ImageObject {
	return []info.ImageObject{p.Body.RootDirectoryRecord}
}

// Type implements info.ImageObject.
func (s Supplementary) Type() string {
	if s.Body.FileStructureVersion == consts.FILE_STRUCTURE_VERSION_ENHANCED {
		return "EnhancedVolumeDescriptor"
	}
	return "SupplementaryVolumeDescriptor"
}

// Name implements info.ImageObject.
func (s Supplementary) Name() string { return s.Body.VolumeIdentifier }

// Description implements info.ImageObject.
func (s Supplementary) Description() string {
	return fmt.Sprintf("%s %q, encoding=%v", s.Type(), s.Body.VolumeIdentifier, s.Body.EncodingOf())
}

// Properties implements info.ImageObject.
func (s Supplementary) Properties() []info.Property { return bodyProperties(s.Body) }

// Offset implements info.ImageObject.
func (s Supplementary) Offset() int64 { return -1 }

// Size implements info.ImageObject.
func (s Supplementary) Size() int64 {
	b, err := s.Marshal()
	if err != nil {
		return -1
	}
	return int64(len(b))
}

// GetObjects implements info.ImageObject.
func (s Supplementary) GetObjects() []info.ImageObject {
	return []info.ImageObject{s.Body.RootDirectoryRecord}
}

// Type implements info.ImageObject.
func (b BootRecord) Type() string { return "BootRecordVolumeDescriptor" }

// Name implements info.ImageObject.
func (b BootRecord) Name() string { return b.BootSystemIdentifier }

// Description implements info.ImageObject.
func (b BootRecord) Description() string {
	return fmt.Sprintf("boot record, system=%q id=%q", b.BootSystemIdentifier, b.BootIdentifier)
}

// Properties implements info.ImageObject.
func (b BootRecord) Properties() []info.Property {
	return []info.Property{
		{Name: "BootSystemIdentifier", Value: b.BootSystemIdentifier},
		{Name: "BootIdentifier", Value: b.BootIdentifier},
		{Name: "BootSystemUseLength", Value: fmt.Sprintf("%d", len(b.BootSystemUse))},
	}
}

// Offset implements info.ImageObject.
func (b BootRecord) Offset() int64 { return -1 }

// Size implements info.ImageObject.
func (b BootRecord) Size() int64 {
	data, err := b.Marshal()
	if err != nil {
		return -1
	}
	return int64(len(data))
}

// GetObjects implements info.ImageObject; a boot record carries no
// structured nested objects (El Torito catalog parsing is out of
// scope).
func (b BootRecord) GetObjects() []info.ImageObject { return nil }

// Type implements info.ImageObject.
func (p Partition) Type() string { return "PartitionVolumeDescriptor" }

// Name implements info.ImageObject.
func (p Partition) Name() string { return "" }

// Description implements info.ImageObject.
func (p Partition) Description() string {
	return fmt.Sprintf("partition descriptor, %d opaque bytes", len(p.Raw))
}

// Properties implements info.ImageObject.
func (p Partition) Properties() []info.Property {
	return []info.Property{{Name: "RawLength", Value: fmt.Sprintf("%d", len(p.Raw))}}
}

// Offset implements info.ImageObject.
func (p Partition) Offset() int64 { return -1 }

// Size implements info.ImageObject.
func (p Partition) Size() int64 {
	data, err := p.Marshal()
	if err != nil {
		return -1
	}
	return int64(len(data))
}

// GetObjects implements info.ImageObject.
func (p Partition) GetObjects() []info.ImageObject { return nil }

func bodyProperties(b Body) []info.Property {
	return []info.Property{
		{Name: "SystemIdentifier", Value: b.SystemIdentifier},
		{Name: "VolumeIdentifier", Value: b.VolumeIdentifier},
		{Name: "VolumeSpaceSize", Value: fmt.Sprintf("%d", b.VolumeSpaceSize)},
		{Name: "VolumeSetSize", Value: fmt.Sprintf("%d", b.VolumeSetSize)},
		{Name: "VolumeSequenceNumber", Value: fmt.Sprintf("%d", b.VolumeSequenceNum)},
		{Name: "LogicalBlockSize", Value: fmt.Sprintf("%d", b.LogicalBlockSize)},
		{Name: "PathTableSize", Value: fmt.Sprintf("%d", b.PathTableSize)},
		{Name: "PathTableLocationL", Value: fmt.Sprintf("%d", b.LocationTypeL)},
		{Name: "PathTableLocationM", Value: fmt.Sprintf("%d", b.LocationTypeM)},
		{Name: "FileStructureVersion", Value: fmt.Sprintf("%d", b.FileStructureVersion)},
	}
}

var (
	_ info.ImageObject = Primary{}
	_ info.ImageObject = Supplementary{}
	_ info.ImageObject = BootRecord{}
	_ info.ImageObject = Partition{}
)
