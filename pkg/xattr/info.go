package xattr

import (
	"fmt"

	"github.com/arcfract/iso9660kit/pkg/info"
)

// Type implements info.ImageObject.
func (r Record) Type() string { return "ExtendedAttributeRecord" }

// Name implements info.ImageObject.
func (r Record) Name() string { return r.SystemIdentifier }

// Description implements info.ImageObject.
func (r Record) Description() string {
	return fmt.Sprintf("xattr record, owner=%d group=%d perms=%x", r.OwnerID, r.GroupID, r.Permissions.Marshal())
}

// Properties implements info.ImageObject.
func (r Record) Properties() []info.Property {
	return []info.Property{
		{Name: "OwnerID", Value: fmt.Sprintf("%d", r.OwnerID)},
		{Name: "GroupID", Value: fmt.Sprintf("%d", r.GroupID)},
		{Name: "RecordFormat", Value: fmt.Sprintf("%d", r.RecordFormat)},
		{Name: "RecordAttributes", Value: fmt.Sprintf("%d", r.RecordAttributes)},
		{Name: "RecordLength", Value: fmt.Sprintf("%d", r.RecordLength)},
		{Name: "SystemIdentifier", Value: r.SystemIdentifier},
		{Name: "Creation", Value: r.Creation.String()},
		{Name: "Modification", Value: r.Modification.String()},
		{Name: "Expiration", Value: r.Expiration.String()},
		{Name: "Effective", Value: r.Effective.String()},
	}
}

// Offset implements info.ImageObject. An extended attribute record's
// position is wherever its owning directory record's
// ExtendedAttrLength field points, which this package doesn't track.
func (r Record) Offset() int64 { return -1 }

// Size implements info.ImageObject.
func (r Record) Size() int64 {
	b, err := r.Marshal()
	if err != nil {
		return -1
	}
	return int64(len(b))
}

// GetObjects implements info.ImageObject; an extended attribute
// record has no nested objects.
func (r Record) GetObjects() []info.ImageObject { return nil }

var _ info.ImageObject = Record{}
