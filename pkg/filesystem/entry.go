// Package filesystem implements the read path: volume-descriptor
// selection, path resolution via directory records or the path
// table, directory enumeration, and lazy extent streaming.
package filesystem

import (
	"time"

	"github.com/arcfract/iso9660kit/pkg/directory"
)

// EntryKind discriminates the FSEntry variants.
type EntryKind int

const (
	KindFile EntryKind = iota
	KindDirectory
	KindSymlink
	KindCurrentDirectory
	KindParentDirectory
)

// Metadata carries the POSIX fields and on-disc provenance of an
// FSEntry, however they were sourced (Rock Ridge if present,
// otherwise the directory record's own fields).
type Metadata struct {
	Mode         uint32
	UID          uint32
	GID          uint32
	Links        uint32
	Creation     time.Time
	Modification time.Time
	HasRockRidge bool
	Record       directory.Record
}

// FSEntry is one resolved filesystem entry: a file, directory,
// symlink, or one of the synthetic "." / ".." records.
type FSEntry struct {
	Kind     EntryKind
	Name     string
	Size     uint32
	Target   string // only meaningful when Kind == KindSymlink
	Metadata Metadata
}
