package directory

// FileFlags is the one-byte flag field of a directory record
// (ECMA-119 9.1.6).
type FileFlags byte

const (
	// FlagHidden marks the record as "existence" — hidden from a
	// normal directory listing.
	FlagHidden FileFlags = 1 << 0
	// FlagDirectory marks the record as describing a directory.
	FlagDirectory FileFlags = 1 << 1
	// FlagAssociated marks the record as an associated file.
	FlagAssociated FileFlags = 1 << 2
	// FlagRecord marks the record's file as having record format.
	FlagRecord FileFlags = 1 << 3
	// FlagProtection marks the record's file as owner/group protected.
	FlagProtection FileFlags = 1 << 4
	// FlagMultiExtent marks the record as one of several extents
	// making up a single file.
	FlagMultiExtent FileFlags = 1 << 7
)

// Has reports whether all bits in flag are set.
func (f FileFlags) Has(flag FileFlags) bool {
	return f&flag == flag
}

// IsDirectory reports whether the directory bit is set.
func (f FileFlags) IsDirectory() bool {
	return f.Has(FlagDirectory)
}

// WithDirectory sets or clears the directory bit, enforcing the
// ECMA-119 mutual exclusion: a directory record may not also be
// associated, record-format, or multi-extent.
func (f FileFlags) WithDirectory(set bool) FileFlags {
	if set {
		return (f | FlagDirectory) &^ (FlagAssociated | FlagRecord | FlagMultiExtent)
	}
	return f &^ FlagDirectory
}
