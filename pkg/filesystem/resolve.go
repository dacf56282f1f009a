package filesystem

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/arcfract/iso9660kit/pkg/descriptor"
	"github.com/arcfract/iso9660kit/pkg/directory"
	"github.com/arcfract/iso9660kit/pkg/encoding"
	"github.com/arcfract/iso9660kit/pkg/medium"
	"github.com/arcfract/iso9660kit/pkg/options"
	"github.com/arcfract/iso9660kit/pkg/pathtable"
	"github.com/arcfract/iso9660kit/pkg/susp"
)

// ErrInvalidPath is returned when a path has no match while
// resolving, per spec §7's Spec error taxonomy.
type ErrInvalidPath struct {
	Path string
}

func (e *ErrInvalidPath) Error() string {
	return fmt.Sprintf("filesystem: invalid path %q", e.Path)
}

// Reader resolves paths and streams file contents against a
// discovered volume descriptor set. Not safe for concurrent use.
type Reader struct {
	medium    medium.Medium
	blockSize int
	set       descriptor.Set
	logger    logr.Logger

	stripVersion bool

	primarySUSPProbe *bool
}

// Open discovers and classifies the volume descriptor set on m and
// returns a Reader ready for path resolution.
func Open(m medium.Medium, opts *options.Options) (*Reader, error) {
	r := &Reader{
		medium:       m,
		blockSize:    m.SectorSize(),
		logger:       opts.Logger,
		stripVersion: opts.StripVersionInfo,
	}
	set, err := descriptor.Discover(func(idx int) ([]byte, error) {
		return m.ReadSector(idx)
	}, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("filesystem: open: %w", err)
	}
	r.set = set
	return r, nil
}

func (r *Reader) readExtent(lba, length uint32) ([]byte, error) {
	start := int(lba)
	end := start + blocksFor(length, r.blockSize)
	out := make([]byte, 0, blocksFor(length, r.blockSize)*r.blockSize)
	for i := start; i < end; i++ {
		sector, err := r.medium.ReadSector(i)
		if err != nil {
			return nil, fmt.Errorf("filesystem: reading extent sector %d: %w", i, err)
		}
		out = append(out, sector...)
	}
	if uint32(len(out)) > length {
		out = out[:length]
	}
	return out, nil
}

func blocksFor(length uint32, blockSize int) int {
	if length == 0 {
		return 0
	}
	return int((length + uint32(blockSize) - 1) / uint32(blockSize))
}

func decodeRecordAt(data []byte, enc encoding.NameEncoding) (directory.Record, int, error) {
	return directory.Unmarshal(data, enc)
}

// GetFSEntry resolves a "/"-separated absolute path under the policy
// an option selected (default Any).
func (r *Reader) GetFSEntry(path string, opts *options.Options) (FSEntry, error) {
	sel, err := r.selectDescriptor(opts.Policy)
	if err != nil {
		return FSEntry{}, err
	}
	components := splitPath(path)
	if opts.PathTableMode == options.TraversePathTable {
		return r.resolveViaPathTable(sel, components)
	}
	return r.resolveViaRecords(sel, components)
}

// ListDirectory returns every entry (excluding "." and "..") within
// the directory at path.
func (r *Reader) ListDirectory(path string, opts *options.Options) ([]FSEntry, error) {
	entry, err := r.GetFSEntry(path, opts)
	if err != nil {
		return nil, err
	}
	if entry.Kind != KindDirectory {
		if path != "/" {
			return nil, &ErrInvalidPath{Path: path}
		}
	}
	sel, err := r.selectDescriptor(opts.Policy)
	if err != nil {
		return nil, err
	}
	rec := entry.Metadata.Record
	if path == "/" {
		rec = sel.body.RootDirectoryRecord
	}
	all, err := r.enumerateDirectory(sel, rec)
	if err != nil {
		return nil, err
	}
	var out []FSEntry
	for _, e := range all {
		if e.Kind == KindCurrentDirectory || e.Kind == KindParentDirectory {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func (r *Reader) resolveViaRecords(sel selected, components []string) (FSEntry, error) {
	rec := sel.body.RootDirectoryRecord
	if len(components) == 0 {
		return r.buildFSEntry(sel, rec, KindDirectory, "")
	}
	for i, comp := range components {
		entries, err := r.enumerateDirectory(sel, rec)
		if err != nil {
			return FSEntry{}, err
		}
		match, ok := findByName(entries, comp, r.stripVersion)
		if !ok {
			return FSEntry{}, &ErrInvalidPath{Path: comp}
		}
		if i == len(components)-1 {
			return match, nil
		}
		if match.Kind != KindDirectory {
			return FSEntry{}, &ErrInvalidPath{Path: comp}
		}
		rec = match.Metadata.Record
	}
	return FSEntry{}, &ErrInvalidPath{Path: "/"}
}

func findByName(entries []FSEntry, name string, stripVersion bool) (FSEntry, bool) {
	for _, e := range entries {
		candidate := e.Name
		if stripVersion {
			candidate = stripVersionSuffix(candidate)
			name = stripVersionSuffix(name)
		}
		if candidate == name {
			return e, true
		}
	}
	return FSEntry{}, false
}

func stripVersionSuffix(name string) string {
	if idx := strings.LastIndexByte(name, ';'); idx >= 0 {
		return name[:idx]
	}
	return name
}

// resolveViaPathTable walks the L-path table in declaration order,
// tracking parent-number membership by record index (spec §9 Open
// Question (b) — the record index, not the path-table traversal
// index, is the value ECMA-119 §9.4 actually specifies).
func (r *Reader) resolveViaPathTable(sel selected, components []string) (FSEntry, error) {
	if len(components) == 0 {
		return r.buildFSEntry(sel, sel.body.RootDirectoryRecord, KindDirectory, "")
	}

	raw, err := r.readExtent(sel.body.LocationTypeL, sel.body.PathTableSize)
	if err != nil {
		return FSEntry{}, err
	}
	table, err := pathtable.UnmarshalTable(raw, encoding.LittleEndian, sel.nameEnc)
	if err != nil {
		return FSEntry{}, err
	}

	target := uint16(1) // root's own table number is 1
	var matchedIdx int
	for ci, comp := range components {
		found := false
		for idx, rec := range table.Records {
			if rec.ParentNumber != target {
				continue
			}
			if rec.Identifier != comp {
				continue
			}
			found = true
			matchedIdx = idx
			if ci < len(components)-1 {
				target = uint16(idx + 1) // record index, 1-based
			}
			break
		}
		if !found {
			if ci == len(components)-1 {
				// Not present as a directory: fall back to a linear
				// search of the last matched parent's extent for a
				// file with this name.
				return r.fallbackFileLookup(sel, target, comp)
			}
			return FSEntry{}, &ErrInvalidPath{Path: comp}
		}
	}

	rec := table.Records[matchedIdx]
	length, err := r.directorySelfLength(rec.ExtentLocation, sel.nameEnc)
	if err != nil {
		return FSEntry{}, err
	}
	return r.buildFSEntry(sel, directory.Record{
		ExtentLocation: rec.ExtentLocation,
		DataLength:     length,
		Flags:          directory.FileFlags(0).WithDirectory(true),
		Identifier:     directory.Named(rec.Identifier),
	}, KindDirectory, rec.Identifier)
}

// directorySelfLength recovers a directory's DataLength by reading its
// own "." self-record, the first record in its extent — path table
// records (pathtable.Record) carry no length field of their own.
func (r *Reader) directorySelfLength(extentLocation uint32, nameEnc encoding.NameEncoding) (uint32, error) {
	data, err := r.readExtent(extentLocation, uint32(r.blockSize))
	if err != nil {
		return 0, err
	}
	rec, n, err := decodeRecordAt(data, nameEnc)
	if err != nil {
		return 0, fmt.Errorf("filesystem: reading self record at lba %d: %w", extentLocation, err)
	}
	if n == 0 || rec.Identifier.Kind != directory.NameSelf {
		return 0, fmt.Errorf("filesystem: directory at lba %d has no self record", extentLocation)
	}
	return rec.DataLength, nil
}

func (r *Reader) fallbackFileLookup(sel selected, parentTableNumber uint16, name string) (FSEntry, error) {
	raw, err := r.readExtent(sel.body.LocationTypeL, sel.body.PathTableSize)
	if err != nil {
		return FSEntry{}, err
	}
	table, err := pathtable.UnmarshalTable(raw, encoding.LittleEndian, sel.nameEnc)
	if err != nil {
		return FSEntry{}, err
	}
	if int(parentTableNumber) > len(table.Records) {
		return FSEntry{}, &ErrInvalidPath{Path: name}
	}
	parentRec := table.Records[parentTableNumber-1]
	length, err := r.directorySelfLength(parentRec.ExtentLocation, sel.nameEnc)
	if err != nil {
		return FSEntry{}, err
	}
	dirRec := directory.Record{ExtentLocation: parentRec.ExtentLocation, DataLength: length, Flags: directory.FileFlags(0).WithDirectory(true)}

	entries, err := r.enumerateDirectory(sel, dirRec)
	if err != nil {
		return FSEntry{}, err
	}
	match, ok := findByName(entries, name, r.stripVersion)
	if !ok {
		return FSEntry{}, &ErrInvalidPath{Path: name}
	}
	return match, nil
}

func (r *Reader) enumerateDirectory(sel selected, dirRec directory.Record) ([]FSEntry, error) {
	data, err := r.readExtent(dirRec.ExtentLocation, dirRec.DataLength)
	if err != nil {
		return nil, err
	}
	var out []FSEntry
	for off := 0; off < len(data); {
		rec, n, err := decodeRecordAt(data[off:], sel.nameEnc)
		if err != nil {
			r.logger.V(1).Error(err, "skipping malformed directory record")
			break
		}
		if n == 0 {
			// advance to the next sector boundary
			next := ((off / r.blockSize) + 1) * r.blockSize
			if next <= off {
				break
			}
			off = next
			continue
		}
		kind := KindFile
		if rec.Flags.IsDirectory() {
			kind = KindDirectory
		}
		switch rec.Identifier.Kind {
		case directory.NameSelf:
			kind = KindCurrentDirectory
		case directory.NameParent:
			kind = KindParentDirectory
		}
		entry, err := r.buildFSEntry(sel, rec, kind, "")
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
		off += n
	}
	return out, nil
}

func (r *Reader) buildFSEntry(sel selected, rec directory.Record, kind EntryKind, nameOverride string) (FSEntry, error) {
	name := nameOverride
	if name == "" {
		switch rec.Identifier.Kind {
		case directory.NameSelf:
			name = "."
		case directory.NameParent:
			name = ".."
		default:
			name = rec.Identifier.Name
		}
	}

	meta := Metadata{
		Mode:         defaultMode(kind),
		Creation:     rec.RecordTime,
		Modification: rec.RecordTime,
		Record:       rec,
	}

	var target string
	if len(rec.SystemUse) > 0 {
		area, err := susp.NewArea(rec.SystemUse, r.logger)
		if err == nil {
			if err := area.Resolve(r.suspBlockReader()); err != nil {
				r.logger.V(1).Error(err, "susp area did not resolve cleanly")
			}
			compact := susp.Compact(area.Entries())
			applyRockRidge(&meta, compact, &name, &target)
			if len(target) > 0 {
				kind = KindSymlink
			}
		}
	}

	return FSEntry{
		Kind:     kind,
		Name:     name,
		Size:     rec.DataLength,
		Target:   target,
		Metadata: meta,
	}, nil
}

func defaultMode(kind EntryKind) uint32 {
	if kind == KindDirectory || kind == KindCurrentDirectory || kind == KindParentDirectory {
		return 0o755
	}
	return 0o644
}

func (r *Reader) suspBlockReader() susp.BlockReader {
	return func(block, offset, length uint32) ([]byte, error) {
		data, err := r.readExtent(block, offset+length)
		if err != nil {
			return nil, err
		}
		if int(offset) > len(data) {
			return nil, fmt.Errorf("filesystem: continuation offset %d beyond extent", offset)
		}
		end := int(offset) + int(length)
		if end > len(data) {
			end = len(data)
		}
		return data[offset:end], nil
	}
}

func applyRockRidge(meta *Metadata, entries []susp.Entry, name, target *string) {
	for _, e := range entries {
		switch v := e.(type) {
		case susp.PX:
			meta.Mode = v.Mode
			meta.UID = v.UID
			meta.GID = v.GID
			meta.Links = v.Links
			meta.HasRockRidge = true
		case susp.NM:
			*name = string(v.Name)
			meta.HasRockRidge = true
		case susp.SL:
			*target = renderSymlinkTarget(v)
			meta.HasRockRidge = true
		case susp.TF:
			meta.HasRockRidge = true
		}
	}
}

func renderSymlinkTarget(sl susp.SL) string {
	var parts []string
	for _, c := range sl.Components {
		switch {
		case c.Flags&susp.SLRoot != 0:
			parts = append(parts, "")
		case c.Flags&susp.SLVolumeRoot != 0:
			parts = append(parts, "", "")
		case c.Flags&susp.SLCurrentDir != 0:
			parts = append(parts, ".")
		case c.Flags&susp.SLParentDir != 0:
			parts = append(parts, "..")
		default:
			parts = append(parts, string(c.Bytes))
		}
	}
	return strings.Join(parts, "/")
}
