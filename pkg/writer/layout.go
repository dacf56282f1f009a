package writer

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-logr/logr"

	"github.com/arcfract/iso9660kit/pkg/consts"
	"github.com/arcfract/iso9660kit/pkg/descriptor"
	"github.com/arcfract/iso9660kit/pkg/directory"
	"github.com/arcfract/iso9660kit/pkg/encoding"
	"github.com/arcfract/iso9660kit/pkg/options"
	"github.com/arcfract/iso9660kit/pkg/pathtable"
)

type viewKind int

const (
	viewPrimary viewKind = iota
	viewSupplementary
	viewEnhanced
)

// view carries everything the layout pass accumulates for one
// descriptor's name space: its directory extents, path table, and
// the descriptor body it ultimately patches.
type view struct {
	kind    viewKind
	nameEnc encoding.NameEncoding
	susp    bool
	utf8    bool

	descriptorLBA uint32

	blocks       map[*Node]uint32
	length       map[*Node]uint32
	lba          map[*Node]uint32
	parentLBA    map[*Node]uint32
	parentLength map[*Node]uint32
	data         map[*Node][]byte
	names        map[*Node]string

	pathTableSize    uint32
	pathTableLBA_L   uint32
	pathTableLBA_M   uint32
	pathTableBytesL  []byte
	pathTableBytesM  []byte

	body *descriptor.Body
}

func newView(kind viewKind, nameEnc encoding.NameEncoding, susp, utf8 bool) *view {
	return &view{
		kind:         kind,
		nameEnc:      nameEnc,
		susp:         susp,
		utf8:         utf8,
		blocks:       map[*Node]uint32{},
		length:       map[*Node]uint32{},
		lba:          map[*Node]uint32{},
		parentLBA:    map[*Node]uint32{},
		parentLength: map[*Node]uint32{},
		data:         map[*Node][]byte{},
		names:        map[*Node]string{},
	}
}

// fileExtent is a planned, shared (deduplicated across views) LBA
// range for one file node's contents.
type fileExtent struct {
	node   *Node
	lba    uint32
	blocks uint32
}

// Layout is the fully planned, address-resolved image ready for
// emission: every descriptor, directory extent, and path table has
// final bytes at a final LBA, and every file has a final LBA and
// block count (its bytes are streamed lazily during emission).
type Layout struct {
	BlockSize   int
	TotalBlocks uint32

	sectors map[uint32][]byte // descriptors, terminator, directory extents, path tables
	files   []fileExtent      // ascending LBA order

	Primary       *descriptor.Primary
	Supplementary *descriptor.Supplementary
	Enhanced      *descriptor.Supplementary

	// Logger receives diagnostics for the emission pass that follows
	// Plan; it's copied from the Options a layout was planned with so
	// Emit doesn't need its own Options parameter.
	Logger logr.Logger

	terminatorLBA uint32
}

// ErrNoRootDirectory reports a tree with no root directory. Plan does
// not return it: NewTree always creates a synthetic root, so a tree
// with no added nodes still plans.
var ErrNoRootDirectory = fmt.Errorf("writer: cannot plan a layout with no nodes")

// Plan runs the layout pass over t per opts, returning a fully
// address-resolved Layout ready for Emit.
func Plan(t *Tree, opts *options.Options, stamp time.Time) (*Layout, error) {
	blockSize := opts.BlockSize
	if blockSize == 0 {
		blockSize = consts.ISO9660_SECTOR_SIZE
	}

	var views []*view
	views = append(views, newView(viewPrimary, encoding.ASCII, opts.EnableSUSP, false))
	if opts.IncludeSupplementary {
		views = append(views, newView(viewSupplementary, encoding.UCS2BE, false, false))
	}
	if opts.IncludeEnhanced {
		views = append(views, newView(viewEnhanced, encoding.UCS2BE, false, false))
	}

	cursor := uint32(consts.ISO9660_SYSTEM_AREA_SECTORS)
	for _, v := range views {
		v.descriptorLBA = cursor
		cursor++
	}
	terminatorLBA := cursor
	cursor++

	l := &Layout{BlockSize: blockSize, sectors: map[uint32][]byte{}, terminatorLBA: terminatorLBA, Logger: opts.Logger}

	for _, v := range views {
		if err := computeDirSizes(v, t.root, t.root, blockSize); err != nil {
			opts.Logger.V(1).Error(err, "computing directory sizes failed", "view", v.kind)
			return nil, fmt.Errorf("writer: compute directory sizes: %w", err)
		}
	}
	for _, v := range views {
		cursor = allocateDirLBAs(v, t.root, t.root, cursor)
	}

	fileNodes := collectFiles(t.root)
	sort.Slice(fileNodes, func(i, j int) bool { return fullPath(fileNodes[i]) < fullPath(fileNodes[j]) })
	fileLBA := map[*Node]uint32{}
	for _, n := range fileNodes {
		blocks := blocksFor32(n.Size, blockSize)
		l.files = append(l.files, fileExtent{node: n, lba: cursor, blocks: blocks})
		fileLBA[n] = cursor
		cursor += blocks
		if blocks == 0 {
			cursor++ // zero-length files still occupy a placeholder block
			l.files[len(l.files)-1].blocks = 1
		}
	}

	for _, v := range views {
		if err := buildDirBytes(v, t.root, t.root, stamp, fileLBA, opts); err != nil {
			opts.Logger.V(1).Error(err, "building directory bytes failed", "view", v.kind)
			return nil, fmt.Errorf("writer: build directory bytes: %w", err)
		}
		l.sectors[v.lba[t.root]] = v.data[t.root]
		addDirSectors(l, v, t.root)
	}

	for _, v := range views {
		cursor = planPathTables(v, t.root, cursor, blockSize)
		l.sectors[v.pathTableLBA_L] = padToBlocks(v.pathTableBytesL, blockSize)
		l.sectors[v.pathTableLBA_M] = padToBlocks(v.pathTableBytesM, blockSize)
	}

	l.TotalBlocks = cursor

	for _, v := range views {
		patchBody(v, t.root, cursor, opts, stamp)
	}

	primaryView := views[0]
	primary := descriptor.Primary{Body: *primaryView.body}
	l.Primary = &primary
	sector, err := primary.Marshal()
	if err != nil {
		return nil, fmt.Errorf("writer: marshal primary: %w", err)
	}
	l.sectors[primaryView.descriptorLBA] = sector

	for _, v := range views[1:] {
		sup := descriptor.Supplementary{Body: *v.body}
		sector, err := sup.Marshal()
		if err != nil {
			return nil, fmt.Errorf("writer: marshal supplementary: %w", err)
		}
		l.sectors[v.descriptorLBA] = sector
		if v.kind == viewSupplementary {
			l.Supplementary = &sup
		} else {
			l.Enhanced = &sup
		}
	}

	termSector, err := descriptor.Terminator{}.Marshal()
	if err != nil {
		return nil, err
	}
	l.sectors[terminatorLBA] = termSector

	opts.Logger.V(2).Info("layout planned", "blocks", l.TotalBlocks, "files", len(l.files), "views", len(views))
	return l, nil
}

func collectFiles(n *Node) []*Node {
	var out []*Node
	for _, c := range sortedChildren(n, true) {
		if c.Kind == NodeFile {
			out = append(out, c)
		}
		if c.Kind == NodeDirectory {
			out = append(out, collectFiles(c)...)
		}
	}
	return out
}

func fullPath(n *Node) string {
	if n.Parent == nil {
		return "/"
	}
	parent := fullPath(n.Parent)
	if parent == "/" {
		return "/" + n.Name
	}
	return parent + "/" + n.Name
}

func blocksFor32(size uint32, blockSize int) uint32 {
	if size == 0 {
		return 0
	}
	return (size + uint32(blockSize) - 1) / uint32(blockSize)
}

func padToBlocks(data []byte, blockSize int) []byte {
	n := (len(data) + blockSize - 1) / blockSize
	if n == 0 {
		n = 1
	}
	out := make([]byte, n*blockSize)
	copy(out, data)
	return out
}

// onDiscName returns this node's derived name under v, uniquifying
// against already-assigned sibling names in taken.
func onDiscName(v *view, n *Node, taken map[string]bool) string {
	var candidate string
	switch v.nameEnc {
	case encoding.ASCII:
		if n.Kind == NodeDirectory {
			candidate = legacyDirName(n.Name)
		} else {
			candidate = deriveLegacyName(n.Name)
		}
		candidate = uniquifyLegacyName(candidate, taken)
	default:
		candidate = deriveJolietName(n.Name, v.utf8)
		candidate = uniquifyJolietName(candidate, taken)
	}
	taken[candidate] = true
	v.names[n] = candidate
	return candidate
}

func legacyDirName(raw string) string {
	s := sanitizeD(raw)
	if len(s) > 8 {
		s = s[:8]
	}
	if s == "" {
		s = "_"
	}
	return s
}

func uniquifyJolietName(candidate string, taken map[string]bool) string {
	if !taken[candidate] {
		return candidate
	}
	for i := 0; i < 10000; i++ {
		c := fmt.Sprintf("%s~%d", candidate, i)
		if len(c) > jolietMaxNameBytes {
			c = c[:jolietMaxNameBytes]
		}
		if !taken[c] {
			return c
		}
	}
	return candidate
}

// recordLength computes the on-disc length of a record for child c
// under v, without needing c's final LBA (fixed-width fields don't
// depend on the numeric value).
func recordLength(v *view, c *Node, taken map[string]bool) (int, error) {
	name := onDiscName(v, c, taken)
	rec := directory.Record{Identifier: directory.Named(name)}
	if v.susp {
		trailer, err := buildTrailer(c, 0, 0, time.Time{})
		if err != nil {
			return 0, err
		}
		rec.SystemUse = trailer
	}
	return rec.Length(v.nameEnc)
}

func computeDirSizes(v *view, n, root *Node, blockSize int) error {
	children := sortedChildren(n, v.susp)
	taken := map[string]bool{}

	selfRec := directory.Record{Identifier: directory.Self()}
	parentRec := directory.Record{Identifier: directory.Parent()}
	if v.susp {
		selfTrailer, err := buildDotTrailer(n, 0, 0, time.Time{}, n == root)
		if err != nil {
			return err
		}
		selfRec.SystemUse = selfTrailer
		parentTrailer, err := buildDotTrailer(dotParentAttrNode(n), 0, 0, time.Time{}, false)
		if err != nil {
			return err
		}
		parentRec.SystemUse = parentTrailer
	}
	selfLen, err := selfRec.Length(v.nameEnc)
	if err != nil {
		return err
	}
	parentLen, err := parentRec.Length(v.nameEnc)
	if err != nil {
		return err
	}
	total := selfLen + parentLen

	for _, c := range children {
		recLen, err := recordLength(v, c, taken)
		if err != nil {
			return err
		}
		total += recLen
		if c.Kind == NodeDirectory {
			if err := computeDirSizes(v, c, root, blockSize); err != nil {
				return err
			}
		}
	}

	v.length[n] = uint32(total)
	v.blocks[n] = blocksFor32(uint32(total), blockSize)
	if v.blocks[n] == 0 {
		v.blocks[n] = 1
	}
	return nil
}

// dotParentAttrNode is the node whose attributes populate a directory's
// ".." record: its actual parent, or itself when it is the root (whose
// parent is conventionally itself).
func dotParentAttrNode(n *Node) *Node {
	if n.Parent == nil {
		return n
	}
	return n.Parent
}

func allocateDirLBAs(v *view, n, parent *Node, cursor uint32) uint32 {
	lba := cursor
	v.lba[n] = lba
	cursor += v.blocks[n]

	if n == parent {
		v.parentLBA[n] = lba
		v.parentLength[n] = v.length[n]
	}

	for _, c := range sortedChildren(n, v.susp) {
		if c.Kind != NodeDirectory {
			continue
		}
		v.parentLBA[c] = lba
		v.parentLength[c] = v.length[n]
		cursor = allocateDirLBAs(v, c, c, cursor)
	}
	return cursor
}

func buildDirBytes(v *view, n, root *Node, stamp time.Time, fileLBA map[*Node]uint32, opts *options.Options) error {
	children := sortedChildren(n, v.susp)
	taken := map[string]bool{}
	for _, c := range children {
		onDiscName(v, c, taken) // stabilize name assignment order matches computeDirSizes
	}

	var out []byte
	selfRec := directory.Record{
		Identifier:     directory.Self(),
		ExtentLocation: v.lba[n],
		DataLength:     v.length[n],
		RecordTime:     stamp,
		Flags:          directory.FileFlags(0).WithDirectory(true),
	}
	parentRec := directory.Record{
		Identifier:     directory.Parent(),
		ExtentLocation: v.parentLBA[n],
		DataLength:     v.parentLength[n],
		RecordTime:     stamp,
		Flags:          directory.FileFlags(0).WithDirectory(true),
	}
	if v.susp {
		selfTrailer, err := buildDotTrailer(n, opts.DefaultUID, opts.DefaultGID, stamp, n == root)
		if err != nil {
			opts.Logger.V(1).Error(err, "susp self trailer did not fit the record budget", "node", n.Name)
			return err
		}
		selfRec.SystemUse = selfTrailer
		parentTrailer, err := buildDotTrailer(dotParentAttrNode(n), opts.DefaultUID, opts.DefaultGID, stamp, false)
		if err != nil {
			opts.Logger.V(1).Error(err, "susp parent trailer did not fit the record budget", "node", n.Name)
			return err
		}
		parentRec.SystemUse = parentTrailer
	}
	for _, r := range []directory.Record{selfRec, parentRec} {
		b, err := r.MarshalEncoded(v.nameEnc)
		if err != nil {
			return err
		}
		out = append(out, b...)
	}

	for _, c := range children {
		name := v.names[c]
		rec := directory.Record{
			Identifier: directory.Named(name),
			RecordTime: stamp,
		}
		switch c.Kind {
		case NodeDirectory:
			rec.ExtentLocation = v.lba[c]
			rec.DataLength = v.length[c]
			rec.Flags = directory.FileFlags(0).WithDirectory(true)
		default:
			rec.ExtentLocation = fileLBA[c]
			rec.DataLength = c.Size
		}
		if v.susp {
			trailer, err := buildTrailer(c, opts.DefaultUID, opts.DefaultGID, stamp)
			if err != nil {
				opts.Logger.V(1).Error(err, "susp trailer did not fit the record budget", "node", c.Name)
				return err
			}
			rec.SystemUse = trailer
		}
		b, err := rec.MarshalEncoded(v.nameEnc)
		if err != nil {
			return err
		}
		out = append(out, b...)

		if c.Kind == NodeDirectory {
			if err := buildDirBytes(v, c, root, stamp, fileLBA, opts); err != nil {
				return err
			}
		}
	}

	v.data[n] = out
	return nil
}

func addDirSectors(l *Layout, v *view, n *Node) {
	padded := padToBlocks(v.data[n], l.BlockSize)
	l.sectors[v.lba[n]] = padded
	for _, c := range sortedChildren(n, v.susp) {
		if c.Kind == NodeDirectory {
			addDirSectors(l, v, c)
		}
	}
}

func planPathTables(v *view, root *Node, cursor uint32, blockSize int) uint32 {
	table := pathtable.Table{}
	index := map[*Node]uint16{root: 1}
	table.Records = append(table.Records, pathtable.Record{
		ExtentLocation: v.lba[root],
		ParentNumber:   1,
		Identifier:     "",
	})
	appendPathTableLevels(v, root, &table, index)

	v.pathTableBytesL = table.Marshal(encoding.LittleEndian, v.nameEnc)
	v.pathTableBytesM = table.Marshal(encoding.BigEndian, v.nameEnc)
	v.pathTableSize = uint32(len(v.pathTableBytesL))

	v.pathTableLBA_L = cursor
	cursor += blocksFor32(v.pathTableSize, blockSize)
	if blocksFor32(v.pathTableSize, blockSize) == 0 {
		cursor++
	}
	v.pathTableLBA_M = cursor
	cursor += blocksFor32(v.pathTableSize, blockSize)
	if blocksFor32(v.pathTableSize, blockSize) == 0 {
		cursor++
	}
	return cursor
}

// appendPathTableLevels appends path table records in strict
// breadth-first order: every directory at depth N is recorded before
// any directory at depth N+1, as ECMA-119 9.4 requires. A plain
// per-branch recursion would instead finish one sibling's entire
// subtree before moving to the next, interleaving deeper levels ahead
// of shallower ones.
func appendPathTableLevels(v *view, root *Node, table *pathtable.Table, index map[*Node]uint16) {
	level := []*Node{root}
	for len(level) > 0 {
		var next []*Node
		for _, n := range level {
			for _, c := range sortedChildren(n, v.susp) {
				if c.Kind != NodeDirectory {
					continue
				}
				table.Records = append(table.Records, pathtable.Record{
					ExtentLocation: v.lba[c],
					ParentNumber:   index[n],
					Identifier:     v.names[c],
				})
				index[c] = uint16(len(table.Records))
				next = append(next, c)
			}
		}
		level = next
	}
}

func patchBody(v *view, root *Node, totalBlocks uint32, opts *options.Options, stamp time.Time) {
	body := &descriptor.Body{}
	body.VolumeSpaceSize = totalBlocks
	body.LogicalBlockSize = uint16(consts.ISO9660_SECTOR_SIZE)
	body.PathTableSize = v.pathTableSize
	body.LocationTypeL = v.pathTableLBA_L
	body.LocationTypeM = v.pathTableLBA_M
	body.VolumeIdentifier = opts.VolumeIdentifier
	body.CreationDateTime = stamp
	body.ModificationDateTime = stamp
	body.RootDirectoryRecord = directory.Record{
		Identifier:     directory.Self(),
		ExtentLocation: v.lba[root],
		DataLength:     v.length[root],
		RecordTime:     stamp,
		Flags:          directory.FileFlags(0).WithDirectory(true),
	}
	body.FileStructureVersion = consts.FILE_STRUCTURE_VERSION_STANDARD
	if v.kind == viewEnhanced {
		body.FileStructureVersion = consts.FILE_STRUCTURE_VERSION_ENHANCED
	}
	if v.kind != viewPrimary {
		escape := consts.JOLIET_LEVEL_3_ESCAPE
		if v.utf8 {
			escape = consts.JOLIET_UTF8_ESCAPE_G
		}
		copy(body.EscapeSequences[:], escape)
	}
	v.body = body
}
