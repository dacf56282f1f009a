package writer

import (
	"time"

	"github.com/arcfract/iso9660kit/pkg/medium"
	"github.com/arcfract/iso9660kit/pkg/options"
)

// Writer accumulates an in-memory node tree and produces a finished
// image from it. The zero value is not usable; construct with New.
type Writer struct {
	tree *Tree
}

// New returns an empty Writer.
func New() *Writer {
	return &Writer{tree: NewTree()}
}

// AddDirectory inserts a directory at path, creating intermediate
// directories as needed.
func (w *Writer) AddDirectory(path string, meta *Metadata) error {
	return w.tree.AddDirectory(path, meta)
}

// AddFile inserts a file of the given declared size at path. The
// actual bytes are supplied later, at Write time, via a FileSource.
func (w *Writer) AddFile(path string, size uint32, meta *Metadata) error {
	return w.tree.AddFile(path, size, meta)
}

// AddSymlink inserts a Rock Ridge symlink at path pointing at target.
// AddSymlink requires opts.EnableSUSP at Write time; otherwise the
// node is silently unreachable in a non-SUSP image (no Primary
// directory record shape can carry a symlink without a PX/SL pair).
func (w *Writer) AddSymlink(path, target string, meta *Metadata) error {
	return w.tree.AddSymlink(path, target, meta)
}

// Write plans a layout from the accumulated tree per opts and emits
// it to m, pulling file content from source as each file's extent is
// reached. stamp is recorded as every directory record's timestamp
// and the volume's creation/modification timestamps.
func (w *Writer) Write(m medium.Medium, opts *options.Options, stamp time.Time, source FileSource) error {
	layout, err := Plan(w.tree, opts, stamp)
	if err != nil {
		return err
	}
	return Emit(layout, m, source)
}
