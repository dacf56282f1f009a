package writer

import (
	"fmt"
	"strings"
	"time"

	"github.com/arcfract/iso9660kit/pkg/consts"
	"github.com/arcfract/iso9660kit/pkg/encoding"
	"github.com/arcfract/iso9660kit/pkg/susp"
)

// ErrTrailerTooLarge is returned by buildTrailer when the synthesized
// SUSP entries exceed the 255-byte record budget and splitting across
// a continuation area is out of scope for this node.
type ErrTrailerTooLarge struct {
	Node string
	Size int
}

func (e *ErrTrailerTooLarge) Error() string {
	return fmt.Sprintf("writer: susp trailer for %q is %d bytes, exceeds the single-record budget", e.Node, e.Size)
}

// nodeOwnership resolves the POSIX mode/uid/gid a PX entry should
// report for n: its own metadata when set, falling back to the
// kind-appropriate default mode and the record-wide default ownership.
func nodeOwnership(n *Node, defaultUID, defaultGID uint32) (mode, uid, gid uint32) {
	mode = n.Metadata.Mode
	if mode == 0 {
		if n.Kind == NodeDirectory {
			mode = consts.DEFAULT_DIR_MODE
		} else {
			mode = consts.DEFAULT_FILE_MODE
		}
	}
	uid, gid = defaultUID, defaultGID
	if n.Metadata.HasOwnership {
		uid, gid = n.Metadata.UID, n.Metadata.GID
	}
	return mode, uid, gid
}

// tfEntry builds the TF entry every synthesized trailer carries: a
// single record-wide timestamp reported as both creation and
// modification time.
func tfEntry(stamp time.Time) (susp.TF, error) {
	rawTime, err := encoding.EncodeDirectoryTime(stamp)
	if err != nil {
		return susp.TF{}, err
	}
	return susp.TF{
		Flags:  susp.TFCreation | susp.TFModification,
		Stamps: map[byte][]byte{susp.TFCreation: rawTime, susp.TFModification: rawTime},
	}, nil
}

// marshalTrailer serializes entries and enforces the single-record
// system-use budget, tagging a too-large error with label (normally
// the owning node's name) for diagnostics.
func marshalTrailer(label string, entries []susp.Entry) ([]byte, error) {
	var out []byte
	for _, e := range entries {
		out = append(out, e.Marshal()...)
	}
	if len(out)+consts.DIRECTORY_RECORD_HEADER_SIZE > consts.DIRECTORY_RECORD_MAX_LENGTH {
		return nil, &ErrTrailerTooLarge{Node: label, Size: len(out)}
	}
	return out, nil
}

// buildTrailer synthesizes, in order, PX, an NM carrying the node's
// raw name (for every node with a non-empty name), an optional SL for
// symlinks, and a TF carrying a record-wide default timestamp.
func buildTrailer(n *Node, defaultUID, defaultGID uint32, stamp time.Time) ([]byte, error) {
	mode, uid, gid := nodeOwnership(n, defaultUID, defaultGID)
	entries := []susp.Entry{susp.PX{Mode: mode, Links: 1, UID: uid, GID: gid}}

	if n.Name != "" {
		entries = append(entries, susp.NM{Name: []byte(n.Name)})
	}

	if n.Kind == NodeSymlink {
		entries = append(entries, susp.SL{Components: symlinkComponents(n.Target)})
	}

	tf, err := tfEntry(stamp)
	if err != nil {
		return nil, err
	}
	entries = append(entries, tf)

	return marshalTrailer(n.Name, entries)
}

// buildDotTrailer synthesizes the system-use trailer for a directory's
// own "." or ".." record: PX reporting attrNode's attributes plus TF,
// with no NM (the name is implicit in the record's identifier byte,
// not a Rock Ridge alternate name). When sp is set, a leading SP entry
// is emitted first, marking the start of SUSP for readers per SUSP
// §5.1 — this must only be true for the root directory's own "."
// record, the one place SUSP presence detection begins.
func buildDotTrailer(attrNode *Node, defaultUID, defaultGID uint32, stamp time.Time, sp bool) ([]byte, error) {
	mode, uid, gid := nodeOwnership(attrNode, defaultUID, defaultGID)

	var entries []susp.Entry
	if sp {
		entries = append(entries, susp.SP{SkipLength: 0})
	}
	entries = append(entries, susp.PX{Mode: mode, Links: 1, UID: uid, GID: gid})

	tf, err := tfEntry(stamp)
	if err != nil {
		return nil, err
	}
	entries = append(entries, tf)

	return marshalTrailer(attrNode.Name, entries)
}

// symlinkComponents builds the SL component list from a target path:
// a leading "//" denotes a volume-root reference, a leading "/" the
// filesystem root, "." the current directory, ".." the parent, and
// anything else a plain named component.
func symlinkComponents(target string) []susp.SLComponent {
	var components []susp.SLComponent

	rest := target
	switch {
	case strings.HasPrefix(rest, "//"):
		components = append(components, susp.SLComponent{Flags: susp.SLVolumeRoot})
		rest = strings.TrimPrefix(rest, "//")
	case strings.HasPrefix(rest, "/"):
		components = append(components, susp.SLComponent{Flags: susp.SLRoot})
		rest = strings.TrimPrefix(rest, "/")
	}

	for _, part := range strings.Split(rest, "/") {
		switch part {
		case "":
			continue
		case ".":
			components = append(components, susp.SLComponent{Flags: susp.SLCurrentDir})
		case "..":
			components = append(components, susp.SLComponent{Flags: susp.SLParentDir})
		default:
			components = append(components, susp.SLComponent{Bytes: []byte(part)})
		}
	}
	return components
}
