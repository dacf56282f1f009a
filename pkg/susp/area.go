package susp

import (
	"fmt"

	"github.com/go-logr/logr"
)

// ErrContinuationLoop is returned when a CE entry would revisit a
// coordinate already consumed by the area being assembled.
type ErrContinuationLoop struct {
	Block, Offset uint32
}

func (e *ErrContinuationLoop) Error() string {
	return fmt.Sprintf("susp: continuation self-loop at block=%d offset=%d", e.Block, e.Offset)
}

// BlockReader reads length bytes at (block, offset) from the medium
// backing a SUSP area — the glue the filesystem layer supplies so
// this package never imports the medium package directly.
type BlockReader func(block, offset, length uint32) ([]byte, error)

// Area is the logical concatenation of a directory record's
// system-use trailer with zero or more externally allocated
// continuations, linked by CE entries.
type Area struct {
	raw      []byte
	entries  []Entry
	complete bool
	visited  map[coordinate]bool
	logger   logr.Logger
}

type coordinate struct {
	block, offset uint32
}

// NewArea begins assembly from the bytes of a directory record's
// system-use trailer.
func NewArea(trailer []byte, logger logr.Logger) (*Area, error) {
	a := &Area{visited: make(map[coordinate]bool), logger: logger}
	if err := a.ingest(trailer); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Area) ingest(region []byte) error {
	entries, err := ParseEntries(region, a.logger)
	if err != nil {
		return err
	}
	a.entries = append(a.entries, entries...)
	a.raw = append(a.raw, region...)
	for _, e := range a.entries {
		if _, isST := e.(ST); isST {
			a.complete = true
			break
		}
	}
	return nil
}

// Complete reports whether the area has been fully assembled: either
// an ST entry was consumed, or the last-seen chunk carried no
// trailing CE.
func (a *Area) Complete() bool {
	if a.complete {
		return true
	}
	_, pending := a.pendingCE()
	return !pending
}

// pendingCE returns the current entry list's final entry when that
// entry is a CE. Only a CE in that last position is followed; a CE
// that has other entries after it in the same chunk is not.
func (a *Area) pendingCE() (CE, bool) {
	if len(a.entries) == 0 {
		return CE{}, false
	}
	last := a.entries[len(a.entries)-1]
	ce, ok := last.(CE)
	return ce, ok
}

// Resolve drives the area to completion, invoking read for each CE
// encountered until none remain or an ST is reached. Refuses to
// follow a CE pointing at an already-visited coordinate (loop
// prevention).
func (a *Area) Resolve(read BlockReader) error {
	for !a.complete {
		ce, ok := a.pendingCE()
		if !ok {
			// No CE and no ST: the area ends here by exhaustion.
			break
		}
		coord := coordinate{block: ce.Block, offset: ce.Offset}
		if a.visited[coord] {
			return &ErrContinuationLoop{Block: ce.Block, Offset: ce.Offset}
		}
		a.visited[coord] = true

		chunk, err := read(ce.Block, ce.Offset, ce.Length)
		if err != nil {
			return fmt.Errorf("susp: reading continuation: %w", err)
		}
		if !a.addContinuation(chunk) {
			break
		}
	}
	return nil
}

// addContinuation appends the entries parsed from chunk. It returns
// false (and leaves the area unmodified) if the area was already
// complete, or if chunk parses to zero entries.
func (a *Area) addContinuation(chunk []byte) bool {
	if a.complete {
		return false
	}
	entries, err := ParseEntries(chunk, a.logger)
	if err != nil || len(entries) == 0 {
		return false
	}
	a.entries = append(a.entries, entries...)
	a.raw = append(a.raw, chunk...)
	for _, e := range entries {
		if _, isST := e.(ST); isST {
			a.complete = true
			break
		}
	}
	return true
}

// Entries returns the raw, uncompacted entry list assembled so far.
func (a *Area) Entries() []Entry {
	return a.entries
}

// Compact produces the canonical entry list: CE/ST/PD are dropped,
// consecutive NM and SL fragments are merged, at most one TF survives
// (first slot wins per field), and every other entry passes through
// in order.
func Compact(entries []Entry) []Entry {
	var out []Entry
	var nmName []byte
	var nmFlags byte
	nmOpen := false
	nmDone := false

	var slComponents []SLComponent
	slContinues := false
	slOpen := false
	slDone := false

	var tf *TF

	flushNM := func() {
		if nmOpen {
			out = append(out, NM{Flags: nmFlags, Name: nmName})
			nmOpen = false
		}
	}
	flushSL := func() {
		if slOpen {
			out = append(out, SL{ContinuesInNext: slContinues, Components: slComponents})
			slOpen = false
		}
	}

	for _, e := range entries {
		switch v := e.(type) {
		case CE, ST, PD:
			continue
		case NM:
			if nmDone {
				continue
			}
			nmName = append(nmName, v.Name...)
			nmFlags = (nmFlags &^ NMContinue) | (v.Flags &^ NMContinue)
			nmOpen = true
			if v.Flags&NMContinue == 0 {
				nmDone = true
			}
		case SL:
			if slDone {
				continue
			}
			slComponents = append(slComponents, v.Components...)
			slContinues = v.ContinuesInNext
			slOpen = true
			if !v.ContinuesInNext {
				slDone = true
			}
		case TF:
			if tf == nil {
				cp := v
				if cp.Stamps == nil {
					cp.Stamps = map[byte][]byte{}
				}
				tf = &cp
			} else {
				for bit, stamp := range v.Stamps {
					if _, present := tf.Stamps[bit]; !present {
						tf.Stamps[bit] = stamp
						tf.Flags |= bit
					}
				}
			}
		default:
			out = append(out, e)
		}
	}
	flushNM()
	flushSL()
	if tf != nil {
		out = append(out, *tf)
	}
	return out
}

// Allocator requests granted space for an external continuation of at
// least requested bytes, returning where it was granted and the
// actual granted size (which may exceed the request and caps the
// next region).
type Allocator func(requested int) (block, offset uint32, granted int, err error)

// Emit lays out entries into one or more regions honoring a
// first-continuation budget f (the free tail inside the owning
// directory record) plus any number of externally allocated
// continuations reached via CE, each closed out with a backfilled CE
// pointing at its successor.
//
// It returns the bytes for the first (in-record) region and, for each
// external continuation in order, its (block, offset) coordinate and
// bytes.
func Emit(entries []Entry, f int, alloc Allocator) (firstRegion []byte, continuations [][]byte, coords []struct{ Block, Offset uint32 }, err error) {
	whole := serializeAll(entries)
	if len(whole) <= f {
		return whole, nil, nil, nil
	}

	remaining := entries
	budget := f
	var regions [][]byte
	var regionCoords []struct{ Block, Offset uint32 }

	for len(remaining) > 0 {
		var region []byte
		used := 0
		ceBudget := budget - SUSP_CE_LEN
		splitHandled := false

		consumed := 0
		for consumed = 0; consumed < len(remaining); consumed++ {
			e := remaining[consumed]
			full := e.Marshal()
			if used+len(full) <= ceBudget {
				region = append(region, full...)
				used += len(full)
				continue
			}
			first, second, ok := SplitAt(e, ceBudget-used)
			if ok {
				region = append(region, first.Marshal()...)
				used += len(first.Marshal())
				if second != nil {
					remaining = append([]Entry{second}, remaining[consumed+1:]...)
				} else {
					remaining = remaining[consumed+1:]
				}
				splitHandled = true
			}
			break
		}
		if !splitHandled {
			remaining = remaining[consumed:]
		}

		if len(remaining) == 0 {
			// Final region: no CE needed, everything fit.
			regions = append(regions, region)
			regionCoords = append(regionCoords, struct{ Block, Offset uint32 }{})
			break
		}

		if len(region) == 0 {
			return nil, nil, nil, fmt.Errorf("susp: entry too large to fit any region (budget=%d)", budget)
		}

		block, offset, granted, aErr := alloc(len(serializeAll(remaining)) + SUSP_CE_LEN)
		if aErr != nil {
			return nil, nil, nil, fmt.Errorf("susp: allocating continuation: %w", aErr)
		}
		region = append(region, CE{Block: block, Offset: offset, Length: uint32(granted)}.Marshal()...)
		regions = append(regions, region)
		regionCoords = append(regionCoords, struct{ Block, Offset uint32 }{Block: block, Offset: offset})
		budget = granted
	}

	// Backfill each intermediate CE with its successor's exact length.
	for i := 0; i+1 < len(regions); i++ {
		c := regionCoords[i]
		ce := CE{Block: c.Block, Offset: c.Offset, Length: uint32(len(regions[i+1]))}.Marshal()
		copy(regions[i][len(regions[i])-SUSP_CE_LEN:], ce)
	}

	return regions[0], regions[1:], regionCoords[:len(regionCoords)-1], nil
}

const SUSP_CE_LEN = 28

func serializeAll(entries []Entry) []byte {
	var out []byte
	for _, e := range entries {
		out = append(out, e.Marshal()...)
	}
	return out
}
