// Package susp implements the System Use Sharing Protocol entry codec
// and the Rock Ridge (RRIP) payload shapes carried inside it: CE, PD,
// SP, ST, PX, PN, SL, NM, TF, SF, RR, and opaque unknown signatures.
package susp

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/arcfract/iso9660kit/pkg/encoding"
	"github.com/arcfract/iso9660kit/pkg/logging"
)

// Entry is any SUSP tagged entry.
type Entry interface {
	// Signature is the 2-byte tag, e.g. "PX", "NM".
	Signature() string
	// Marshal serializes the entry including its 4-byte header.
	Marshal() []byte
}

const headerSize = 4

// CE (Continuation) points to an externally allocated continuation
// of the current SUSP area.
type CE struct {
	Block  uint32
	Offset uint32
	Length uint32
}

func (CE) Signature() string { return "CE" }
func (e CE) Marshal() []byte {
	out := make([]byte, headerSize+24)
	writeHeader(out, "CE", 1)
	encoding.PutUint32Both(out[4:12], e.Block)
	encoding.PutUint32Both(out[12:20], e.Offset)
	encoding.PutUint32Both(out[20:28], e.Length)
	return out
}

// PD (Padding) carries arbitrary filler bytes.
type PD struct {
	Payload []byte
}

func (PD) Signature() string { return "PD" }
func (e PD) Marshal() []byte {
	out := make([]byte, headerSize+len(e.Payload))
	writeHeader(out, "PD", 1)
	copy(out[4:], e.Payload)
	return out
}

// SP (Sharing Protocol) marks the start of SUSP on the root directory
// record.
type SP struct {
	SkipLength byte
}

func (SP) Signature() string { return "SP" }
func (e SP) Marshal() []byte {
	return []byte{'S', 'P', 7, 1, 0xBE, 0xEF, e.SkipLength}
}

// ST (Terminator) ends the current continuation.
type ST struct{}

func (ST) Signature() string { return "ST" }
func (ST) Marshal() []byte {
	return []byte{'S', 'T', headerSize, 1}
}

// PX (POSIX attributes).
type PX struct {
	Mode    uint32
	Links   uint32
	UID     uint32
	GID     uint32
	Serial  uint32
	HasSerial bool
}

func (PX) Signature() string { return "PX" }
func (e PX) Marshal() []byte {
	size := 32
	if e.HasSerial {
		size = 40
	}
	out := make([]byte, headerSize+size)
	writeHeader(out, "PX", 1)
	encoding.PutUint32Both(out[4:12], e.Mode)
	encoding.PutUint32Both(out[12:20], e.Links)
	encoding.PutUint32Both(out[20:28], e.UID)
	encoding.PutUint32Both(out[28:36], e.GID)
	if e.HasSerial {
		encoding.PutUint32Both(out[36:44], e.Serial)
	}
	return out
}

// PN (POSIX device numbers).
type PN struct {
	High uint32
	Low  uint32
}

func (PN) Signature() string { return "PN" }
func (e PN) Marshal() []byte {
	out := make([]byte, headerSize+16)
	writeHeader(out, "PN", 1)
	encoding.PutUint32Both(out[4:12], e.High)
	encoding.PutUint32Both(out[12:20], e.Low)
	return out
}

// SL component flag bits.
const (
	SLContinue   byte = 0x01
	SLCurrentDir byte = 0x02
	SLParentDir  byte = 0x04
	SLRoot       byte = 0x08
	SLVolumeRoot byte = 0x10
	SLHost       byte = 0x20
)

// SLComponent is one component record within an SL entry.
type SLComponent struct {
	Flags byte
	Bytes []byte
}

func (c SLComponent) marshal() []byte {
	out := make([]byte, 2+len(c.Bytes))
	out[0] = c.Flags
	out[1] = byte(len(c.Bytes))
	copy(out[2:], c.Bytes)
	return out
}

// SL (Symlink target, possibly spanning multiple entries).
type SL struct {
	ContinuesInNext bool
	Components      []SLComponent
}

func (SL) Signature() string { return "SL" }
func (e SL) Marshal() []byte {
	payload := make([]byte, 1)
	if e.ContinuesInNext {
		payload[0] = 0x01
	}
	for _, c := range e.Components {
		payload = append(payload, c.marshal()...)
	}
	out := make([]byte, headerSize+len(payload))
	writeHeader(out, "SL", 1)
	copy(out[4:], payload)
	return out
}

// NM alternate-name flag bits.
const (
	NMContinue        byte = 0x01
	NMCurrentDirAlias byte = 0x02
	NMParentDirAlias  byte = 0x04
	NMHost            byte = 0x20
)

// NM (Alternate name).
type NM struct {
	Flags byte
	Name  []byte
}

func (NM) Signature() string { return "NM" }
func (e NM) Marshal() []byte {
	out := make([]byte, headerSize+1+len(e.Name))
	writeHeader(out, "NM", 1)
	out[4] = e.Flags
	copy(out[5:], e.Name)
	return out
}

// TF timestamp presence/format flag bits.
const (
	TFLongForm        byte = 0x80
	TFCreation        byte = 0x01
	TFModification    byte = 0x02
	TFAccess          byte = 0x04
	TFAttributeChange byte = 0x08
	TFBackup          byte = 0x10
	TFExpiration      byte = 0x20
	TFEffective       byte = 0x40
)

// TF (Timestamps). Each slot is present in Stamps only if its bit is
// set in Flags.
type TF struct {
	Flags  byte
	Stamps map[byte][]byte // keyed by one of the TF* bit constants, 7 or 17 raw bytes per the long-form bit
}

func (TF) Signature() string { return "TF" }
func (e TF) Marshal() []byte {
	var payload []byte
	payload = append(payload, e.Flags)
	for _, bit := range []byte{TFCreation, TFModification, TFAccess, TFAttributeChange, TFBackup, TFExpiration, TFEffective} {
		if e.Flags&bit == 0 {
			continue
		}
		payload = append(payload, e.Stamps[bit]...)
	}
	out := make([]byte, headerSize+len(payload))
	writeHeader(out, "TF", 1)
	copy(out[4:], payload)
	return out
}

// SF (Sparse file).
type SF struct {
	VirtualSize uint64
}

func (SF) Signature() string { return "SF" }
func (e SF) Marshal() []byte {
	out := make([]byte, headerSize+16)
	writeHeader(out, "SF", 1)
	encoding.PutUint32Both(out[4:12], uint32(e.VirtualSize>>32))
	encoding.PutUint32Both(out[12:20], uint32(e.VirtualSize))
	return out
}

// RR is the legacy marker that Rock Ridge entries are present.
type RR struct {
	Flags byte
}

func (RR) Signature() string { return "RR" }
func (e RR) Marshal() []byte {
	return []byte{'R', 'R', headerSize + 1, 1, e.Flags}
}

// Opaque preserves an entry with an unrecognized signature verbatim.
type Opaque struct {
	Sig     [2]byte
	Version byte
	Payload []byte
}

func (o Opaque) Signature() string { return string(o.Sig[:]) }
func (o Opaque) Marshal() []byte {
	out := make([]byte, headerSize+len(o.Payload))
	out[0], out[1] = o.Sig[0], o.Sig[1]
	out[2] = byte(len(out))
	out[3] = o.Version
	copy(out[4:], o.Payload)
	return out
}

func writeHeader(out []byte, sig string, version byte) {
	out[0], out[1] = sig[0], sig[1]
	out[2] = byte(len(out))
	out[3] = version
}

// ErrMalformedEntry reports a SUSP entry whose declared length is
// inconsistent with the data available.
type ErrMalformedEntry struct {
	Reason string
}

func (e *ErrMalformedEntry) Error() string {
	return "susp: malformed entry: " + e.Reason
}

// ParseEntries walks region, decoding entries until the bytes are
// exhausted, a malformed length is found, or an ST entry is consumed
// (which stops reading but is itself included in the result).
func ParseEntries(region []byte, logger logr.Logger) ([]Entry, error) {
	logger.V(logging.TRACE).Info("parsing system use entries", "length", len(region))
	var entries []Entry
	off := 0
	for off < len(region) {
		if len(region)-off < headerSize {
			break
		}
		length := int(region[off+2])
		if length < headerSize || off+length > len(region) {
			err := &ErrMalformedEntry{Reason: fmt.Sprintf("invalid length %d at offset %d", length, off)}
			logger.V(logging.DEBUG).Error(err, "stopping entry scan on malformed length")
			return entries, err
		}
		sig := string(region[off : off+2])
		version := region[off+3]
		payload := region[off+headerSize : off+length]

		entry, err := decode(sig, version, payload, length)
		if err != nil {
			logger.V(logging.DEBUG).Error(err, "stopping entry scan on decode failure", "signature", sig)
			return entries, err
		}
		entries = append(entries, entry)
		off += length

		if sig == "ST" {
			break
		}
	}
	logger.V(logging.TRACE).Info("finished parsing system use entries", "count", len(entries))
	return entries, nil
}

func decode(sig string, version byte, payload []byte, totalLength int) (Entry, error) {
	switch sig {
	case "CE":
		if len(payload) < 24 {
			return nil, &ErrMalformedEntry{Reason: "CE payload too short"}
		}
		block, err := encoding.GetUint32Both(payload[0:8])
		if err != nil {
			return nil, err
		}
		offset, err := encoding.GetUint32Both(payload[8:16])
		if err != nil {
			return nil, err
		}
		length, err := encoding.GetUint32Both(payload[16:24])
		if err != nil {
			return nil, err
		}
		return CE{Block: block, Offset: offset, Length: length}, nil
	case "PD":
		return PD{Payload: append([]byte(nil), payload...)}, nil
	case "SP":
		if len(payload) < 3 {
			return nil, &ErrMalformedEntry{Reason: "SP payload too short"}
		}
		return SP{SkipLength: payload[2]}, nil
	case "ST":
		return ST{}, nil
	case "PX":
		if len(payload) < 16 {
			return nil, &ErrMalformedEntry{Reason: "PX payload too short"}
		}
		mode, err := encoding.GetUint32Both(payload[0:8])
		if err != nil {
			return nil, err
		}
		links, err := encoding.GetUint32Both(payload[8:16])
		if err != nil {
			return nil, err
		}
		px := PX{Mode: mode, Links: links}
		if len(payload) >= 32 {
			uid, err := encoding.GetUint32Both(payload[16:24])
			if err != nil {
				return nil, err
			}
			gid, err := encoding.GetUint32Both(payload[24:32])
			if err != nil {
				return nil, err
			}
			px.UID, px.GID = uid, gid
		}
		if totalLength == headerSize+40 {
			serial, err := encoding.GetUint32Both(payload[32:40])
			if err != nil {
				return nil, err
			}
			px.Serial, px.HasSerial = serial, true
		}
		return px, nil
	case "PN":
		if len(payload) < 16 {
			return nil, &ErrMalformedEntry{Reason: "PN payload too short"}
		}
		high, err := encoding.GetUint32Both(payload[0:8])
		if err != nil {
			return nil, err
		}
		low, err := encoding.GetUint32Both(payload[8:16])
		if err != nil {
			return nil, err
		}
		return PN{High: high, Low: low}, nil
	case "SL":
		return decodeSL(payload)
	case "NM":
		if len(payload) < 1 {
			return nil, &ErrMalformedEntry{Reason: "NM payload too short"}
		}
		return NM{Flags: payload[0], Name: append([]byte(nil), payload[1:]...)}, nil
	case "TF":
		return decodeTF(payload)
	case "SF":
		if len(payload) < 16 {
			return nil, &ErrMalformedEntry{Reason: "SF payload too short"}
		}
		hi, err := encoding.GetUint32Both(payload[0:8])
		if err != nil {
			return nil, err
		}
		lo, err := encoding.GetUint32Both(payload[8:16])
		if err != nil {
			return nil, err
		}
		return SF{VirtualSize: uint64(hi)<<32 | uint64(lo)}, nil
	case "RR":
		var flags byte
		if len(payload) >= 1 {
			flags = payload[0]
		}
		return RR{Flags: flags}, nil
	default:
		var sigArr [2]byte
		copy(sigArr[:], sig)
		return Opaque{Sig: sigArr, Version: version, Payload: append([]byte(nil), payload...)}, nil
	}
}

func decodeSL(payload []byte) (Entry, error) {
	if len(payload) < 1 {
		return nil, &ErrMalformedEntry{Reason: "SL payload too short"}
	}
	sl := SL{ContinuesInNext: payload[0]&0x01 != 0}
	off := 1
	for off < len(payload) {
		if off+2 > len(payload) {
			return nil, &ErrMalformedEntry{Reason: "SL component header truncated"}
		}
		flags := payload[off]
		n := int(payload[off+1])
		if off+2+n > len(payload) {
			return nil, &ErrMalformedEntry{Reason: "SL component bytes overrun payload"}
		}
		sl.Components = append(sl.Components, SLComponent{
			Flags: flags,
			Bytes: append([]byte(nil), payload[off+2:off+2+n]...),
		})
		off += 2 + n
	}
	return sl, nil
}

func decodeTF(payload []byte) (Entry, error) {
	if len(payload) < 1 {
		return nil, &ErrMalformedEntry{Reason: "TF payload too short"}
	}
	flags := payload[0]
	longForm := flags&TFLongForm != 0
	stampSize := 7
	if longForm {
		stampSize = 17
	}
	stamps := make(map[byte][]byte)
	off := 1
	for _, bit := range []byte{TFCreation, TFModification, TFAccess, TFAttributeChange, TFBackup, TFExpiration, TFEffective} {
		if flags&bit == 0 {
			continue
		}
		if off+stampSize > len(payload) {
			return nil, &ErrMalformedEntry{Reason: "TF stamp truncated"}
		}
		stamps[bit] = append([]byte(nil), payload[off:off+stampSize]...)
		off += stampSize
	}
	return TF{Flags: flags, Stamps: stamps}, nil
}

// SplitAt implements the per-entry splitting operation defined for NM
// and SL: given a soft byte budget b (the max serialized size of the
// first half, including its 4-byte header), it returns the two halves
// such that first fits within b and first++second is semantically
// equivalent to e. ok is false if e cannot be usefully split (not an
// NM/SL, or b is too small to hold even one byte/component).
func SplitAt(e Entry, b int) (first, second Entry, ok bool) {
	switch v := e.(type) {
	case NM:
		return splitNM(v, b)
	case SL:
		return splitSL(v, b)
	default:
		return nil, nil, false
	}
}

func splitNM(e NM, b int) (Entry, Entry, bool) {
	budget := b - 5
	if budget < 0 {
		return nil, nil, false
	}
	if len(e.Name) <= budget {
		first := NM{Flags: e.Flags &^ NMContinue, Name: e.Name}
		return first, nil, true
	}
	if budget == 0 {
		return nil, nil, false
	}
	first := NM{Flags: e.Flags | NMContinue, Name: e.Name[:budget]}
	second := NM{Flags: e.Flags, Name: e.Name[budget:]}
	return first, second, true
}

func splitSL(e SL, b int) (Entry, Entry, bool) {
	budget := b - 5
	if budget < 0 {
		return nil, nil, false
	}

	var firstComponents []SLComponent
	used := 0
	for i, c := range e.Components {
		full := len(c.marshal())
		if used+full <= budget {
			firstComponents = append(firstComponents, c)
			used += full
			continue
		}
		remaining := budget - used - 2 // header of the split component
		if remaining > 0 && remaining < len(c.Bytes) {
			firstComponents = append(firstComponents, SLComponent{
				Flags: c.Flags | SLContinue,
				Bytes: c.Bytes[:remaining],
			})
			rest := []SLComponent{{Flags: c.Flags, Bytes: c.Bytes[remaining:]}}
			rest = append(rest, e.Components[i+1:]...)
			first := SL{ContinuesInNext: true, Components: firstComponents}
			second := SL{ContinuesInNext: e.ContinuesInNext, Components: rest}
			return first, second, true
		}
		// cannot fit even part of this component: cut before it.
		if len(firstComponents) == 0 {
			return nil, nil, false
		}
		first := SL{ContinuesInNext: true, Components: firstComponents}
		second := SL{ContinuesInNext: e.ContinuesInNext, Components: e.Components[i:]}
		return first, second, true
	}
	// every component fit: nothing to split.
	first := SL{ContinuesInNext: e.ContinuesInNext, Components: firstComponents}
	return first, nil, true
}
