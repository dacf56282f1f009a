// Package directory implements the variable-length directory record
// (ECMA-119 9.1), the unit both the legacy 8.3;v view and the
// Joliet/Enhanced views are built from.
package directory

import (
	"fmt"
	"time"

	"github.com/arcfract/iso9660kit/pkg/encoding"
)

// IdentifierKind discriminates a directory record's special "." and
// ".." single-byte identifiers from an ordinary encoded name.
type IdentifierKind int

const (
	// NameSelf is the single 0x00 byte identifier: the directory's
	// own "." entry.
	NameSelf IdentifierKind = iota
	// NameParent is the single 0x01 byte identifier: the ".." entry.
	NameParent
	// NameEncoded is an ordinary identifier decoded per the owning
	// descriptor's name encoding.
	NameEncoded
)

// Identifier is a directory record's decoded name field.
type Identifier struct {
	Kind IdentifierKind
	Name string // only meaningful when Kind == NameEncoded
}

// Self returns the "." identifier.
func Self() Identifier { return Identifier{Kind: NameSelf} }

// Parent returns the ".." identifier.
func Parent() Identifier { return Identifier{Kind: NameParent} }

// Named returns an ordinary encoded-name identifier.
func Named(name string) Identifier { return Identifier{Kind: NameEncoded, Name: name} }

// Record is a parsed ECMA-119 directory record.
type Record struct {
	ExtendedAttrLength   byte
	ExtentLocation       uint32
	DataLength           uint32
	RecordTime           time.Time
	Flags                FileFlags
	FileUnitSize         byte
	InterleaveGapSize    byte
	VolumeSequenceNumber uint16
	Identifier           Identifier
	SystemUse            []byte
}

// ErrRecordTooLarge is returned by Marshal when the serialized
// record would exceed the 255-byte on-disc maximum.
type ErrRecordTooLarge struct {
	Length int
}

func (e *ErrRecordTooLarge) Error() string {
	return fmt.Sprintf("directory: record length %d exceeds 255-byte maximum", e.Length)
}

// ErrMalformedRecord is returned when a record's declared length is
// inconsistent with the data available to parse it.
type ErrMalformedRecord struct {
	Reason string
}

func (e *ErrMalformedRecord) Error() string {
	return "directory: malformed record: " + e.Reason
}

const headerSize = 33

// Unmarshal parses one directory record from the start of data,
// decoding its identifier with enc, and returns the record plus the
// number of bytes consumed. A zero length byte means "no more records
// in this sector"; callers detect that by checking n == 0 with a nil
// error returned alongside a zero Record (not an error condition —
// see ECMA-119 9.1.1).
func Unmarshal(data []byte, enc encoding.NameEncoding) (Record, int, error) {
	if len(data) == 0 {
		return Record{}, 0, nil
	}
	length := int(data[0])
	if length == 0 {
		return Record{}, 0, nil
	}
	if length < headerSize {
		return Record{}, 0, &ErrMalformedRecord{Reason: "length shorter than fixed header"}
	}
	if len(data) < length {
		return Record{}, 0, &ErrMalformedRecord{Reason: "record truncated by buffer"}
	}

	idLen := int(data[32])
	if idLen == 0 {
		return Record{}, 0, &ErrMalformedRecord{Reason: "zero-length identifier"}
	}
	padding := 0
	if idLen%2 == 0 {
		padding = 1
	}
	sysUseStart := headerSize + idLen + padding
	if sysUseStart > length {
		return Record{}, 0, &ErrMalformedRecord{Reason: "identifier overruns record"}
	}

	extentLBA, err := encoding.GetUint32Both(data[2:10])
	if err != nil {
		return Record{}, 0, err
	}
	dataLen, err := encoding.GetUint32Both(data[10:18])
	if err != nil {
		return Record{}, 0, err
	}
	recTime, _, err := encoding.DecodeDirectoryTime(data[18:25])
	if err != nil {
		return Record{}, 0, err
	}
	volSeq, err := encoding.GetUint16Both(data[28:32])
	if err != nil {
		return Record{}, 0, err
	}

	flags := FileFlags(data[25])
	idBytes := data[headerSize : headerSize+idLen]

	var ident Identifier
	switch {
	case idLen == 1 && idBytes[0] == 0x00:
		ident = Self()
	case idLen == 1 && idBytes[0] == 0x01:
		ident = Parent()
	default:
		ident = Named(encoding.DecodeString(idBytes, enc))
	}

	var sysUse []byte
	if sysUseStart < length {
		sysUse = append([]byte(nil), data[sysUseStart:length]...)
	}

	rec := Record{
		ExtendedAttrLength:   data[1],
		ExtentLocation:       extentLBA,
		DataLength:           dataLen,
		RecordTime:           recTime,
		Flags:                flags,
		FileUnitSize:         data[26],
		InterleaveGapSize:    data[27],
		VolumeSequenceNumber: volSeq,
		Identifier:           ident,
		SystemUse:            sysUse,
	}
	return rec, length, nil
}

// MarshalEncoded serializes the record in the given name encoding,
// rounding its length up to an even number of bytes as ECMA-119
// requires, and rejects the result if it would exceed 255 bytes.
func (r Record) MarshalEncoded(enc encoding.NameEncoding) ([]byte, error) {
	idBytes, err := r.identifierBytes(enc)
	if err != nil {
		return nil, err
	}
	padding := 0
	if len(idBytes)%2 == 0 {
		padding = 1
	}

	length := headerSize + len(idBytes) + padding + len(r.SystemUse)
	if length%2 != 0 {
		length++
	}
	if length > 255 {
		return nil, &ErrRecordTooLarge{Length: length}
	}

	out := make([]byte, length)
	out[0] = byte(length)
	out[1] = r.ExtendedAttrLength
	encoding.PutUint32Both(out[2:10], r.ExtentLocation)
	encoding.PutUint32Both(out[10:18], r.DataLength)
	rt, err := encoding.EncodeDirectoryTime(r.RecordTime)
	if err != nil {
		return nil, err
	}
	copy(out[18:25], rt)
	out[25] = byte(r.Flags)
	out[26] = r.FileUnitSize
	out[27] = r.InterleaveGapSize
	encoding.PutUint16Both(out[28:32], r.VolumeSequenceNumber)
	out[32] = byte(len(idBytes))
	copy(out[headerSize:headerSize+len(idBytes)], idBytes)
	sysUseStart := headerSize + len(idBytes) + padding
	copy(out[sysUseStart:sysUseStart+len(r.SystemUse)], r.SystemUse)
	return out, nil
}

// Marshal serializes the record using ASCII identifiers, satisfying
// info.ImageObject. Callers that know the owning descriptor's name
// encoding should call MarshalEncoded directly instead.
func (r Record) Marshal() ([]byte, error) {
	return r.MarshalEncoded(encoding.ASCII)
}

func (r Record) identifierBytes(enc encoding.NameEncoding) ([]byte, error) {
	switch r.Identifier.Kind {
	case NameSelf:
		return []byte{0x00}, nil
	case NameParent:
		return []byte{0x01}, nil
	case NameEncoded:
		// Encoded names are not padded at this layer — EncodeString's
		// filler behavior is for fixed-width fields, so encode
		// directly per the target charset.
		switch enc {
		case encoding.UCS2BE:
			return ucs2beBytes(r.Identifier.Name), nil
		default:
			return []byte(r.Identifier.Name), nil
		}
	default:
		return nil, &ErrMalformedRecord{Reason: "unknown identifier kind"}
	}
}

func ucs2beBytes(s string) []byte {
	b := encoding.EncodeString(s, len([]rune(s))*2, encoding.UCS2BE)
	return b
}

// Length returns the on-disc length r would serialize to, without
// allocating the full buffer.
func (r Record) Length(enc encoding.NameEncoding) (int, error) {
	idBytes, err := r.identifierBytes(enc)
	if err != nil {
		return 0, err
	}
	padding := 0
	if len(idBytes)%2 == 0 {
		padding = 1
	}
	length := headerSize + len(idBytes) + padding + len(r.SystemUse)
	if length%2 != 0 {
		length++
	}
	return length, nil
}
