// Package pathtable implements the fixed-header, variable-name path
// table record (ECMA-119 9.4), stored once in each of the two
// supported byte orders.
package pathtable

import (
	"fmt"

	"github.com/arcfract/iso9660kit/pkg/encoding"
)

// Record is one parsed path table entry.
type Record struct {
	ExtendedAttrLength byte
	ExtentLocation     uint32
	ParentNumber       uint16
	Identifier         string
}

const headerSize = 8

// ErrMalformedRecord reports a path table record that could not be
// parsed from the supplied bytes.
type ErrMalformedRecord struct {
	Reason string
}

func (e *ErrMalformedRecord) Error() string {
	return "pathtable: malformed record: " + e.Reason
}

// Unmarshal parses one record from the start of data in the given
// endianness, decoding its identifier with enc, and returns the
// record plus the number of bytes consumed.
func Unmarshal(data []byte, e encoding.Endianness, enc encoding.NameEncoding) (Record, int, error) {
	if len(data) < headerSize {
		return Record{}, 0, &ErrMalformedRecord{Reason: "buffer shorter than fixed header"}
	}
	idLen := int(data[0])
	if len(data) < headerSize+idLen {
		return Record{}, 0, &ErrMalformedRecord{Reason: "identifier overruns buffer"}
	}

	eaLen := data[1]
	extent := encoding.GetUint32(data[2:6], e)
	parent := encoding.GetUint16(data[6:8], e)
	idBytes := data[headerSize : headerSize+idLen]

	total := headerSize + idLen
	if idLen%2 != 0 {
		total++
	}

	rec := Record{
		ExtendedAttrLength: eaLen,
		ExtentLocation:     extent,
		ParentNumber:       parent,
		Identifier:         encoding.DecodeString(idBytes, enc),
	}
	return rec, total, nil
}

// MarshalEncoded serializes the record in the given endianness and
// name encoding.
func (r Record) MarshalEncoded(e encoding.Endianness, enc encoding.NameEncoding) []byte {
	idBytes := identifierBytes(r.Identifier, enc)
	total := headerSize + len(idBytes)
	padded := len(idBytes)%2 != 0
	if padded {
		total++
	}

	out := make([]byte, total)
	out[0] = byte(len(idBytes))
	out[1] = r.ExtendedAttrLength
	encoding.PutUint32(out[2:6], r.ExtentLocation, e)
	encoding.PutUint16(out[6:8], r.ParentNumber, e)
	copy(out[headerSize:headerSize+len(idBytes)], idBytes)
	return out
}

// Marshal serializes the record as little-endian with an ASCII
// identifier, satisfying info.ImageObject. Callers assembling an
// actual L or M path table should call MarshalEncoded directly.
func (r Record) Marshal() ([]byte, error) {
	return r.MarshalEncoded(encoding.LittleEndian, encoding.ASCII), nil
}

func identifierBytes(s string, enc encoding.NameEncoding) []byte {
	if enc == encoding.UCS2BE {
		return encoding.EncodeString(s, len([]rune(s))*2, encoding.UCS2BE)
	}
	return []byte(s)
}

// Table is a full path table: an ordered sequence of records in
// declaration order, where a record's ParentNumber refers to the
// 1-based index of an earlier record (the root's parent is itself, 1).
type Table struct {
	Records []Record
}

// UnmarshalTable parses every record out of data until the bytes are
// exhausted, in the given endianness.
func UnmarshalTable(data []byte, e encoding.Endianness, enc encoding.NameEncoding) (Table, error) {
	var t Table
	for off := 0; off < len(data); {
		rec, n, err := Unmarshal(data[off:], e, enc)
		if err != nil {
			return Table{}, fmt.Errorf("pathtable: record at offset %d: %w", off, err)
		}
		if n == 0 {
			break
		}
		t.Records = append(t.Records, rec)
		off += n
	}
	return t, nil
}

// Marshal serializes every record back-to-back with no inter-record
// padding beyond each record's own even-byte pad.
func (t Table) Marshal(e encoding.Endianness, enc encoding.NameEncoding) []byte {
	var out []byte
	for _, r := range t.Records {
		out = append(out, r.MarshalEncoded(e, enc)...)
	}
	return out
}
