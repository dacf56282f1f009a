// Package xattr implements the extended attribute record (ECMA-119
// 9.5): per-file owner/group/permissions/timestamps, carried
// separately from the directory record it belongs to.
package xattr

import (
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/arcfract/iso9660kit/pkg/consts"
	"github.com/arcfract/iso9660kit/pkg/encoding"
	"github.com/arcfract/iso9660kit/pkg/logging"
)

const (
	systemIdentifierSize = 32
	systemUseSize        = 64
	reservedSize         = 68
	prefixSize           = consts.XATTR_RECORD_PREFIX_SIZE // 250

	offOwner          = 0
	offGroup          = 4
	offPermissions    = 8
	offCreation       = 10
	offModification   = 27
	offExpiration     = 44
	offEffective      = 61
	offRecordFormat   = 78
	offRecordAttrs    = 79
	offRecordLength   = 80
	offSystemID       = 84
	offSystemUse      = offSystemID + systemIdentifierSize   // 116
	offVersion        = offSystemUse + systemUseSize         // 180
	offEscapeSeqLen   = offVersion + 1                       // 181
	offReserved       = offEscapeSeqLen + 1                  // 182
	offAppUseLength   = offReserved + reservedSize           // 250
)

// Record is a parsed extended attribute record.
type Record struct {
	OwnerID           uint32
	GroupID           uint32
	Permissions       Permissions
	Creation          time.Time
	Modification      time.Time
	Expiration        time.Time
	Effective         time.Time
	RecordFormat      byte
	RecordAttributes  byte
	RecordLength      uint16
	SystemIdentifier  string
	SystemUse         []byte
	EscapeSequences   []byte
	ApplicationUse    []byte
}

// ErrMalformedRecord reports a record whose prefix was too short to
// parse.
type ErrMalformedRecord struct {
	Reason string
}

func (e *ErrMalformedRecord) Error() string {
	return "xattr: malformed record: " + e.Reason
}

// Unmarshal parses a complete extended attribute record from data.
func Unmarshal(data []byte, logger logr.Logger) (Record, error) {
	logger.V(logging.TRACE).Info("parsing extended attribute record", "length", len(data))
	if len(data) < prefixSize+4 {
		return Record{}, &ErrMalformedRecord{Reason: "buffer shorter than fixed prefix"}
	}

	owner, err := encoding.GetUint16Both(data[offOwner : offOwner+4])
	if err != nil {
		return Record{}, fmt.Errorf("xattr: owner: %w", err)
	}
	group, err := encoding.GetUint16Both(data[offGroup : offGroup+4])
	if err != nil {
		return Record{}, fmt.Errorf("xattr: group: %w", err)
	}
	perms := UnmarshalPermissions(data[offPermissions : offPermissions+2])

	creation, _, err := encoding.DecodeVolumeTime(data[offCreation : offCreation+17])
	if err != nil {
		return Record{}, fmt.Errorf("xattr: creation time: %w", err)
	}
	modification, _, err := encoding.DecodeVolumeTime(data[offModification : offModification+17])
	if err != nil {
		return Record{}, fmt.Errorf("xattr: modification time: %w", err)
	}
	expiration, _, err := encoding.DecodeVolumeTime(data[offExpiration : offExpiration+17])
	if err != nil {
		return Record{}, fmt.Errorf("xattr: expiration time: %w", err)
	}
	effective, _, err := encoding.DecodeVolumeTime(data[offEffective : offEffective+17])
	if err != nil {
		return Record{}, fmt.Errorf("xattr: effective time: %w", err)
	}

	recLen, err := encoding.GetUint16Both(data[offRecordLength : offRecordLength+4])
	if err != nil {
		return Record{}, fmt.Errorf("xattr: record length: %w", err)
	}

	sysID := encoding.DecodeString(data[offSystemID:offSystemID+systemIdentifierSize], encoding.ASCII)
	sysUse := append([]byte(nil), data[offSystemUse:offSystemUse+systemUseSize]...)
	escLen := int(data[offEscapeSeqLen])

	appUseLen, err := encoding.GetUint16Both(data[offAppUseLength : offAppUseLength+4])
	if err != nil {
		return Record{}, fmt.Errorf("xattr: application-use length: %w", err)
	}

	rest := data[offAppUseLength+4:]
	if len(rest) < int(appUseLen)+escLen {
		return Record{}, &ErrMalformedRecord{Reason: "application-use/escape bytes overrun buffer"}
	}
	appUse := append([]byte(nil), rest[:appUseLen]...)
	escSeq := append([]byte(nil), rest[int(appUseLen):int(appUseLen)+escLen]...)

	logger.V(logging.TRACE).Info("parsed extended attribute record", "owner", owner, "group", group, "systemIdentifier", sysID)
	return Record{
		OwnerID:          uint32(owner),
		GroupID:          uint32(group),
		Permissions:      perms,
		Creation:         creation,
		Modification:     modification,
		Expiration:       expiration,
		Effective:        effective,
		RecordFormat:     data[offRecordFormat],
		RecordAttributes: data[offRecordAttrs],
		RecordLength:     recLen,
		SystemIdentifier: sysID,
		SystemUse:        sysUse,
		EscapeSequences:  escSeq,
		ApplicationUse:   appUse,
	}, nil
}

// Marshal serializes the record to its on-disc form.
func (r Record) Marshal() ([]byte, error) {
	out := make([]byte, offAppUseLength+4+len(r.ApplicationUse)+len(r.EscapeSequences))

	encoding.PutUint16Both(out[offOwner:offOwner+4], uint16(r.OwnerID))
	encoding.PutUint16Both(out[offGroup:offGroup+4], uint16(r.GroupID))
	copy(out[offPermissions:offPermissions+2], r.Permissions.Marshal())

	for _, tv := range []struct {
		off int
		t   time.Time
	}{
		{offCreation, r.Creation},
		{offModification, r.Modification},
		{offExpiration, r.Expiration},
		{offEffective, r.Effective},
	} {
		b, err := encoding.EncodeVolumeTime(tv.t)
		if err != nil {
			return nil, fmt.Errorf("xattr: encode timestamp: %w", err)
		}
		copy(out[tv.off:tv.off+17], b)
	}

	out[offRecordFormat] = r.RecordFormat
	out[offRecordAttrs] = r.RecordAttributes
	encoding.PutUint16Both(out[offRecordLength:offRecordLength+4], r.RecordLength)
	copy(out[offSystemID:offSystemID+systemIdentifierSize], encoding.EncodeString(r.SystemIdentifier, systemIdentifierSize, encoding.ASCII))
	copy(out[offSystemUse:offSystemUse+systemUseSize], r.SystemUse)
	out[offVersion] = consts.XATTR_RECORD_VERSION
	out[offEscapeSeqLen] = byte(len(r.EscapeSequences))
	encoding.PutUint16Both(out[offAppUseLength:offAppUseLength+4], uint16(len(r.ApplicationUse)))
	copy(out[offAppUseLength+4:], r.ApplicationUse)
	copy(out[offAppUseLength+4+len(r.ApplicationUse):], r.EscapeSequences)

	return out, nil
}
