package descriptor

import (
	"fmt"
	"time"

	"github.com/arcfract/iso9660kit/pkg/consts"
	"github.com/arcfract/iso9660kit/pkg/directory"
	"github.com/arcfract/iso9660kit/pkg/encoding"
)

// Body holds the fields shared by Primary, Supplementary, and
// Enhanced descriptors — everything past the 7-byte header.
type Body struct {
	SystemIdentifier   string
	VolumeIdentifier   string
	VolumeSpaceSize    uint32
	EscapeSequences    [32]byte
	VolumeSetSize      uint16
	VolumeSequenceNum  uint16
	LogicalBlockSize   uint16
	PathTableSize      uint32
	LocationTypeL      uint32
	LocationOptTypeL   uint32
	LocationTypeM      uint32
	LocationOptTypeM   uint32
	RootDirectoryRecord directory.Record
	VolumeSetIdentifier string
	PublisherIdentifier      encoding.IdentifierOrFile
	DataPreparerIdentifier   encoding.IdentifierOrFile
	ApplicationIdentifier    encoding.IdentifierOrFile
	CopyrightFileIdentifier  encoding.IdentifierOrFile
	AbstractFileIdentifier   encoding.IdentifierOrFile
	BibliographicFileIdentifier encoding.IdentifierOrFile
	CreationDateTime     time.Time
	ModificationDateTime time.Time
	ExpirationDateTime   time.Time
	EffectiveDateTime    time.Time
	FileStructureVersion byte
	ApplicationUse       []byte
}

// field byte widths for the fixed parts of the body (everything after
// the 7-byte header, before the application-use trailer).
const (
	fSystemID         = 32
	fVolumeID         = 32
	fVolumeSpaceSize  = 8
	fEscapeSequences  = 32
	fVolumeSetSize    = 4
	fVolumeSeqNum     = 4
	fLogicalBlockSize = 4
	fPathTableSize    = 8
	fLocationL        = 4
	fLocationOptL     = 4
	fLocationM        = 4
	fLocationOptM     = 4
	fRootDirRecord    = 34
	fVolumeSetID      = 128
	fPublisherID      = 128
	fDataPreparerID   = 128
	fApplicationID    = 128
	fCopyrightFile    = 37
	fAbstractFile     = 37
	fBibliographicFile = 37
	fCreationDT       = 17
	fModificationDT   = 17
	fExpirationDT     = 17
	fEffectiveDT      = 17
	fFileStructVer    = 1
)

const bodySize = fSystemID + fVolumeID + 1 /*unused*/ + fVolumeSpaceSize + fEscapeSequences +
	fVolumeSetSize + fVolumeSeqNum + fLogicalBlockSize + fPathTableSize +
	fLocationL + fLocationOptL + fLocationM + fLocationOptM + fRootDirRecord +
	fVolumeSetID + fPublisherID + fDataPreparerID + fApplicationID +
	fCopyrightFile + fAbstractFile + fBibliographicFile +
	fCreationDT + fModificationDT + fExpirationDT + fEffectiveDT + fFileStructVer

// EncodingOf inspects the body's escape-sequences field (ECMA-119
// enumerated sequences only — unrecognized sequences default to
// UCS-2 BE, per the conforming rewrite called for in spec §9 Open
// Question (a)) and returns the name encoding it selects.
func (b Body) EncodingOf() encoding.NameEncoding {
	seq := string(b.EscapeSequences[:])
	for _, s := range []string{
		consts.JOLIET_UTF8_ESCAPE_G, consts.JOLIET_UTF8_ESCAPE_H, consts.JOLIET_UTF8_ESCAPE_I,
	} {
		if containsAt(seq, s) {
			return encoding.UTF8
		}
	}
	for _, s := range []string{
		consts.JOLIET_LEVEL_1_ESCAPE, consts.JOLIET_LEVEL_2_ESCAPE, consts.JOLIET_LEVEL_3_ESCAPE,
		consts.JOLIET_UCS2_ESCAPE_J, consts.JOLIET_UCS2_ESCAPE_K, consts.JOLIET_UCS2_ESCAPE_L,
	} {
		if containsAt(seq, s) {
			return encoding.UCS2BE
		}
	}
	return encoding.UCS2BE
}

func containsAt(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

// Marshal serializes the body using nameEnc for the name-bearing
// identifier fields (Primary callers pass encoding.ASCII; Joliet
// callers pass the body's own EncodingOf()).
func (b Body) Marshal(nameEnc encoding.NameEncoding) ([]byte, error) {
	out := make([]byte, bodySize)
	off := 0

	put := func(data []byte) { off += copy(out[off:off+len(data)], data) }
	skip := func(n int) { off += n }

	put(encoding.EncodeString(b.SystemIdentifier, fSystemID, encoding.ASCII))
	put(encoding.EncodeString(b.VolumeIdentifier, fVolumeID, nameEnc))
	skip(1) // unused field reserved by ECMA-119, always zero
	encoding.PutUint32Both(out[off:off+fVolumeSpaceSize], b.VolumeSpaceSize)
	off += fVolumeSpaceSize
	put(b.EscapeSequences[:])
	encoding.PutUint16Both(out[off:off+fVolumeSetSize], b.VolumeSetSize)
	off += fVolumeSetSize
	encoding.PutUint16Both(out[off:off+fVolumeSeqNum], b.VolumeSequenceNum)
	off += fVolumeSeqNum
	encoding.PutUint16Both(out[off:off+fLogicalBlockSize], b.LogicalBlockSize)
	off += fLogicalBlockSize
	encoding.PutUint32Both(out[off:off+fPathTableSize], b.PathTableSize)
	off += fPathTableSize
	encoding.PutUint32(out[off:off+fLocationL], b.LocationTypeL, encoding.LittleEndian)
	off += fLocationL
	encoding.PutUint32(out[off:off+fLocationOptL], b.LocationOptTypeL, encoding.LittleEndian)
	off += fLocationOptL
	encoding.PutUint32(out[off:off+fLocationM], b.LocationTypeM, encoding.BigEndian)
	off += fLocationM
	encoding.PutUint32(out[off:off+fLocationOptM], b.LocationOptTypeM, encoding.BigEndian)
	off += fLocationOptM

	rootBytes, err := b.RootDirectoryRecord.MarshalEncoded(nameEnc)
	if err != nil {
		return nil, fmt.Errorf("descriptor: root directory record: %w", err)
	}
	if len(rootBytes) > fRootDirRecord {
		rootBytes = rootBytes[:fRootDirRecord]
	}
	copy(out[off:off+fRootDirRecord], rootBytes)
	off += fRootDirRecord

	put(encoding.EncodeString(b.VolumeSetIdentifier, fVolumeSetID, nameEnc))
	put(b.PublisherIdentifier.Marshal(fPublisherID, nameEnc))
	put(b.DataPreparerIdentifier.Marshal(fDataPreparerID, nameEnc))
	put(b.ApplicationIdentifier.Marshal(fApplicationID, nameEnc))
	put(b.CopyrightFileIdentifier.Marshal(fCopyrightFile, nameEnc))
	put(b.AbstractFileIdentifier.Marshal(fAbstractFile, nameEnc))
	put(b.BibliographicFileIdentifier.Marshal(fBibliographicFile, nameEnc))

	for _, t := range []time.Time{b.CreationDateTime, b.ModificationDateTime, b.ExpirationDateTime, b.EffectiveDateTime} {
		vt, err := encoding.EncodeVolumeTime(t)
		if err != nil {
			return nil, err
		}
		put(vt)
	}
	out[off] = b.FileStructureVersion
	off += fFileStructVer

	if len(b.ApplicationUse) > consts.ISO9660_APPLICATION_USE_SIZE {
		return nil, fmt.Errorf("descriptor: application-use area %d bytes exceeds %d", len(b.ApplicationUse), consts.ISO9660_APPLICATION_USE_SIZE)
	}
	appUse := make([]byte, consts.ISO9660_APPLICATION_USE_SIZE)
	copy(appUse, b.ApplicationUse)
	out = append(out, appUse...)

	return out, nil
}

// UnmarshalBody parses a body from data, which must be at least
// bodySize+512 bytes (the fixed body plus the application-use area).
// nameEnc decodes name-bearing fields; the caller determines it from
// the already-parsed escape sequences for Supplementary/Enhanced, or
// passes ASCII for Primary.
func UnmarshalBody(data []byte, nameEnc encoding.NameEncoding) (Body, error) {
	if len(data) < bodySize+consts.ISO9660_APPLICATION_USE_SIZE {
		return Body{}, fmt.Errorf("descriptor: body buffer too short")
	}
	var b Body
	off := 0
	take := func(n int) []byte {
		s := data[off : off+n]
		off += n
		return s
	}

	b.SystemIdentifier = encoding.DecodeString(take(fSystemID), encoding.ASCII)
	b.VolumeIdentifier = encoding.DecodeString(take(fVolumeID), nameEnc)
	off += 1 // unused reserved field

	vss, err := encoding.GetUint32Both(take(fVolumeSpaceSize))
	if err != nil {
		return Body{}, fmt.Errorf("descriptor: volume space size: %w", err)
	}
	b.VolumeSpaceSize = vss

	copy(b.EscapeSequences[:], take(fEscapeSequences))
	if nameEnc == encoding.ASCII {
		// Primary carries no escape sequences; leave nameEnc as given.
	}

	vsetSize, err := encoding.GetUint16Both(take(fVolumeSetSize))
	if err != nil {
		return Body{}, err
	}
	b.VolumeSetSize = vsetSize

	vseq, err := encoding.GetUint16Both(take(fVolumeSeqNum))
	if err != nil {
		return Body{}, err
	}
	b.VolumeSequenceNum = vseq

	lbs, err := encoding.GetUint16Both(take(fLogicalBlockSize))
	if err != nil {
		return Body{}, err
	}
	b.LogicalBlockSize = lbs

	pts, err := encoding.GetUint32Both(take(fPathTableSize))
	if err != nil {
		return Body{}, err
	}
	b.PathTableSize = pts

	b.LocationTypeL = encoding.GetUint32(take(fLocationL), encoding.LittleEndian)
	b.LocationOptTypeL = encoding.GetUint32(take(fLocationOptL), encoding.LittleEndian)
	b.LocationTypeM = encoding.GetUint32(take(fLocationM), encoding.BigEndian)
	b.LocationOptTypeM = encoding.GetUint32(take(fLocationOptM), encoding.BigEndian)

	rootRaw := take(fRootDirRecord)
	root, _, err := directory.Unmarshal(rootRaw, nameEnc)
	if err != nil {
		return Body{}, fmt.Errorf("descriptor: root directory record: %w", err)
	}
	b.RootDirectoryRecord = root

	b.VolumeSetIdentifier = encoding.DecodeString(take(fVolumeSetID), nameEnc)
	b.PublisherIdentifier = encoding.UnmarshalIdentifierOrFile(take(fPublisherID), nameEnc)
	b.DataPreparerIdentifier = encoding.UnmarshalIdentifierOrFile(take(fDataPreparerID), nameEnc)
	b.ApplicationIdentifier = encoding.UnmarshalIdentifierOrFile(take(fApplicationID), nameEnc)
	b.CopyrightFileIdentifier = encoding.UnmarshalIdentifierOrFile(take(fCopyrightFile), nameEnc)
	b.AbstractFileIdentifier = encoding.UnmarshalIdentifierOrFile(take(fAbstractFile), nameEnc)
	b.BibliographicFileIdentifier = encoding.UnmarshalIdentifierOrFile(take(fBibliographicFile), nameEnc)

	for _, dst := range []*time.Time{&b.CreationDateTime, &b.ModificationDateTime, &b.ExpirationDateTime, &b.EffectiveDateTime} {
		t, _, err := encoding.DecodeVolumeTime(take(fCreationDT))
		if err != nil {
			return Body{}, err
		}
		*dst = t
	}

	b.FileStructureVersion = take(fFileStructVer)[0]
	b.ApplicationUse = append([]byte(nil), take(consts.ISO9660_APPLICATION_USE_SIZE)...)

	return b, nil
}
