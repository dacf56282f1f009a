package descriptor

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/arcfract/iso9660kit/pkg/consts"
	"github.com/arcfract/iso9660kit/pkg/logging"
)

// Supplementary is the type-2, version-1 Joliet descriptor. Enhanced
// is the same shape with version 2 and FileStructureVersion 2; see
// NewEnhanced.
type Supplementary struct {
	Body Body
}

// HasJoliet reports whether the descriptor carries one of the
// enumerated Joliet escape sequences (as opposed to an unrecognized
// sequence, which still decodes as UCS-2 BE by default).
func (s Supplementary) HasJoliet() bool {
	seq := string(s.Body.EscapeSequences[:])
	for _, esc := range []string{
		consts.JOLIET_LEVEL_1_ESCAPE, consts.JOLIET_LEVEL_2_ESCAPE, consts.JOLIET_LEVEL_3_ESCAPE,
	} {
		if containsAt(seq, esc) {
			return true
		}
	}
	return false
}

// Marshal serializes the descriptor into a full 2048-byte sector
// using its own EncodingOf() to encode name-bearing fields.
func (s Supplementary) Marshal() ([]byte, error) {
	version := byte(consts.FILE_STRUCTURE_VERSION_STANDARD)
	if s.Body.FileStructureVersion == consts.FILE_STRUCTURE_VERSION_ENHANCED {
		version = consts.FILE_STRUCTURE_VERSION_ENHANCED
	}
	body, err := s.Body.Marshal(s.Body.EncodingOf())
	if err != nil {
		return nil, fmt.Errorf("descriptor: marshal supplementary: %w", err)
	}
	return assembleSector(Header{Type: consts.VOLUME_DESC_TYPE_SUPPLEMENTARY, Version: version}, body)
}

// UnmarshalSupplementary parses a Supplementary or Enhanced descriptor
// from a full sector; the caller's prior header Classify() determines
// which it logically is, but the body shape is identical.
func UnmarshalSupplementary(sector []byte, logger logr.Logger) (Supplementary, error) {
	logger.V(logging.TRACE).Info("parsing supplementary volume descriptor")
	// A first pass with ASCII (NameEncoding 0) decodes the escape
	// sequences field itself (a fixed 32-byte region, encoding-
	// independent), then a second pass re-decodes name fields with
	// the selected encoding.
	probe, err := UnmarshalBody(sector[HeaderSize:], 0)
	if err != nil {
		return Supplementary{}, fmt.Errorf("descriptor: unmarshal supplementary (probe): %w", err)
	}
	enc := probe.EncodingOf()
	body, err := UnmarshalBody(sector[HeaderSize:], enc)
	if err != nil {
		return Supplementary{}, fmt.Errorf("descriptor: unmarshal supplementary: %w", err)
	}
	logger.V(logging.TRACE).Info("parsed supplementary volume descriptor",
		"volumeIdentifier", body.VolumeIdentifier,
		"logicalBlockSize", body.LogicalBlockSize,
		"pathTableLocationL", body.LocationTypeL,
		"rootDirectoryRecord", body.RootDirectoryRecord,
		"encoding", enc)
	return Supplementary{Body: body}, nil
}

// NewEnhanced tags a Body as the Enhanced variant (version 2,
// file-structure-version 2); callers should have already excluded
// symlinks/SUSP concerns that don't apply.
func NewEnhanced(body Body) Supplementary {
	body.FileStructureVersion = consts.FILE_STRUCTURE_VERSION_ENHANCED
	return Supplementary{Body: body}
}
