package descriptor

import (
	"fmt"

	"github.com/arcfract/iso9660kit/pkg/consts"
	"github.com/arcfract/iso9660kit/pkg/encoding"
	"github.com/arcfract/iso9660kit/pkg/validation"
)

// Primary is the mandatory type-1 volume descriptor. Its name-bearing
// fields are restricted to A-/D-characters and it carries no escape
// sequences.
type Primary struct {
	Body Body
}

// Validate checks the Primary-only invariants from spec §4.E: all
// identifiers satisfy their character sets.
func (p Primary) Validate() error {
	if p.Body.LogicalBlockSize == 0 || p.Body.LogicalBlockSize&(p.Body.LogicalBlockSize-1) != 0 {
		return fmt.Errorf("descriptor: primary logical block size %d is not a power of two", p.Body.LogicalBlockSize)
	}
	if len(p.Body.ApplicationUse) > consts.ISO9660_APPLICATION_USE_SIZE {
		return fmt.Errorf("descriptor: primary application-use area too large")
	}
	checks := []struct {
		field string
		ok    bool
	}{
		{"system identifier", validation.ValidateACharacters(p.Body.SystemIdentifier)},
		{"publisher identifier", validation.ValidateACharacters(p.Body.PublisherIdentifier.Value)},
		{"data preparer identifier", validation.ValidateACharacters(p.Body.DataPreparerIdentifier.Value)},
		{"application identifier", validation.ValidateACharacters(p.Body.ApplicationIdentifier.Value)},
		{"volume identifier", validation.ValidateDCharacters(p.Body.VolumeIdentifier)},
		{"volume set identifier", validation.ValidateDCharacters(p.Body.VolumeSetIdentifier)},
		{"copyright file identifier", validation.ValidateDOrSeparatorCharacters(p.Body.CopyrightFileIdentifier.Value)},
		{"abstract file identifier", validation.ValidateDOrSeparatorCharacters(p.Body.AbstractFileIdentifier.Value)},
		{"bibliographic file identifier", validation.ValidateDOrSeparatorCharacters(p.Body.BibliographicFileIdentifier.Value)},
	}
	for _, c := range checks {
		if !c.ok {
			return fmt.Errorf("descriptor: primary %s contains invalid characters", c.field)
		}
	}
	return nil
}

// Marshal serializes the descriptor into a full 2048-byte sector.
func (p Primary) Marshal() ([]byte, error) {
	body, err := p.Body.Marshal(encoding.ASCII)
	if err != nil {
		return nil, fmt.Errorf("descriptor: marshal primary: %w", err)
	}
	return assembleSector(Header{Type: consts.VOLUME_DESC_TYPE_PRIMARY, Version: consts.FILE_STRUCTURE_VERSION_STANDARD}, body)
}

// UnmarshalPrimary parses a Primary descriptor from a full sector.
func UnmarshalPrimary(sector []byte) (Primary, error) {
	body, err := UnmarshalBody(sector[HeaderSize:], encoding.ASCII)
	if err != nil {
		return Primary{}, fmt.Errorf("descriptor: unmarshal primary: %w", err)
	}
	return Primary{Body: body}, nil
}

func assembleSector(h Header, body []byte) ([]byte, error) {
	out := make([]byte, consts.ISO9660_SECTOR_SIZE)
	h.Marshal(out)
	if HeaderSize+len(body) > consts.ISO9660_SECTOR_SIZE {
		return nil, fmt.Errorf("descriptor: body of %d bytes overflows a %d-byte sector", len(body), consts.ISO9660_SECTOR_SIZE)
	}
	copy(out[HeaderSize:], body)
	return out, nil
}
