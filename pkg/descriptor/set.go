package descriptor

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/arcfract/iso9660kit/pkg/consts"
)

// SectorReader reads one sector by absolute sector index — the
// glue supplied by the filesystem layer so this package never
// imports the medium package directly.
type SectorReader func(idx int) ([]byte, error)

// Set is the fully discovered and classified volume descriptor
// sequence for one volume.
type Set struct {
	Primary       *Primary
	Supplementary []Supplementary // includes any Enhanced entries too; inspect Body.FileStructureVersion
	Boot          []BootRecord
	Partitions    []Partition
	Generic       []Generic
}

// Enhanced returns the first Supplementary entry whose
// FileStructureVersion marks it Enhanced, if any.
func (s Set) Enhanced() *Supplementary {
	for i := range s.Supplementary {
		if s.Supplementary[i].Body.FileStructureVersion == consts.FILE_STRUCTURE_VERSION_ENHANCED {
			return &s.Supplementary[i]
		}
	}
	return nil
}

// SupplementaryOnly returns the first Supplementary entry that is NOT
// Enhanced, if any.
func (s Set) SupplementaryOnly() *Supplementary {
	for i := range s.Supplementary {
		if s.Supplementary[i].Body.FileStructureVersion != consts.FILE_STRUCTURE_VERSION_ENHANCED {
			return &s.Supplementary[i]
		}
	}
	return nil
}

// ErrNoPrimary is returned by Discover when the sequence never
// produced a Primary descriptor before the Terminator.
var ErrNoPrimary = fmt.Errorf("descriptor: volume descriptor set has no Primary descriptor")

// Discover reads sectors sequentially starting at sector 16,
// classifying each until a Terminator is found, per spec §4.E.
func Discover(read SectorReader, logger logr.Logger) (Set, error) {
	var set Set
	for sectorIdx := consts.ISO9660_SYSTEM_AREA_SECTORS; ; sectorIdx++ {
		sector, err := read(sectorIdx)
		if err != nil {
			return Set{}, fmt.Errorf("descriptor: reading sector %d: %w", sectorIdx, err)
		}
		h, err := UnmarshalHeader(sector)
		if err != nil {
			return Set{}, fmt.Errorf("descriptor: sector %d: %w", sectorIdx, err)
		}

		switch Classify(h) {
		case KindTerminator:
			if set.Primary == nil {
				return Set{}, ErrNoPrimary
			}
			return set, nil
		case KindPrimary:
			p, err := UnmarshalPrimary(sector)
			if err != nil {
				return Set{}, err
			}
			set.Primary = &p
		case KindSupplementary, KindEnhanced:
			sup, err := UnmarshalSupplementary(sector, logger)
			if err != nil {
				return Set{}, err
			}
			set.Supplementary = append(set.Supplementary, sup)
		case KindBoot:
			b, err := UnmarshalBootRecord(sector)
			if err != nil {
				return Set{}, err
			}
			set.Boot = append(set.Boot, b)
		case KindPartition:
			part, err := UnmarshalPartition(sector)
			if err != nil {
				return Set{}, err
			}
			set.Partitions = append(set.Partitions, part)
		default:
			g, err := UnmarshalGeneric(h, sector)
			if err != nil {
				return Set{}, err
			}
			set.Generic = append(set.Generic, g)
		}
	}
}
