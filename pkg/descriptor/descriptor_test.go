package descriptor_test

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcfract/iso9660kit/pkg/consts"
	"github.com/arcfract/iso9660kit/pkg/descriptor"
	"github.com/arcfract/iso9660kit/pkg/directory"
	"github.com/arcfract/iso9660kit/pkg/encoding"
)

func rootRecord() directory.Record {
	return directory.Record{
		Identifier:     directory.Self(),
		ExtentLocation: 20,
		DataLength:     2048,
		Flags:          directory.FileFlags(0).WithDirectory(true),
	}
}

func TestPrimaryRoundTrip(t *testing.T) {
	p := descriptor.Primary{Body: descriptor.Body{
		SystemIdentifier:     "LINUX",
		VolumeIdentifier:     "MYVOLUME",
		VolumeSpaceSize:      1000,
		LogicalBlockSize:     2048,
		RootDirectoryRecord:  rootRecord(),
		FileStructureVersion: consts.FILE_STRUCTURE_VERSION_STANDARD,
	}}
	require.NoError(t, p.Validate())

	sector, err := p.Marshal()
	require.NoError(t, err)
	require.Len(t, sector, consts.ISO9660_SECTOR_SIZE)

	got, err := descriptor.UnmarshalPrimary(sector)
	require.NoError(t, err)
	assert.Equal(t, p.Body.VolumeIdentifier, got.Body.VolumeIdentifier)
	assert.Equal(t, p.Body.VolumeSpaceSize, got.Body.VolumeSpaceSize)
	assert.Equal(t, p.Body.LogicalBlockSize, got.Body.LogicalBlockSize)
}

func TestPrimaryRejectsLowercaseVolumeIdentifier(t *testing.T) {
	p := descriptor.Primary{Body: descriptor.Body{
		VolumeIdentifier: "lowercase",
		LogicalBlockSize: 2048,
	}}
	require.Error(t, p.Validate())
}

func TestSupplementarySelectsUCS2ForJolietLevel3(t *testing.T) {
	var body descriptor.Body
	body.RootDirectoryRecord = rootRecord()
	body.LogicalBlockSize = 2048
	copy(body.EscapeSequences[:], consts.JOLIET_LEVEL_3_ESCAPE)
	sup := descriptor.Supplementary{Body: body}

	assert.Equal(t, encoding.UCS2BE, body.EncodingOf())

	sector, err := sup.Marshal()
	require.NoError(t, err)
	got, err := descriptor.UnmarshalSupplementary(sector, logr.Discard())
	require.NoError(t, err)
	assert.Equal(t, encoding.UCS2BE, got.Body.EncodingOf())
}

func TestSupplementarySelectsUTF8(t *testing.T) {
	var body descriptor.Body
	body.RootDirectoryRecord = rootRecord()
	body.LogicalBlockSize = 2048
	copy(body.EscapeSequences[:], consts.JOLIET_UTF8_ESCAPE_G)
	assert.Equal(t, encoding.UTF8, body.EncodingOf())
}

func TestClassifyDescriptorTypes(t *testing.T) {
	cases := []struct {
		h    descriptor.Header
		want descriptor.Kind
	}{
		{descriptor.Header{Type: 0}, descriptor.KindBoot},
		{descriptor.Header{Type: 1}, descriptor.KindPrimary},
		{descriptor.Header{Type: 2, Version: 1}, descriptor.KindSupplementary},
		{descriptor.Header{Type: 2, Version: 2}, descriptor.KindEnhanced},
		{descriptor.Header{Type: 3}, descriptor.KindPartition},
		{descriptor.Header{Type: 255}, descriptor.KindTerminator},
		{descriptor.Header{Type: 42}, descriptor.KindGeneric},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, descriptor.Classify(c.h))
	}
}

func TestDiscoverStopsAtTerminator(t *testing.T) {
	p := descriptor.Primary{Body: descriptor.Body{
		VolumeIdentifier:     "VOL",
		LogicalBlockSize:     2048,
		RootDirectoryRecord:  rootRecord(),
		FileStructureVersion: consts.FILE_STRUCTURE_VERSION_STANDARD,
	}}
	primarySector, err := p.Marshal()
	require.NoError(t, err)
	termSector, err := descriptor.Terminator{}.Marshal()
	require.NoError(t, err)

	sectors := map[int][]byte{16: primarySector, 17: termSector}
	set, err := descriptor.Discover(func(idx int) ([]byte, error) {
		return sectors[idx], nil
	}, logr.Discard())
	require.NoError(t, err)
	require.NotNil(t, set.Primary)
	assert.Equal(t, "VOL", set.Primary.Body.VolumeIdentifier)
}

func TestDiscoverRequiresPrimary(t *testing.T) {
	termSector, err := descriptor.Terminator{}.Marshal()
	require.NoError(t, err)
	_, err = descriptor.Discover(func(idx int) ([]byte, error) {
		return termSector, nil
	}, logr.Discard())
	require.ErrorIs(t, err, descriptor.ErrNoPrimary)
}
