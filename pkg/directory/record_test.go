package directory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcfract/iso9660kit/pkg/directory"
	"github.com/arcfract/iso9660kit/pkg/encoding"
)

func TestRecordRoundTripASCII(t *testing.T) {
	rec := directory.Record{
		ExtendedAttrLength:   0,
		ExtentLocation:       100,
		DataLength:           2048,
		RecordTime:           time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Flags:                directory.FileFlags(0).WithDirectory(true),
		VolumeSequenceNumber: 1,
		Identifier:           directory.Named("HELLO.TXT;1"),
	}

	b, err := rec.MarshalEncoded(encoding.ASCII)
	require.NoError(t, err)
	assert.Equal(t, 0, len(b)%2)

	got, n, err := directory.Unmarshal(b, encoding.ASCII)
	require.NoError(t, err)
	assert.Equal(t, len(b), n)
	assert.Equal(t, rec.ExtentLocation, got.ExtentLocation)
	assert.Equal(t, rec.DataLength, got.DataLength)
	assert.Equal(t, rec.Identifier, got.Identifier)
	assert.True(t, got.Flags.IsDirectory())
}

func TestSelfAndParentIdentifiers(t *testing.T) {
	for _, ident := range []directory.Identifier{directory.Self(), directory.Parent()} {
		rec := directory.Record{Identifier: ident, ExtentLocation: 1, DataLength: 2048}
		b, err := rec.MarshalEncoded(encoding.ASCII)
		require.NoError(t, err)
		got, _, err := directory.Unmarshal(b, encoding.ASCII)
		require.NoError(t, err)
		assert.Equal(t, ident, got.Identifier)
	}
}

func TestZeroLengthRecordSignalsEndOfSector(t *testing.T) {
	rec, n, err := directory.Unmarshal([]byte{0x00, 0x00, 0x00}, encoding.ASCII)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, directory.Record{}, rec)
}

func TestDirectoryFlagMutualExclusion(t *testing.T) {
	f := directory.FlagAssociated | directory.FlagMultiExtent
	f = f.WithDirectory(true)
	assert.True(t, f.IsDirectory())
	assert.False(t, f.Has(directory.FlagAssociated))
	assert.False(t, f.Has(directory.FlagMultiExtent))
}

func TestOversizedRecordRejected(t *testing.T) {
	rec := directory.Record{
		Identifier: directory.Named("X"),
		SystemUse:  make([]byte, 255),
	}
	_, err := rec.MarshalEncoded(encoding.ASCII)
	require.Error(t, err)
	var tooLarge *directory.ErrRecordTooLarge
	require.ErrorAs(t, err, &tooLarge)
}
