package encoding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcfract/iso9660kit/pkg/encoding"
)

func TestUint32BothRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 0x12345678, 0xFFFFFFFF} {
		enc := encoding.Uint32Both(v)
		require.Len(t, enc, 8)
		got, err := encoding.GetUint32Both(enc)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestUint16BothRoundTrip(t *testing.T) {
	for _, v := range []uint16{0, 1, 0x1234, 0xFFFF} {
		enc := encoding.Uint16Both(v)
		require.Len(t, enc, 4)
		got, err := encoding.GetUint16Both(enc)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestUint32BothMismatchErrors(t *testing.T) {
	b := encoding.Uint32Both(0x11223344)
	b[4] ^= 0xFF // corrupt the big-endian half
	_, err := encoding.GetUint32Both(b)
	require.Error(t, err)
	var mismatch *encoding.BothEndianMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestSingleEndianRoundTrip(t *testing.T) {
	for _, e := range []encoding.Endianness{encoding.LittleEndian, encoding.BigEndian} {
		b := make([]byte, 4)
		encoding.PutUint32(b, 0xCAFEBABE, e)
		assert.Equal(t, uint32(0xCAFEBABE), encoding.GetUint32(b, e))
	}
}
