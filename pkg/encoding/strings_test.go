package encoding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arcfract/iso9660kit/pkg/encoding"
)

func TestEncodeDecodeASCII(t *testing.T) {
	b := encoding.EncodeString("HELLO", 10, encoding.ASCII)
	assert.Equal(t, []byte("HELLO     "), b)
	assert.Equal(t, "HELLO", encoding.DecodeString(b, encoding.ASCII))
}

func TestEncodeDecodeUCS2BE(t *testing.T) {
	b := encoding.EncodeString("hi", 8, encoding.UCS2BE)
	assert.Len(t, b, 8)
	assert.Equal(t, "hi", encoding.DecodeString(b, encoding.UCS2BE))
}

func TestEncodeTruncatesOnWholeUnitBoundary(t *testing.T) {
	b := encoding.EncodeString("abcdef", 4, encoding.UCS2BE)
	assert.Len(t, b, 4)
	assert.Equal(t, "ab", encoding.DecodeString(b, encoding.UCS2BE))
}

func TestIdentifierOrFileRoundTrip(t *testing.T) {
	cases := []encoding.IdentifierOrFile{
		encoding.EmptyIdentifier(),
		encoding.NewIdentifier("README"),
		encoding.NewFileIdentifier("COPYING.TXT"),
	}
	for _, c := range cases {
		b := c.Marshal(32, encoding.ASCII)
		got := encoding.UnmarshalIdentifierOrFile(b, encoding.ASCII)
		assert.Equal(t, c, got)
	}
}
