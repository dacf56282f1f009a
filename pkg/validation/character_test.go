package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arcfract/iso9660kit/pkg/validation"
)

func TestValidateDCharacters(t *testing.T) {
	assert.True(t, validation.ValidateDCharacters(""))
	assert.True(t, validation.ValidateDCharacters("MY_VOLUME1"))
	assert.False(t, validation.ValidateDCharacters("lowercase"))
	assert.False(t, validation.ValidateDCharacters("HAS.DOT"))
}

func TestValidateACharacters(t *testing.T) {
	assert.True(t, validation.ValidateACharacters("SOME APP (2024)"))
	assert.False(t, validation.ValidateACharacters("tilde~not~allowed"))
}

func TestValidateDOrSeparatorCharacters(t *testing.T) {
	assert.True(t, validation.ValidateDOrSeparatorCharacters("README.TXT;1"))
	assert.False(t, validation.ValidateDOrSeparatorCharacters("readme.txt"))
}

func TestStripVersion(t *testing.T) {
	assert.Equal(t, "HELLO.TXT", validation.StripVersion("HELLO.TXT;1"))
	assert.Equal(t, "HELLO.TXT", validation.StripVersion("HELLO.TXT"))
}
