package xattr_test

import (
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcfract/iso9660kit/pkg/xattr"
)

func TestPermissionsRoundTrip(t *testing.T) {
	p := xattr.Permissions{OwnerRead: true, OwnerExecute: true, GroupRead: true}
	b := p.Marshal()
	require.Len(t, b, 2)
	got := xattr.UnmarshalPermissions(b)
	assert.Equal(t, p, got)
}

func TestRecordRoundTrip(t *testing.T) {
	rec := xattr.Record{
		OwnerID:          1000,
		GroupID:          1000,
		Permissions:      xattr.Permissions{OwnerRead: true, OwnerExecute: true},
		Creation:         time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		SystemIdentifier: "LINUX",
		ApplicationUse:   []byte("app data"),
		EscapeSequences:  []byte("%/E"),
	}

	b, err := rec.Marshal()
	require.NoError(t, err)

	got, err := xattr.Unmarshal(b, logr.Discard())
	require.NoError(t, err)
	assert.Equal(t, rec.OwnerID, got.OwnerID)
	assert.Equal(t, rec.GroupID, got.GroupID)
	assert.Equal(t, rec.Permissions, got.Permissions)
	assert.Equal(t, rec.SystemIdentifier, got.SystemIdentifier)
	assert.Equal(t, rec.ApplicationUse, got.ApplicationUse)
	assert.Equal(t, rec.EscapeSequences, got.EscapeSequences)
}
