package susp_test

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcfract/iso9660kit/pkg/susp"
)

func TestPXRoundTrip(t *testing.T) {
	e := susp.PX{Mode: 0o644, Links: 1, UID: 1000, GID: 1000}
	entries, err := susp.ParseEntries(e.Marshal(), logr.Discard())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, e, entries[0])
}

func TestNMRoundTrip(t *testing.T) {
	e := susp.NM{Name: []byte("grub.cfg")}
	entries, err := susp.ParseEntries(e.Marshal(), logr.Discard())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, e, entries[0])
}

func TestOpaqueRoundTripsVerbatim(t *testing.T) {
	o := susp.Opaque{Sig: [2]byte{'Z', 'Z'}, Version: 1, Payload: []byte{1, 2, 3}}
	entries, err := susp.ParseEntries(o.Marshal(), logr.Discard())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, o, entries[0])
}

func TestParseEntriesStopsAfterST(t *testing.T) {
	data := append(susp.PD{Payload: []byte{0, 0}}.Marshal(), susp.ST{}.Marshal()...)
	data = append(data, susp.PX{Mode: 1}.Marshal()...)
	entries, err := susp.ParseEntries(data, logr.Discard())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	_, isST := entries[1].(susp.ST)
	assert.True(t, isST)
}

func TestSplitNMFitsWhole(t *testing.T) {
	e := susp.NM{Name: []byte("short")}
	first, second, ok := susp.SplitAt(e, 64)
	require.True(t, ok)
	assert.Nil(t, second)
	nm := first.(susp.NM)
	assert.Equal(t, byte(0), nm.Flags&susp.NMContinue)
}

func TestSplitNMSplitsAcrossBudget(t *testing.T) {
	e := susp.NM{Name: []byte("abcdefghij")}
	budget := 5 + 4 // header(5 incl flags) + 4 usable bytes
	first, second, ok := susp.SplitAt(e, budget)
	require.True(t, ok)
	require.NotNil(t, second)

	firstLen := len(first.Marshal())
	assert.LessOrEqual(t, firstLen, budget)

	fnm := first.(susp.NM)
	snm := second.(susp.NM)
	assert.NotZero(t, fnm.Flags&susp.NMContinue)
	assert.Equal(t, e.Name, append(append([]byte{}, fnm.Name...), snm.Name...))
}

func TestSplitSLSplitsComponent(t *testing.T) {
	e := susp.SL{Components: []susp.SLComponent{
		{Bytes: []byte("aaaaaaaaaa")},
		{Bytes: []byte("b")},
	}}
	first, second, ok := susp.SplitAt(e, 12)
	require.True(t, ok)
	require.NotNil(t, second)
	assert.LessOrEqual(t, len(first.Marshal()), 12)
}

// When the split falls on a whole-component boundary (no room left
// even for the next component's 2-byte header), the second fragment's
// ContinuesInNext must carry the original entry's flag, not be forced
// to true — a last SL entry split this way must still signal "done".
func TestSplitSLCutBeforeComponentCarriesContinuesInNext(t *testing.T) {
	e := susp.SL{
		ContinuesInNext: false,
		Components: []susp.SLComponent{
			{Bytes: []byte("aaaaa")}, // marshals to 7 bytes (2-byte header + 5)
			{Bytes: []byte("bbbbb")}, // also 7 bytes; won't fit after the first
		},
	}
	first, second, ok := susp.SplitAt(e, 13) // budget = 13-5 = 8: fits c0 (7), not c1's header+1
	require.True(t, ok)
	require.NotNil(t, second)

	fsl := first.(susp.SL)
	ssl := second.(susp.SL)
	assert.True(t, fsl.ContinuesInNext)
	assert.False(t, ssl.ContinuesInNext, "last fragment must not falsely claim further continuation")
	assert.Equal(t, e.Components, append(append([]susp.SLComponent{}, fsl.Components...), ssl.Components...))
}
