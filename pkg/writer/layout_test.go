package writer

import (
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcfract/iso9660kit/pkg/directory"
	"github.com/arcfract/iso9660kit/pkg/encoding"
	"github.com/arcfract/iso9660kit/pkg/options"
	"github.com/arcfract/iso9660kit/pkg/susp"
)

func buildPlanTestTree(t *testing.T) *Tree {
	t.Helper()
	tree := NewTree()
	require.NoError(t, tree.AddDirectory("docs", nil))
	require.NoError(t, tree.AddFile("docs/readme.txt", 11, nil))
	require.NoError(t, tree.AddFile("top.bin", 4096, nil))
	return tree
}

func TestPlanPlacesSectorsBeyondTheRootDirectory(t *testing.T) {
	tree := buildPlanTestTree(t)
	opts := options.Apply(options.WithSupplementary(false), options.WithSUSP(true))
	stamp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	l, err := Plan(tree, opts, stamp)
	require.NoError(t, err)
	rootLBA := l.Primary.Body.RootDirectoryRecord.ExtentLocation
	assert.NotZero(t, rootLBA)
	assert.Equal(t, "", l.Primary.Body.VolumeIdentifier)

	docsNode := tree.root.Children["docs"]
	require.NotNil(t, docsNode)
	docsLBA := l.Primary.Body.RootDirectoryRecord.ExtentLocation
	_ = docsLBA
	// The plan must hold at least one sector at an LBA other than the
	// root directory's.
	var foundDocsSector bool
	for lba := range l.sectors {
		if lba != rootLBA && len(l.sectors[lba]) > 0 {
			foundDocsSector = true
			break
		}
	}
	assert.True(t, foundDocsSector, "expected at least one non-root sector in the plan")
}

func TestPlanRejectsEmptyTreeNever(t *testing.T) {
	// An empty tree still has a synthetic root directory, so Plan
	// succeeds: the root is never itself absent.
	tree := NewTree()
	opts := options.Default()
	l, err := Plan(tree, opts, time.Time{})
	require.NoError(t, err)
	assert.NotNil(t, l.Primary)
}

func TestPlanWithSUSPAttachesPXToDirectoriesAndFiles(t *testing.T) {
	tree := buildPlanTestTree(t)
	opts := options.Apply(options.WithSupplementary(false), options.WithSUSP(true))
	stamp := time.Now()

	l, err := Plan(tree, opts, stamp)
	require.NoError(t, err)

	rootBytes := l.sectors[l.Primary.Body.RootDirectoryRecord.ExtentLocation]
	require.NotEmpty(t, rootBytes)

	var records []directory.Record
	for off := 0; off < len(rootBytes); {
		rec, n, err := directory.Unmarshal(rootBytes[off:], encoding.ASCII)
		require.NoError(t, err)
		if n == 0 {
			break
		}
		records = append(records, rec)
		off += n
	}
	require.GreaterOrEqual(t, len(records), 3) // self, parent, docs
	childRecords := records[2:]
	for _, rec := range childRecords {
		assert.NotEmpty(t, rec.SystemUse, "every non-self/parent record should carry a Rock Ridge trailer")
	}
}

func TestPlanEmitsSPOnlyOnRootSelfRecordAndDotTrailersEverywhere(t *testing.T) {
	tree := buildPlanTestTree(t)
	opts := options.Apply(options.WithSupplementary(false), options.WithSUSP(true))
	stamp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	l, err := Plan(tree, opts, stamp)
	require.NoError(t, err)

	rootLBA := l.Primary.Body.RootDirectoryRecord.ExtentLocation
	rootBytes := l.sectors[rootLBA]

	rootSelf, n, err := directory.Unmarshal(rootBytes, encoding.ASCII)
	require.NoError(t, err)
	require.NotZero(t, n)
	rootParent, n2, err := directory.Unmarshal(rootBytes[n:], encoding.ASCII)
	require.NoError(t, err)
	require.NotZero(t, n2)

	selfEntries, err := susp.ParseEntries(rootSelf.SystemUse, logr.Discard())
	require.NoError(t, err)
	require.NotEmpty(t, selfEntries)
	assert.Equal(t, "SP", selfEntries[0].Signature(), "root's \".\" record must lead with SP per SUSP 5.1")
	assertHasPXAndTF(t, selfEntries)

	parentEntries, err := susp.ParseEntries(rootParent.SystemUse, logr.Discard())
	require.NoError(t, err)
	for _, e := range parentEntries {
		assert.NotEqual(t, "SP", e.Signature(), "only the root's \".\" record carries SP, not \"..\"")
	}
	assertHasPXAndTF(t, parentEntries)

	// A non-root directory's dot records carry PX/TF but never SP.
	docsNode := tree.root.Children["docs"]
	require.NotNil(t, docsNode)
	var docsRec directory.Record
	for off := 0; off < len(rootBytes); {
		rec, consumed, err := directory.Unmarshal(rootBytes[off:], encoding.ASCII)
		require.NoError(t, err)
		if consumed == 0 {
			break
		}
		if rec.Identifier.Name == "DOCS" {
			docsRec = rec
		}
		off += consumed
	}
	require.NotZero(t, docsRec.ExtentLocation)
	docsExtent := l.sectors[docsRec.ExtentLocation]
	docsSelf, dn, err := directory.Unmarshal(docsExtent, encoding.ASCII)
	require.NoError(t, err)
	require.NotZero(t, dn)
	docsSelfEntries, err := susp.ParseEntries(docsSelf.SystemUse, logr.Discard())
	require.NoError(t, err)
	for _, e := range docsSelfEntries {
		assert.NotEqual(t, "SP", e.Signature())
	}
	assertHasPXAndTF(t, docsSelfEntries)
}

func assertHasPXAndTF(t *testing.T, entries []susp.Entry) {
	t.Helper()
	var hasPX, hasTF bool
	for _, e := range entries {
		switch e.Signature() {
		case "PX":
			hasPX = true
		case "TF":
			hasTF = true
		case "NM":
			t.Errorf("dot records must not carry NM; name is implicit")
		}
	}
	assert.True(t, hasPX, "expected a PX entry")
	assert.True(t, hasTF, "expected a TF entry")
}

func TestPlanProducesSupplementaryAndEnhancedDescriptorsWhenRequested(t *testing.T) {
	tree := buildPlanTestTree(t)
	opts := options.Apply(options.WithSupplementary(true), options.WithEnhanced(true), options.WithSUSP(true))
	l, err := Plan(tree, opts, time.Time{})
	require.NoError(t, err)
	assert.NotNil(t, l.Supplementary)
	assert.NotNil(t, l.Enhanced)
}

func TestPlanReturnsErrTrailerTooLargeForRootLevelNode(t *testing.T) {
	// Oversized SUSP trailers on a node directly under the root are
	// first synthesized during Plan's directory-size pass
	// (computeDirSizes via recordLength), before any buildDirBytes
	// call — this exercises that pass's error path.
	tree := NewTree()
	longName := make([]byte, 250)
	for i := range longName {
		longName[i] = 'a'
	}
	require.NoError(t, tree.AddFile(string(longName), 10, nil))

	opts := options.Apply(options.WithSupplementary(false), options.WithSUSP(true))
	l, err := Plan(tree, opts, time.Time{})
	assert.Nil(t, l)
	require.Error(t, err)
	var tooLarge *ErrTrailerTooLarge
	assert.ErrorAs(t, err, &tooLarge)
}

func TestCollectFilesDeduplicatesAcrossViews(t *testing.T) {
	tree := buildPlanTestTree(t)
	opts := options.Apply(options.WithSupplementary(true), options.WithEnhanced(true))
	l, err := Plan(tree, opts, time.Time{})
	require.NoError(t, err)

	// Exactly two files exist in the tree regardless of how many
	// descriptor views reference them.
	assert.Len(t, l.files, 2)
}
