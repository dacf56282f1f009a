package filesystem_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcfract/iso9660kit/pkg/consts"
	"github.com/arcfract/iso9660kit/pkg/descriptor"
	"github.com/arcfract/iso9660kit/pkg/directory"
	"github.com/arcfract/iso9660kit/pkg/encoding"
	"github.com/arcfract/iso9660kit/pkg/filesystem"
	"github.com/arcfract/iso9660kit/pkg/medium"
	"github.com/arcfract/iso9660kit/pkg/options"
	"github.com/arcfract/iso9660kit/pkg/pathtable"
)

const (
	rootLBA      = 18
	subdirLBA    = 20
	fileLBA      = 21
	pathTableLBA = 22
)

func paddedSector(parts ...[]byte) []byte {
	out := make([]byte, consts.ISO9660_SECTOR_SIZE)
	off := 0
	for _, p := range parts {
		off += copy(out[off:], p)
	}
	return out
}

func mustMarshal(t *testing.T, r directory.Record) []byte {
	b, err := r.MarshalEncoded(encoding.ASCII)
	require.NoError(t, err)
	return b
}

func buildMinimalImage(t *testing.T, fileContent []byte) medium.Medium {
	t.Helper()

	rootSelf := directory.Record{Identifier: directory.Self(), ExtentLocation: rootLBA, DataLength: consts.ISO9660_SECTOR_SIZE, Flags: directory.FileFlags(0).WithDirectory(true)}
	rootParent := directory.Record{Identifier: directory.Parent(), ExtentLocation: rootLBA, DataLength: consts.ISO9660_SECTOR_SIZE, Flags: directory.FileFlags(0).WithDirectory(true)}
	subdirRec := directory.Record{Identifier: directory.Named("SUBDIR"), ExtentLocation: subdirLBA, DataLength: consts.ISO9660_SECTOR_SIZE, Flags: directory.FileFlags(0).WithDirectory(true)}
	fileRec := directory.Record{Identifier: directory.Named("FILE.TXT;1"), ExtentLocation: fileLBA, DataLength: uint32(len(fileContent))}

	rootExtent := paddedSector(
		mustMarshal(t, rootSelf),
		mustMarshal(t, rootParent),
		mustMarshal(t, subdirRec),
		mustMarshal(t, fileRec),
	)

	subdirSelf := directory.Record{Identifier: directory.Self(), ExtentLocation: subdirLBA, DataLength: consts.ISO9660_SECTOR_SIZE, Flags: directory.FileFlags(0).WithDirectory(true)}
	subdirParent := directory.Record{Identifier: directory.Parent(), ExtentLocation: rootLBA, DataLength: consts.ISO9660_SECTOR_SIZE, Flags: directory.FileFlags(0).WithDirectory(true)}
	subdirExtent := paddedSector(mustMarshal(t, subdirSelf), mustMarshal(t, subdirParent))

	fileExtent := paddedSector(fileContent)

	primary := descriptor.Primary{Body: descriptor.Body{
		SystemIdentifier:     "LINUX",
		VolumeIdentifier:     "TESTVOL",
		VolumeSpaceSize:      32,
		LogicalBlockSize:     consts.ISO9660_SECTOR_SIZE,
		RootDirectoryRecord:  directory.Record{Identifier: directory.Self(), ExtentLocation: rootLBA, DataLength: consts.ISO9660_SECTOR_SIZE, Flags: directory.FileFlags(0).WithDirectory(true)},
		FileStructureVersion: consts.FILE_STRUCTURE_VERSION_STANDARD,
	}}
	primarySector, err := primary.Marshal()
	require.NoError(t, err)

	termSector, err := descriptor.Terminator{}.Marshal()
	require.NoError(t, err)

	m, err := medium.NewMemoryMedium(consts.ISO9660_SECTOR_SIZE)
	require.NoError(t, err)

	require.NoError(t, m.WriteSector(16, primarySector))
	require.NoError(t, m.WriteSector(17, termSector))
	require.NoError(t, m.WriteSector(rootLBA, rootExtent))
	require.NoError(t, m.WriteSector(subdirLBA, subdirExtent))
	require.NoError(t, m.WriteSector(fileLBA, fileExtent))

	return m
}

func buildImageWithPathTable(t *testing.T, fileContent []byte) medium.Medium {
	t.Helper()

	rootSelf := directory.Record{Identifier: directory.Self(), ExtentLocation: rootLBA, DataLength: consts.ISO9660_SECTOR_SIZE, Flags: directory.FileFlags(0).WithDirectory(true)}
	rootParent := directory.Record{Identifier: directory.Parent(), ExtentLocation: rootLBA, DataLength: consts.ISO9660_SECTOR_SIZE, Flags: directory.FileFlags(0).WithDirectory(true)}
	subdirRec := directory.Record{Identifier: directory.Named("SUBDIR"), ExtentLocation: subdirLBA, DataLength: consts.ISO9660_SECTOR_SIZE, Flags: directory.FileFlags(0).WithDirectory(true)}
	fileRec := directory.Record{Identifier: directory.Named("FILE.TXT;1"), ExtentLocation: fileLBA, DataLength: uint32(len(fileContent))}

	rootExtent := paddedSector(
		mustMarshal(t, rootSelf),
		mustMarshal(t, rootParent),
		mustMarshal(t, subdirRec),
		mustMarshal(t, fileRec),
	)

	subdirSelf := directory.Record{Identifier: directory.Self(), ExtentLocation: subdirLBA, DataLength: consts.ISO9660_SECTOR_SIZE, Flags: directory.FileFlags(0).WithDirectory(true)}
	subdirParent := directory.Record{Identifier: directory.Parent(), ExtentLocation: rootLBA, DataLength: consts.ISO9660_SECTOR_SIZE, Flags: directory.FileFlags(0).WithDirectory(true)}
	subdirExtent := paddedSector(mustMarshal(t, subdirSelf), mustMarshal(t, subdirParent))

	fileExtent := paddedSector(fileContent)

	table := pathtable.Table{Records: []pathtable.Record{
		{ExtentLocation: rootLBA, ParentNumber: 1, Identifier: ""},
		{ExtentLocation: subdirLBA, ParentNumber: 1, Identifier: "SUBDIR"},
	}}
	tableBytes := table.Marshal(encoding.LittleEndian, encoding.ASCII)
	pathTableSector := paddedSector(tableBytes)

	primary := descriptor.Primary{Body: descriptor.Body{
		SystemIdentifier:     "LINUX",
		VolumeIdentifier:     "TESTVOL",
		VolumeSpaceSize:      32,
		LogicalBlockSize:     consts.ISO9660_SECTOR_SIZE,
		RootDirectoryRecord:  directory.Record{Identifier: directory.Self(), ExtentLocation: rootLBA, DataLength: consts.ISO9660_SECTOR_SIZE, Flags: directory.FileFlags(0).WithDirectory(true)},
		FileStructureVersion: consts.FILE_STRUCTURE_VERSION_STANDARD,
		PathTableSize:        uint32(len(tableBytes)),
		LocationTypeL:        pathTableLBA,
	}}
	primarySector, err := primary.Marshal()
	require.NoError(t, err)

	termSector, err := descriptor.Terminator{}.Marshal()
	require.NoError(t, err)

	m, err := medium.NewMemoryMedium(consts.ISO9660_SECTOR_SIZE)
	require.NoError(t, err)

	require.NoError(t, m.WriteSector(16, primarySector))
	require.NoError(t, m.WriteSector(17, termSector))
	require.NoError(t, m.WriteSector(rootLBA, rootExtent))
	require.NoError(t, m.WriteSector(subdirLBA, subdirExtent))
	require.NoError(t, m.WriteSector(fileLBA, fileExtent))
	require.NoError(t, m.WriteSector(pathTableLBA, pathTableSector))

	return m
}

func TestListDirectoryRoot(t *testing.T) {
	m := buildMinimalImage(t, []byte("hello world"))
	r, err := filesystem.Open(m, options.Default())
	require.NoError(t, err)

	entries, err := r.ListDirectory("/", options.Default())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	names := map[string]filesystem.EntryKind{}
	for _, e := range entries {
		names[e.Name] = e.Kind
	}
	assert.Equal(t, filesystem.KindDirectory, names["SUBDIR"])
	assert.Equal(t, filesystem.KindFile, names["FILE.TXT;1"])
}

func TestGetFSEntryNestedPath(t *testing.T) {
	m := buildMinimalImage(t, []byte("hello world"))
	r, err := filesystem.Open(m, options.Default())
	require.NoError(t, err)

	entry, err := r.GetFSEntry("/SUBDIR", options.Default())
	require.NoError(t, err)
	assert.Equal(t, filesystem.KindDirectory, entry.Kind)
}

func TestGetFSEntryMissingPath(t *testing.T) {
	m := buildMinimalImage(t, []byte("hello world"))
	r, err := filesystem.Open(m, options.Default())
	require.NoError(t, err)

	_, err = r.GetFSEntry("/NOPE", options.Default())
	require.Error(t, err)
	var invalid *filesystem.ErrInvalidPath
	require.ErrorAs(t, err, &invalid)
}

func TestOpenFileStreamsTruncatedContent(t *testing.T) {
	content := []byte("hello world")
	m := buildMinimalImage(t, content)
	r, err := filesystem.Open(m, options.Default())
	require.NoError(t, err)

	entry, err := r.GetFSEntry("/FILE.TXT;1", options.Default())
	require.NoError(t, err)
	require.Equal(t, filesystem.KindFile, entry.Kind)

	stream, err := r.OpenFile(entry)
	require.NoError(t, err)
	defer stream.Close()

	got, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestOpenFileSeekRestarts(t *testing.T) {
	content := []byte("hello world")
	m := buildMinimalImage(t, content)
	r, err := filesystem.Open(m, options.Default())
	require.NoError(t, err)

	entry, err := r.GetFSEntry("/FILE.TXT;1", options.Default())
	require.NoError(t, err)

	stream, err := r.OpenFile(entry)
	require.NoError(t, err)
	defer stream.Close()

	first := make([]byte, 5)
	_, err = io.ReadFull(stream, first)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(first))

	_, err = stream.Seek(0, io.SeekStart)
	require.NoError(t, err)

	all, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, content, all)
}

func TestResolveViaPathTable(t *testing.T) {
	m := buildMinimalImage(t, []byte("hello world"))

	opts := options.Apply(options.WithPathTableMode(options.TraversePathTable))
	r, err := filesystem.Open(m, opts)
	require.NoError(t, err)

	// No path table extent was written in this minimal image, so
	// resolving anything beyond root should fail cleanly rather than
	// panic.
	_, err = r.GetFSEntry("/SUBDIR", opts)
	require.Error(t, err)
}

func TestResolveViaPathTableRecoversDirectoryLength(t *testing.T) {
	m := buildImageWithPathTable(t, []byte("hello world"))

	opts := options.Apply(options.WithPathTableMode(options.TraversePathTable))
	r, err := filesystem.Open(m, opts)
	require.NoError(t, err)

	entry, err := r.GetFSEntry("/SUBDIR", opts)
	require.NoError(t, err)
	require.Equal(t, filesystem.KindDirectory, entry.Kind)
	// pathtable.Record carries no length field; a path-table-resolved
	// directory's DataLength must be recovered from its own "." record,
	// not left at the zero value (which would make enumerateDirectory
	// read nothing).
	assert.EqualValues(t, consts.ISO9660_SECTOR_SIZE, entry.Size)

	listed, err := r.ListDirectory("/SUBDIR", opts)
	require.NoError(t, err)
	assert.Empty(t, listed) // only "." and ".." exist in SUBDIR's extent

	fileEntry, err := r.GetFSEntry("/FILE.TXT;1", opts)
	require.NoError(t, err)
	assert.Equal(t, filesystem.KindFile, fileEntry.Kind)
}
