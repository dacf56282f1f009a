package writer

import (
	"fmt"
	"io"

	"github.com/go-logr/logr"

	"github.com/arcfract/iso9660kit/pkg/medium"
)

// FileSource resolves a node's declared content to a readable stream
// during emission. The emitter reads exactly n.Size bytes from it.
type FileSource func(n *Node) (io.Reader, error)

// ErrShortFileStream is returned by Emit when a FileSource yields
// fewer bytes than the node's declared size.
type ErrShortFileStream struct {
	Path string
	Want uint32
	Got  int64
}

func (e *ErrShortFileStream) Error() string {
	return fmt.Sprintf("writer: %q: stream yielded %d of %d declared bytes", e.Path, e.Got, e.Want)
}

// Emit writes every sector of l to m, in ascending LBA order:
// descriptors, terminator, directory extents, and path tables come
// straight from l.sectors; file content is pulled lazily from source,
// read for exactly the node's declared size, and zero-padded to the
// next block boundary.
func Emit(l *Layout, m medium.Medium, source FileSource) error {
	if m.SectorSize() != l.BlockSize {
		return fmt.Errorf("writer: medium sector size %d does not match layout block size %d", m.SectorSize(), l.BlockSize)
	}

	for lba, data := range l.sectors {
		if err := writeBlocks(m, lba, data); err != nil {
			return err
		}
	}

	for _, fe := range l.files {
		if err := emitFile(l.Logger, m, l.BlockSize, fe, source); err != nil {
			return err
		}
	}

	return nil
}

func writeBlocks(m medium.Medium, lba uint32, data []byte) error {
	blockSize := m.SectorSize()
	if len(data)%blockSize != 0 {
		return fmt.Errorf("writer: sector buffer at lba %d is %d bytes, not a multiple of %d", lba, len(data), blockSize)
	}
	for off := 0; off < len(data); off += blockSize {
		if err := m.WriteSector(int(lba)+off/blockSize, data[off:off+blockSize]); err != nil {
			return fmt.Errorf("writer: write sector %d: %w", int(lba)+off/blockSize, err)
		}
	}
	return nil
}

func emitFile(logger logr.Logger, m medium.Medium, blockSize int, fe fileExtent, source FileSource) error {
	path := fullPath(fe.node)

	r, err := source(fe.node)
	if err != nil {
		logger.V(1).Error(err, "opening file stream failed", "path", path)
		return fmt.Errorf("writer: opening stream for %q: %w", path, err)
	}
	if rc, ok := r.(io.Closer); ok {
		defer rc.Close()
	}

	total := int64(fe.blocks) * int64(blockSize)
	buf := make([]byte, total)
	n, err := io.ReadFull(r, buf[:fe.node.Size])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		logger.V(1).Error(err, "reading file stream failed", "path", path)
		return fmt.Errorf("writer: reading %q: %w", path, err)
	}
	if uint32(n) != fe.node.Size {
		err := &ErrShortFileStream{Path: path, Want: fe.node.Size, Got: int64(n)}
		logger.V(1).Error(err, "file stream ended early", "path", path)
		return err
	}

	return writeBlocks(m, fe.lba, buf)
}
