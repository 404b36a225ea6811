package vectorindex

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/apiarylab/apiary-agent/ingestion"
)

// The index and its chunk metadata live in one versioned container so a
// reader can never pick up a vector set paired with stale texts. Layout,
// all little-endian:
//
//	magic "APIX" | version u16 | dimension u32 | count u32
//	count * dimension float32 vectors
//	count records: source len u32, source bytes, text len u32, text bytes
var artifactMagic = [4]byte{'A', 'P', 'I', 'X'}

const artifactVersion uint16 = 1

// maxFieldLen bounds a single length-prefixed field while decoding, so a
// corrupt header cannot trigger a huge allocation.
const maxFieldLen = 64 << 20

// maxDimension bounds the header dimension; no embedding model in use comes
// near it, and it keeps the size arithmetic below free of overflow.
const maxDimension = 1 << 16

// artifactHeaderLen is the fixed byte length of magic, version, dimension
// and count.
const artifactHeaderLen = 4 + 2 + 4 + 4

type artifact struct {
	dimension int
	vectors   [][]float32
	chunks    []ingestion.Chunk
}

func encodeArtifact(w io.Writer, dimension int, chunks []ingestion.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}
	for i, vec := range vectors {
		if len(vec) != dimension {
			return fmt.Errorf("vector %d has dimension %d, want %d", i, len(vec), dimension)
		}
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(artifactMagic[:]); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	header := []any{artifactVersion, uint32(dimension), uint32(len(chunks))}
	for _, field := range header {
		if err := binary.Write(bw, binary.LittleEndian, field); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for _, vec := range vectors {
		if err := binary.Write(bw, binary.LittleEndian, vec); err != nil {
			return fmt.Errorf("write vectors: %w", err)
		}
	}

	for _, chunk := range chunks {
		if err := writeString(bw, chunk.Source); err != nil {
			return fmt.Errorf("write chunk source: %w", err)
		}
		if err := writeString(bw, chunk.Text); err != nil {
			return fmt.Errorf("write chunk text: %w", err)
		}
	}

	return bw.Flush()
}

// decodeArtifact reads an artifact from r. size is the total artifact byte
// length and bounds the header's claimed record count before anything is
// allocated; pass a negative size when the length is unknown.
func decodeArtifact(r io.Reader, size int64) (*artifact, error) {
	br := bufio.NewReader(r)

	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if magic != artifactMagic {
		return nil, fmt.Errorf("bad magic %q", magic[:])
	}

	var version uint16
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if version != artifactVersion {
		return nil, fmt.Errorf("unsupported artifact version %d", version)
	}

	var dimension, count uint32
	if err := binary.Read(br, binary.LittleEndian, &dimension); err != nil {
		return nil, fmt.Errorf("read dimension: %w", err)
	}
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("read count: %w", err)
	}
	if dimension == 0 || count == 0 {
		return nil, fmt.Errorf("empty index artifact (dimension %d, count %d)", dimension, count)
	}
	if dimension > maxDimension {
		return nil, fmt.Errorf("dimension %d exceeds limit %d", dimension, maxDimension)
	}
	// The vectors alone take count*dimension*4 bytes; a header claiming more
	// than the artifact holds is corrupt, and allocating for it first would
	// turn a bad file into an enormous allocation.
	if size >= 0 {
		need := artifactHeaderLen + int64(count)*int64(dimension)*4
		if need > size {
			return nil, fmt.Errorf("header claims %d records of dimension %d, needing %d bytes, but artifact has %d", count, dimension, need, size)
		}
	}

	art := &artifact{
		dimension: int(dimension),
		vectors:   make([][]float32, count),
		chunks:    make([]ingestion.Chunk, count),
	}

	for i := range art.vectors {
		vec := make([]float32, dimension)
		if err := binary.Read(br, binary.LittleEndian, vec); err != nil {
			return nil, fmt.Errorf("read vector %d: %w", i, err)
		}
		art.vectors[i] = vec
	}

	for i := range art.chunks {
		source, err := readString(br)
		if err != nil {
			return nil, fmt.Errorf("read chunk %d source: %w", i, err)
		}
		text, err := readString(br)
		if err != nil {
			return nil, fmt.Errorf("read chunk %d text: %w", i, err)
		}
		art.chunks[i] = ingestion.Chunk{Text: text, Source: source}
	}

	// Trailing bytes mean the writer and reader disagree about the format.
	if _, err := br.ReadByte(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after %d records", count)
	}

	return art, nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return "", err
	}
	if length > maxFieldLen {
		return "", fmt.Errorf("field length %d exceeds limit", length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
