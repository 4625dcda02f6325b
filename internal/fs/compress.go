package fs

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression identifies a container format recognised by its magic bytes.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	default:
		return "none"
	}
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// DetectCompression reports the container format sample starts with.
func DetectCompression(sample []byte) Compression {
	switch {
	case bytes.HasPrefix(sample, zstdMagic):
		return CompressionZstd
	case bytes.HasPrefix(sample, gzipMagic):
		return CompressionGzip
	default:
		return CompressionNone
	}
}

// readCloser pairs a decoding reader with the release of its decoder.
type readCloser struct {
	io.Reader
	close func() error
}

func (rc readCloser) Close() error {
	if rc.close == nil {
		return nil
	}
	return rc.close()
}

// decompress sniffs r and returns a reader over the decompressed payload.
// Closing the result releases the decoder but not r.
func decompress(r io.Reader) (io.ReadCloser, Compression, error) {
	br := bufio.NewReaderSize(r, textDetectionSampleSize)
	// A short peek just means a small input; it cannot carry a magic number.
	head, _ := br.Peek(len(zstdMagic))

	switch kind := DetectCompression(head); kind {
	case CompressionGzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, kind, fmt.Errorf("gzip: %w", err)
		}
		return readCloser{Reader: zr, close: zr.Close}, kind, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, kind, fmt.Errorf("zstd: %w", err)
		}
		return readCloser{Reader: dec, close: func() error {
			dec.Close()
			return nil
		}}, kind, nil
	default:
		return readCloser{Reader: br}, CompressionNone, nil
	}
}
