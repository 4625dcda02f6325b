package fs

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// ErrOddUTF16Length reports a UTF-16 stream that ends halfway through a
	// code unit.
	ErrOddUTF16Length = errors.New("utf-16 input ends with a partial code unit")

	// ErrIsDirectory is returned when a search target names a directory.
	ErrIsDirectory = errors.New("is a directory")
)

// UnitReader exposes a text stream as UTF-16 code units. UTF-16 input with a
// BOM is passed through in its own byte order; anything else is treated as
// UTF-8 (an optional BOM is dropped) and transcoded on the fly.
type UnitReader struct {
	src         io.Reader
	order       binary.ByteOrder
	encoding    UnicodeEncoding
	compression Compression

	buf        []byte
	pending    byte
	hasPending bool

	closers []io.Closer
}

// OpenUnits opens path for unit-wise reading. The caller must Close the
// returned reader.
func OpenUnits(path string) (*UnitReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, &os.PathError{Op: "open", Path: path, Err: ErrIsDirectory}
	}

	ur, err := newUnitReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	ur.closers = append(ur.closers, f)
	return ur, nil
}

// NewUnitReader wraps r. Closing the result releases decoders but leaves r
// open.
func NewUnitReader(r io.Reader) (*UnitReader, error) {
	return newUnitReader(r)
}

func newUnitReader(r io.Reader) (*UnitReader, error) {
	payload, compression, err := decompress(r)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReaderSize(payload, textDetectionSampleSize)
	head, err := br.Peek(3)
	if err != nil && !errors.Is(err, io.EOF) {
		_ = payload.Close()
		return nil, err
	}
	encoding := DetectUnicodeEncoding(head)
	if _, err := br.Discard(encoding.bomLength()); err != nil {
		_ = payload.Close()
		return nil, err
	}

	ur := &UnitReader{
		encoding:    encoding,
		compression: compression,
		closers:     []io.Closer{payload},
	}
	switch encoding {
	case EncodingUTF16LE:
		ur.src, ur.order = br, binary.LittleEndian
	case EncodingUTF16BE:
		ur.src, ur.order = br, binary.BigEndian
	default:
		encoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
		ur.src, ur.order = transform.NewReader(br, encoder), binary.LittleEndian
	}
	return ur, nil
}

// Encoding reports the source encoding detected from the BOM.
func (u *UnitReader) Encoding() UnicodeEncoding {
	return u.encoding
}

// Compression reports the container format the input was unwrapped from.
func (u *UnitReader) Compression() Compression {
	return u.compression
}

// ReadUnits reads up to len(dst) code units into dst. It returns io.EOF once
// the input is exhausted, possibly together with a final batch of units.
func (u *UnitReader) ReadUnits(dst []uint16) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	need := 2 * len(dst)
	if cap(u.buf) < need {
		u.buf = make([]byte, need)
	}
	buf := u.buf[:need]

	start := 0
	if u.hasPending {
		buf[0] = u.pending
		start = 1
		u.hasPending = false
	}
	n, err := u.src.Read(buf[start:])
	total := start + n

	units := total / 2
	for i := 0; i < units; i++ {
		dst[i] = u.order.Uint16(buf[2*i:])
	}
	if total%2 == 1 {
		u.pending = buf[total-1]
		u.hasPending = true
	}

	if errors.Is(err, io.EOF) && u.hasPending {
		return units, fmt.Errorf("%w (encoding %s)", ErrOddUTF16Length, u.encoding)
	}
	return units, err
}

// Close releases decoders and, for OpenUnits, the file handle.
func (u *UnitReader) Close() error {
	var errs []error
	for _, c := range u.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	u.closers = nil
	return errors.Join(errs...)
}
