package search

import (
	"context"
	"errors"
	"fmt"
	"io"
)

const (
	// DefaultBlockSize is the number of UTF-16 code units read per block.
	DefaultBlockSize = 1 << 20

	// Separator sits between the pattern and the block in the buffer handed
	// to the Z-function. Only positions after it are inspected for matches.
	Separator uint16 = 0x0000

	maxEmptyReads = 100
)

// UnitSource yields UTF-16 code units. It follows io.Reader conventions: a
// short read is not an error and io.EOF marks the end of input.
type UnitSource interface {
	ReadUnits(dst []uint16) (int, error)
}

// Scanner walks a UnitSource block by block and reports the code-point offset
// of every occurrence of a pattern. Memory use is bounded by the block size
// plus twice the pattern length.
type Scanner struct {
	src       UnitSource
	pattern   []uint16
	blockSize int

	read     []uint16
	overlap  []uint16
	combined []uint16
	z        []int
	cpMap    []int

	// globalOffset counts code points consumed so far, excluding overlap.
	globalOffset int64
	blocks       int
}

// NewScanner prepares a scan of src for pattern. A non-positive blockSize
// selects DefaultBlockSize.
func NewScanner(src UnitSource, pattern []uint16, blockSize int) *Scanner {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	keep := max(len(pattern)-1, 0)
	return &Scanner{
		src:       src,
		pattern:   pattern,
		blockSize: blockSize,
		read:      make([]uint16, blockSize),
		overlap:   make([]uint16, 0, keep),
		combined:  make([]uint16, 0, len(pattern)+1+keep+blockSize),
	}
}

// Scan reads the source to the end and calls fn with each match offset in
// increasing order. Returning false from fn stops the scan without error.
// The context is checked before every block.
func (s *Scanner) Scan(ctx context.Context, fn func(offset int64) bool) error {
	m := len(s.pattern)
	if m == 0 {
		return ErrEmptyPattern
	}
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrCanceled, err)
		}

		n, eof, err := s.fill()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		fresh := s.read[:n]

		combined := append(s.combined[:0], s.pattern...)
		combined = append(combined, Separator)
		combined = append(combined, s.overlap...)
		combined = append(combined, fresh...)
		s.combined = combined

		head := m + 1
		block := combined[head:]
		blockStart := s.globalOffset - CodepointCount(s.overlap)

		s.z = zFunctionInto(s.z, combined)
		var cp []int
		if hasSurrogates(block) {
			s.cpMap = codepointMap(s.cpMap, block)
			cp = s.cpMap
		}

		found := 0
		stopped := false
		for i := head; i+m <= len(combined); i++ {
			if s.z[i] < m {
				continue
			}
			at := i - head
			if cp != nil {
				at = cp[at]
			}
			found++
			if !fn(blockStart + int64(at)) {
				stopped = true
				break
			}
		}

		s.blocks++
		scanDebugf("block=%d read=%d overlap=%d start=%d matches=%d surrogates=%t",
			s.blocks, n, len(s.overlap), blockStart, found, cp != nil)

		if stopped {
			return nil
		}

		s.globalOffset += CodepointCount(fresh)
		keep := min(len(block), m-1)
		s.overlap = append(s.overlap[:0], block[len(block)-keep:]...)

		if eof {
			return nil
		}
	}
}

// fill reads until the block buffer is full or the source is exhausted, so
// block boundaries depend only on the block size.
func (s *Scanner) fill() (n int, eof bool, err error) {
	empty := 0
	for n < len(s.read) {
		k, rerr := s.src.ReadUnits(s.read[n:])
		n += k
		if errors.Is(rerr, io.EOF) {
			return n, true, nil
		}
		if rerr != nil {
			return 0, false, rerr
		}
		if k > 0 {
			empty = 0
			continue
		}
		empty++
		if empty >= maxEmptyReads {
			return 0, false, io.ErrNoProgress
		}
	}
	return n, false, nil
}
