// Package search locates every occurrence of a pattern in a text stream
// without loading the stream into memory.
//
// Text is scanned as UTF-16 code units in fixed-size blocks. Each block is
// matched with the Z-function over pattern + separator + block, and the last
// len(pattern)-1 units of every block are carried into the next one so an
// occurrence that straddles a block boundary is seen exactly once. Offsets are
// reported in Unicode code points, so a surrogate pair counts as a single
// position.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf16"

	fsutil "github.com/kk-code-lab/rfind/internal/fs"
)

// Options tunes a search. The zero value is ready to use.
type Options struct {
	// BlockSize is the number of code units read per block. Zero selects
	// DefaultBlockSize.
	BlockSize int
	// MaxMatches stops the scan after that many matches. Zero means no limit.
	MaxMatches int
}

// Find returns the code-point offsets of every occurrence of pattern in the
// file at path, in increasing order.
func Find(path, pattern string) ([]int64, error) {
	return FindWithOptions(context.Background(), path, pattern, Options{})
}

// FindWithOptions is Find with cancellation and tuning. On error no offsets
// are returned.
func FindWithOptions(ctx context.Context, path, pattern string, opts Options) ([]int64, error) {
	units, err := validatePattern(pattern)
	if err != nil {
		return nil, err
	}
	if err := validateFile(path); err != nil {
		return nil, err
	}

	r, err := fsutil.OpenUnits(path)
	if err != nil {
		return nil, classifyOpenError(err)
	}
	defer func() {
		_ = r.Close()
	}()

	scanDebugf("find path=%q encoding=%s compression=%s pattern_units=%d",
		path, r.Encoding(), r.Compression(), len(units))

	offsets, err := collect(ctx, r, units, opts)
	if err != nil {
		return nil, wrapScanError(path, err)
	}
	return offsets, nil
}

// FindReader searches an already open stream. r is sniffed for compression
// and a BOM the same way files are; it is not closed.
func FindReader(ctx context.Context, r io.Reader, pattern string, opts Options) ([]int64, error) {
	units, err := validatePattern(pattern)
	if err != nil {
		return nil, err
	}

	ur, err := fsutil.NewUnitReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer func() {
		_ = ur.Close()
	}()

	offsets, err := collect(ctx, ur, units, opts)
	if err != nil {
		return nil, wrapScanError("", err)
	}
	return offsets, nil
}

func collect(ctx context.Context, src UnitSource, pattern []uint16, opts Options) ([]int64, error) {
	offsets := []int64{}
	scanner := NewScanner(src, pattern, opts.BlockSize)
	err := scanner.Scan(ctx, func(offset int64) bool {
		offsets = append(offsets, offset)
		return opts.MaxMatches <= 0 || len(offsets) < opts.MaxMatches
	})
	if err != nil {
		return nil, err
	}
	return offsets, nil
}

func validatePattern(pattern string) ([]uint16, error) {
	if pattern == "" {
		return nil, ErrEmptyPattern
	}
	return utf16.Encode([]rune(pattern)), nil
}

func validateFile(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrFileNotFound)
	}
	info, err := os.Stat(path)
	if err != nil {
		return classifyOpenError(err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s: %w", ErrRead, path, fsutil.ErrIsDirectory)
	}
	return nil
}

// classifyOpenError maps an open or stat failure onto the package sentinels.
// The *PathError it wraps already names the file.
func classifyOpenError(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrFileNotFound, err)
	}
	return fmt.Errorf("%w: %w", ErrRead, err)
}

func wrapScanError(path string, err error) error {
	if errors.Is(err, ErrCanceled) {
		return err
	}
	if path == "" {
		return fmt.Errorf("%w: %w", ErrRead, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrRead, path, err)
}
