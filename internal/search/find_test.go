package search

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/encoding/unicode"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func encodeUTF16(t *testing.T, text string, endian unicode.Endianness) []byte {
	t.Helper()
	encoded, err := unicode.UTF16(endian, unicode.UseBOM).NewEncoder().Bytes([]byte(text))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return encoded
}

func TestFindExamples(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		pattern string
		want    []int64
	}{
		{"exact", "hello world hello", "hello", []int64{0, 12}},
		{"overlapping", "aaaa", "aa", []int64{0, 1, 2}},
		{"no match", "hello world", "xyz", []int64{}},
		{"empty file", "", "anything", []int64{}},
		{"unicode", "Hello 😀 World 😀 Test", "😀", []int64{6, 14}},
		{"multibyte bmp", "zażółć gęślą jaźń", "gęślą", []int64{7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "input.txt", []byte(tt.text))
			got, err := Find(path, tt.pattern)
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			if got == nil {
				t.Fatalf("Find returned nil slice on success")
			}
			if !slices.Equal(got, tt.want) {
				t.Fatalf("Find = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindValidation(t *testing.T) {
	existing := writeFile(t, "input.txt", []byte("abc"))

	if _, err := Find(existing, ""); !errors.Is(err, ErrEmptyPattern) {
		t.Fatalf("empty pattern error = %v, want ErrEmptyPattern", err)
	}

	missing := filepath.Join(t.TempDir(), "missing.txt")
	got, err := Find(missing, "abc")
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("missing file error = %v, want ErrFileNotFound", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file error should wrap os.ErrNotExist: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no offsets on error, got %v", got)
	}

	if _, err := Find("", "abc"); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("empty path error = %v, want ErrFileNotFound", err)
	}

	if _, err := Find(t.TempDir(), "abc"); !errors.Is(err, ErrRead) {
		t.Fatalf("directory error = %v, want ErrRead", err)
	}
}

func TestFindPatternCheckedBeforeFile(t *testing.T) {
	_, err := Find(filepath.Join(t.TempDir(), "missing.txt"), "")
	if !errors.Is(err, ErrEmptyPattern) {
		t.Fatalf("error = %v, want ErrEmptyPattern", err)
	}
}

func TestFindAcrossDefaultBlockBoundary(t *testing.T) {
	// The pattern starts one unit before the first block edge.
	filler := strings.Repeat("x", DefaultBlockSize-1)
	path := writeFile(t, "big.txt", []byte(filler+"needle"+filler))
	got, err := Find(path, "needle")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if want := []int64{DefaultBlockSize - 1}; !slices.Equal(got, want) {
		t.Fatalf("Find = %v, want %v", got, want)
	}
}

func TestFindAcrossBlockBoundaryAfterSurrogates(t *testing.T) {
	// One emoji takes two units, so the unit offset of the match is one more
	// than its code-point offset.
	filler := "😀" + strings.Repeat("x", DefaultBlockSize-3)
	path := writeFile(t, "big.txt", []byte(filler+"needle"))
	got, err := Find(path, "needle")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if want := []int64{DefaultBlockSize - 2}; !slices.Equal(got, want) {
		t.Fatalf("Find = %v, want %v", got, want)
	}
}

func TestFindSplitSurrogateAtBlockEdge(t *testing.T) {
	text := strings.Repeat("x", DefaultBlockSize-1) + "😀tail😀"
	path := writeFile(t, "big.txt", []byte(text))
	got, err := Find(path, "😀")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	want := []int64{DefaultBlockSize - 1, DefaultBlockSize + 4}
	if !slices.Equal(got, want) {
		t.Fatalf("Find = %v, want %v", got, want)
	}
}

func TestFindSmallBlocksMatchNaive(t *testing.T) {
	text := strings.Repeat("ab😀c", 40) + "abab😀ab"
	path := writeFile(t, "input.txt", []byte(text))
	for _, pattern := range []string{"ab", "😀c", "cab", "b😀cab"} {
		want := naiveFind(text, pattern)
		for _, block := range []int{1, 2, 3, 5, 8, 64} {
			got, err := FindWithOptions(context.Background(), path, pattern, Options{BlockSize: block})
			if err != nil {
				t.Fatalf("FindWithOptions: %v", err)
			}
			if !slices.Equal(got, want) {
				t.Fatalf("pattern=%q block=%d offsets = %v, want %v", pattern, block, got, want)
			}
		}
	}
}

func TestFindIdempotent(t *testing.T) {
	path := writeFile(t, "input.txt", []byte(strings.Repeat("abc😀", 1000)))
	first, err := FindWithOptions(context.Background(), path, "c😀a", Options{BlockSize: 97})
	if err != nil {
		t.Fatalf("first Find: %v", err)
	}
	second, err := FindWithOptions(context.Background(), path, "c😀a", Options{BlockSize: 97})
	if err != nil {
		t.Fatalf("second Find: %v", err)
	}
	if !slices.Equal(first, second) {
		t.Fatalf("results differ between runs: %v vs %v", first, second)
	}
	if len(first) != 999 {
		t.Fatalf("expected 999 matches, got %d", len(first))
	}
}

func TestFindEncodings(t *testing.T) {
	text := "Hello 😀 World 😀 Test"
	want := []int64{6, 14}

	files := map[string][]byte{
		"utf8.txt":    []byte(text),
		"utf8bom.txt": append([]byte{0xEF, 0xBB, 0xBF}, text...),
		"utf16le.txt": encodeUTF16(t, text, unicode.LittleEndian),
		"utf16be.txt": encodeUTF16(t, text, unicode.BigEndian),
	}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, name, content)
			got, err := Find(path, "😀")
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			if !slices.Equal(got, want) {
				t.Fatalf("Find = %v, want %v", got, want)
			}
		})
	}
}

func TestFindOddUTF16Length(t *testing.T) {
	content := append(encodeUTF16(t, "abc", unicode.LittleEndian), 'x')
	path := writeFile(t, "odd.txt", content)
	got, err := Find(path, "b")
	if !errors.Is(err, ErrRead) {
		t.Fatalf("error = %v, want ErrRead", err)
	}
	if got != nil {
		t.Fatalf("expected no partial results, got %v", got)
	}
}

func TestFindCompressed(t *testing.T) {
	text := strings.Repeat("lorem ipsum 😀 ", 200) + "needle"
	want := naiveFind(text, "needle")

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	if _, err := zw.Write([]byte(text)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	zst := enc.EncodeAll([]byte(text), nil)
	_ = enc.Close()

	for name, content := range map[string][]byte{"input.txt.gz": gz.Bytes(), "input.txt.zst": zst} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, name, content)
			got, err := FindWithOptions(context.Background(), path, "needle", Options{BlockSize: 64})
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			if !slices.Equal(got, want) {
				t.Fatalf("Find = %v, want %v", got, want)
			}
		})
	}
}

func TestFindMaxMatches(t *testing.T) {
	path := writeFile(t, "input.txt", []byte(strings.Repeat("a", 50)))
	got, err := FindWithOptions(context.Background(), path, "a", Options{BlockSize: 7, MaxMatches: 10})
	if err != nil {
		t.Fatalf("FindWithOptions: %v", err)
	}
	if len(got) != 10 || got[9] != 9 {
		t.Fatalf("FindWithOptions = %v, want first ten offsets", got)
	}
}

func TestFindCanceled(t *testing.T) {
	path := writeFile(t, "input.txt", []byte("abc"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := FindWithOptions(ctx, path, "a", Options{})
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("error = %v, want ErrCanceled", err)
	}
	if got != nil {
		t.Fatalf("expected no offsets, got %v", got)
	}
}

func TestFindReader(t *testing.T) {
	r := bytes.NewReader(encodeUTF16(t, "one two one", unicode.BigEndian))
	got, err := FindReader(context.Background(), r, "one", Options{})
	if err != nil {
		t.Fatalf("FindReader: %v", err)
	}
	if want := []int64{0, 8}; !slices.Equal(got, want) {
		t.Fatalf("FindReader = %v, want %v", got, want)
	}

	if _, err := FindReader(context.Background(), strings.NewReader("x"), "", Options{}); !errors.Is(err, ErrEmptyPattern) {
		t.Fatalf("FindReader empty pattern error = %v", err)
	}
}

func TestErrorsDistinct(t *testing.T) {
	errs := []error{ErrEmptyPattern, ErrFileNotFound, ErrRead, ErrCanceled}
	for i, a := range errs {
		for j, b := range errs {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
}
