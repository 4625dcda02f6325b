package fs

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	textDetectionSampleSize      = 4096
	nonPrintableThresholdPercent = 30
)

// UnicodeEncoding identifies the text encoding announced by a byte order mark.
type UnicodeEncoding int

const (
	EncodingUnknown UnicodeEncoding = iota
	EncodingUTF8BOM
	EncodingUTF16LE
	EncodingUTF16BE
)

func (e UnicodeEncoding) String() string {
	switch e {
	case EncodingUTF8BOM:
		return "utf-8-bom"
	case EncodingUTF16LE:
		return "utf-16le"
	case EncodingUTF16BE:
		return "utf-16be"
	default:
		return "utf-8"
	}
}

// bomLength is the number of leading bytes the encoding's BOM occupies.
func (e UnicodeEncoding) bomLength() int {
	switch e {
	case EncodingUTF8BOM:
		return 3
	case EncodingUTF16LE, EncodingUTF16BE:
		return 2
	default:
		return 0
	}
}

var binaryExtensions = map[string]struct{}{
	".7z":    {},
	".apk":   {},
	".avi":   {},
	".bin":   {},
	".bmp":   {},
	".class": {},
	".dll":   {},
	".dylib": {},
	".exe":   {},
	".flac":  {},
	".gif":   {},
	".ico":   {},
	".iso":   {},
	".jar":   {},
	".jpeg":  {},
	".jpg":   {},
	".mkv":   {},
	".mov":   {},
	".mp3":   {},
	".mp4":   {},
	".ogg":   {},
	".otf":   {},
	".pdf":   {},
	".png":   {},
	".so":    {},
	".ttf":   {},
	".wav":   {},
	".wasm":  {},
	".woff":  {},
	".woff2": {},
	".zip":   {},
}

// IsTextFile determines if content is text or binary.
// The path (if provided) is used to short-circuit obvious binary extensions before sniffing.
func IsTextFile(path string, content []byte) bool {
	if looksBinaryByExtension(path) {
		return false
	}

	if len(content) == 0 {
		return true
	}

	sample := content
	if len(sample) > textDetectionSampleSize {
		sample = sample[:textDetectionSampleSize]
	}

	if enc := DetectUnicodeEncoding(sample); enc != EncodingUnknown {
		return true
	}

	if bytes.IndexByte(sample, 0x00) != -1 {
		return false
	}

	if utf8.Valid(sample) {
		return true
	}

	printable := 0
	nonPrintable := 0
	for _, b := range sample {
		if isCommonTextByte(b) {
			printable++
		} else {
			nonPrintable++
		}
	}

	if printable == 0 {
		return false
	}

	return nonPrintable*100/len(sample) < nonPrintableThresholdPercent
}

// LooksLikeText sniffs the head of path after undoing any compression and
// reports whether it is worth searching as text.
func LooksLikeText(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = f.Close()
	}()

	r, compression, err := decompress(f)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = r.Close()
	}()

	sample, err := io.ReadAll(io.LimitReader(r, textDetectionSampleSize))
	if err != nil {
		return false, err
	}
	if compression != CompressionNone {
		// The extension names the container, not the payload.
		path = ""
	}
	return IsTextFile(path, sample), nil
}

// ReadFileHead returns up to limit bytes from the beginning of path.
func ReadFileHead(path string, limit int64) ([]byte, error) {
	if limit <= 0 {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	return io.ReadAll(io.LimitReader(f, limit))
}

func looksBinaryByExtension(path string) bool {
	if path == "" {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := binaryExtensions[ext]
	return ok
}

func isCommonTextByte(b byte) bool {
	switch {
	case b == 0x09 || b == 0x0A || b == 0x0D:
		return true
	case b >= 0x20 && b <= 0x7E:
		return true
	case b == 0x1B:
		return true
	case b >= 0x80:
		return true
	default:
		return false
	}
}

// DetectUnicodeEncoding inspects the leading bytes of sample for a BOM.
func DetectUnicodeEncoding(sample []byte) UnicodeEncoding {
	if len(sample) >= 3 && sample[0] == 0xEF && sample[1] == 0xBB && sample[2] == 0xBF {
		return EncodingUTF8BOM
	}
	if len(sample) >= 2 {
		switch {
		case sample[0] == 0xFF && sample[1] == 0xFE:
			return EncodingUTF16LE
		case sample[0] == 0xFE && sample[1] == 0xFF:
			return EncodingUTF16BE
		}
	}
	return EncodingUnknown
}
