package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	fsutil "github.com/kk-code-lab/rfind/internal/fs"
	"github.com/kk-code-lab/rfind/internal/search"
	textutil "github.com/kk-code-lab/rfind/internal/textutil"
	"golang.org/x/term"
)

const (
	exitMatch   = 0
	exitNoMatch = 1
	exitError   = 2

	fallbackTerminalWidth = 80
)

func printHelp(w io.Writer) {
	fmt.Fprint(w, `rfind - Streaming substring locator

USAGE:
    rfind [OPTIONS] PATTERN FILE...

A FILE of - reads standard input. Use -- before a PATTERN that starts with -.

Prints the code-point offset of every occurrence of PATTERN in each FILE.
UTF-8, UTF-16 (with BOM), gzip and zstd inputs are recognised automatically.

OPTIONS:
    -h, --help              Show this help message and exit
    -c, --count             Print only the number of matches per file
    -j, --json              Print one JSON object per file
    -m, --max-count N       Stop reading a file after N matches
    -b, --block-size N      Read N UTF-16 code units per block (default 1048576)
    -r, --recursive         Search every regular file below directory arguments
        --hidden            Include hidden files and directories when recursing
        --binary            Search files that look binary instead of skipping them
`)
}

type config struct {
	help      bool
	count     bool
	json      bool
	binary    bool
	recursive bool
	hidden    bool
	maxCount  int
	blockSize int
	pattern   string
	files     []string
}

var errUsage = errors.New("usage: rfind [OPTIONS] PATTERN FILE...")

func parseArgs(args []string) (config, error) {
	var cfg config
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if len(positional) > 0 || arg == "-" || !strings.HasPrefix(arg, "-") {
			positional = append(positional, arg)
			continue
		}

		name, value, hasValue := strings.Cut(arg, "=")
		takeValue := func() (int, error) {
			if !hasValue {
				if i+1 >= len(args) {
					return 0, fmt.Errorf("option %s requires a value", name)
				}
				i++
				value = args[i]
			}
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return 0, fmt.Errorf("option %s expects a non-negative integer, got %q", name, value)
			}
			return n, nil
		}

		var err error
		switch name {
		case "--":
			positional = append(positional, args[i+1:]...)
			i = len(args)
		case "-h", "--help":
			cfg.help = true
		case "-c", "--count":
			cfg.count = true
		case "-j", "--json":
			cfg.json = true
		case "--binary":
			cfg.binary = true
		case "-r", "--recursive":
			cfg.recursive = true
		case "--hidden":
			cfg.hidden = true
		case "-m", "--max-count":
			cfg.maxCount, err = takeValue()
		case "-b", "--block-size":
			cfg.blockSize, err = takeValue()
		default:
			err = fmt.Errorf("unknown option %s", arg)
		}
		if err != nil {
			return cfg, err
		}
	}

	if cfg.help {
		return cfg, nil
	}
	if len(positional) < 2 {
		return cfg, errUsage
	}
	cfg.pattern = positional[0]
	cfg.files = positional[1:]
	return cfg, nil
}

type fileReport struct {
	File    string  `json:"file"`
	Pattern string  `json:"pattern"`
	Count   int     `json:"count"`
	Offsets []int64 `json:"offsets"`
}

// printer renders results. On a terminal, file names are sanitized and kept
// within the screen width.
type printer struct {
	w         io.Writer
	tty       bool
	width     int
	withNames bool
}

func newPrinter(w io.Writer, withNames bool) *printer {
	p := &printer{w: w, withNames: withNames}
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p
	}
	p.tty = true
	p.width = fallbackTerminalWidth
	if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
		p.width = width
	}
	return p
}

func (p *printer) name(file, suffix string) string {
	if !p.tty {
		return file
	}
	room := p.width - textutil.DisplayWidth(suffix)
	return textutil.TruncateLeft(textutil.SanitizeTerminalText(file), room)
}

func (p *printer) line(file string, value int64) {
	v := strconv.FormatInt(value, 10)
	if !p.withNames {
		fmt.Fprintln(p.w, v)
		return
	}
	fmt.Fprintf(p.w, "%s:%s\n", p.name(file, ":"+v), v)
}

const stdinName = "(standard input)"

var errSkipped = errors.New("skipped")

// searchOne runs a single search. "-" reads stdin; files that look binary
// are reported and skipped unless --binary was given.
func searchOne(ctx context.Context, file string, cfg config, opts search.Options, stdin io.Reader, stderr io.Writer) ([]int64, error) {
	if file == "-" {
		return search.FindReader(ctx, stdin, cfg.pattern, opts)
	}
	if !cfg.binary {
		if text, err := fsutil.LooksLikeText(file); err == nil && !text {
			fmt.Fprintf(stderr, "rfind: %s: binary file skipped\n", textutil.SanitizeTerminalText(file))
			return nil, errSkipped
		}
	}
	return search.FindWithOptions(ctx, file, cfg.pattern, opts)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "rfind: %v\n", err)
		if errors.Is(err, errUsage) {
			fmt.Fprintln(stderr, "Try 'rfind --help' for more information.")
		}
		return exitError
	}
	if cfg.help {
		printHelp(stdout)
		return exitMatch
	}

	opts := search.Options{BlockSize: cfg.blockSize, MaxMatches: cfg.maxCount}
	out := newPrinter(stdout, len(cfg.files) > 1 || cfg.recursive)
	enc := json.NewEncoder(stdout)

	status := exitNoMatch
	failed := false
	walkOpts := fsutil.WalkOptions{Recursive: cfg.recursive, IncludeHidden: cfg.hidden}
	walkErr := fsutil.ExpandTargets(cfg.files, walkOpts, func(entry fsutil.Entry) error {
		file := entry.FullPath
		display := file
		if file == "-" {
			display = stdinName
		}
		if entry.Err != nil {
			fmt.Fprintf(stderr, "rfind: %s: %v\n", textutil.SanitizeTerminalText(display), entry.Err)
			failed = true
			return nil
		}

		offsets, err := searchOne(ctx, file, cfg, opts, stdin, stderr)
		if errors.Is(err, errSkipped) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(stderr, "rfind: %s: %v\n", textutil.SanitizeTerminalText(display), err)
			failed = true
			if errors.Is(err, search.ErrCanceled) || errors.Is(err, search.ErrEmptyPattern) {
				return err
			}
			return nil
		}
		if len(offsets) > 0 {
			status = exitMatch
		}

		switch {
		case cfg.json:
			report := fileReport{File: display, Pattern: cfg.pattern, Count: len(offsets), Offsets: offsets}
			if err := enc.Encode(report); err != nil {
				return err
			}
		case cfg.count:
			out.line(display, int64(len(offsets)))
		default:
			for _, offset := range offsets {
				out.line(display, offset)
			}
		}
		return nil
	})
	if walkErr != nil && !failed {
		fmt.Fprintf(stderr, "rfind: %v\n", walkErr)
		return exitError
	}

	if failed {
		return exitError
	}
	return status
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
