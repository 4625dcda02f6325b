package fs

import (
	iofs "io/fs"
	"os"
	"path/filepath"
)

// Entry is a file to search. Err is set when a directory could not be read
// during a recursive walk.
type Entry struct {
	Name     string
	FullPath string
	Err      error
}

// WalkOptions controls which files ExpandTargets yields.
type WalkOptions struct {
	Recursive     bool
	IncludeHidden bool
}

// ExpandTargets turns the command-line targets into files to search.
// Plain files are passed through untouched, even when hidden. Directories
// are descended into only when Recursive is set; otherwise they are yielded
// as-is so the search reports them. Within a directory, entries are visited
// in lexical order and symlinks are not followed.
func ExpandTargets(targets []string, opts WalkOptions, fn func(Entry) error) error {
	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil || !info.IsDir() || !opts.Recursive {
			if err := fn(Entry{Name: filepath.Base(target), FullPath: target}); err != nil {
				return err
			}
			continue
		}
		if err := walkDir(target, opts, fn); err != nil {
			return err
		}
	}
	return nil
}

func walkDir(root string, opts WalkOptions, fn func(Entry) error) error {
	return filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return fn(Entry{Name: filepath.Base(path), FullPath: path, Err: err})
		}
		if path != root && shouldSkip(path, d.Name(), opts) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return fn(Entry{Name: d.Name(), FullPath: path})
	})
}

func shouldSkip(path, name string, opts WalkOptions) bool {
	if ShouldHideFromListing(path, name) {
		return true
	}
	return !opts.IncludeHidden && IsHidden(path, name)
}
