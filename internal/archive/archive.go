// Package archive reads the on-disk plot hierarchy
// <root>/<NETWORK>/<STATION>/<CHANNEL>/<plot>.{jpg,png}.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/psdplots/plot-catalog-service/internal/domain"
)

// errStop ends a walk early without reporting an error.
var errStop = errors.New("stop walk")

// Entry is one regular file found under a scanned node.
type Entry struct {
	FullPath string
	RelPath  string // slash-separated, relative to the archive root
	Channel  string // name of the immediate parent directory
	Name     string
}

// Archive is a plot archive rooted at a directory.
type Archive struct {
	Root string

	// MaxFiles stops a walk after this many files. Zero means unbounded.
	MaxFiles int
}

// New creates an Archive rooted at root.
func New(root string) *Archive {
	return &Archive{Root: filepath.Clean(root)}
}

// Path joins archive segments (network, station, channel) under the root.
// Segments that could escape the root are rejected.
func (a *Archive) Path(segments ...string) (string, error) {
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, a.Root)
	for _, s := range segments {
		if !domain.ValidSegment(s) {
			return "", fmt.Errorf("%w: %q", domain.ErrOutsideArchive, s)
		}
		parts = append(parts, s)
	}
	return filepath.Join(parts...), nil
}

// Contains reports whether path lies within the archive root.
func (a *Archive) Contains(path string) bool {
	rel, err := filepath.Rel(a.Root, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Walk visits every regular file below root in lexical order, calling fn for
// each. fn returns false to stop the walk. A missing or unreadable root
// yields no entries and no error; unreadable subdirectories are skipped.
func (a *Archive) Walk(ctx context.Context, root string, fn func(Entry) bool) error {
	if !a.Contains(root) {
		return fmt.Errorf("%w: %s", domain.ErrOutsideArchive, root)
	}

	visited := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return errStop
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		visited++
		if a.MaxFiles > 0 && visited > a.MaxFiles {
			return errStop
		}

		rel, err := filepath.Rel(a.Root, path)
		if err != nil {
			return nil
		}
		entry := Entry{
			FullPath: path,
			RelPath:  filepath.ToSlash(rel),
			Channel:  filepath.Base(filepath.Dir(path)),
			Name:     d.Name(),
		}
		if !fn(entry) {
			return errStop
		}
		return nil
	})
	if errors.Is(err, errStop) {
		return nil
	}
	return err
}

// Scan collects every regular file below root in lexical order.
func (a *Archive) Scan(ctx context.Context, root string) ([]Entry, error) {
	var entries []Entry
	err := a.Walk(ctx, root, func(e Entry) bool {
		entries = append(entries, e)
		return true
	})
	return entries, err
}

// ListDirs returns the sorted names of the immediate subdirectories of path.
// A missing path is reported as domain.ErrNotFound.
func (a *Archive) ListDirs(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, a.rel(path))
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", a.rel(path), err)
	}

	var dirs []string
	for _, e := range entries {
		if isDir(path, e) {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// ListPlots returns the images of one channel directory keyed by plot name.
// When several files share a name (week.jpg, week.png) the first in lexical
// order is kept. A missing path is reported as domain.ErrNotFound.
func (a *Archive) ListPlots(path string) ([]domain.PlotRef, error) {
	entries, err := os.ReadDir(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, a.rel(path))
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", a.rel(path), err)
	}

	var plots []domain.PlotRef
	seen := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() || !IsImage(e.Name()) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if seen[name] {
			continue
		}
		seen[name] = true
		plots = append(plots, domain.PlotRef{
			Name: name,
			Path: a.rel(filepath.Join(path, e.Name())),
		})
	}
	return plots, nil
}

// Exists reports whether path is an existing directory.
func (a *Archive) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (a *Archive) rel(path string) string {
	rel, err := filepath.Rel(a.Root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// isDir follows symlinks so linked station directories are listed like the
// original os.path.isdir check.
func isDir(parent string, e fs.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(parent, e.Name()))
	return err == nil && info.IsDir()
}

// IsImage reports whether name has a .jpg or .png extension, ignoring case.
func IsImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".jpg" || ext == ".png"
}
