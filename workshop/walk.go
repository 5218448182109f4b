package workshop

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Predicate reports whether a file path is a match.
type Predicate func(path string) bool

// NameContains matches files whose base name contains marker.
func NameContains(marker string) Predicate {
	return func(path string) bool {
		return strings.Contains(filepath.Base(path), marker)
	}
}

// HasExt matches files with the given extension, ignoring case.
func HasExt(ext string) Predicate {
	return func(path string) bool {
		return strings.EqualFold(filepath.Ext(path), ext)
	}
}

// Walker performs depth-first searches over a directory tree.
//
// Traversal uses an explicit stack of pending directories. Directories that
// cannot be read are treated as empty and reported to OnSkip. Symlinked
// directories are not followed.
type Walker struct {
	OnSkip func(dir string, err error)
}

func (w Walker) readDir(dir string) []fs.DirEntry {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if w.OnSkip != nil {
			w.OnSkip(dir, err)
		}
		return nil
	}
	return entries
}

// FindFirst returns the first file matching pred. Each directory's own files
// are checked before any of its subdirectories is entered. The returned error
// is non-nil only when ctx is done.
func (w Walker) FindFirst(ctx context.Context, startDir string, pred Predicate) (string, bool, error) {
	var found string
	err := w.walkFiles(ctx, startDir, func(path string) bool {
		if pred(path) {
			found = path
			return false
		}
		return true
	})
	if err != nil {
		return "", false, err
	}
	return found, found != "", nil
}

// FindAll returns every file matching pred in FindFirst order.
func (w Walker) FindAll(ctx context.Context, startDir string, pred Predicate) ([]string, error) {
	var matches []string
	err := w.walkFiles(ctx, startDir, func(path string) bool {
		if pred(path) {
			matches = append(matches, path)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// walkFiles calls visit for each file until visit returns false.
func (w Walker) walkFiles(ctx context.Context, startDir string, visit func(path string) bool) error {
	stack := []string{startDir}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var subdirs []string
		for _, entry := range w.readDir(dir) {
			path := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				subdirs = append(subdirs, path)
				continue
			}
			if !visit(path) {
				return nil
			}
		}
		pushReversed(&stack, subdirs)
	}
	return nil
}

// FindMatchingDirs finds directories below startDir whose name contains
// fragment and returns the immediate subdirectories of each match. Matching
// directories are not searched further.
func (w Walker) FindMatchingDirs(ctx context.Context, startDir, fragment string) ([]string, error) {
	var results []string
	stack := []string{startDir}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var subdirs []string
		for _, entry := range w.readDir(dir) {
			if !entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if !strings.Contains(entry.Name(), fragment) {
				subdirs = append(subdirs, path)
				continue
			}
			for _, child := range w.readDir(path) {
				if child.IsDir() {
					results = append(results, filepath.Join(path, child.Name()))
				}
			}
		}
		pushReversed(&stack, subdirs)
	}
	return results, nil
}

// pushReversed keeps the first subdirectory on top of the stack.
func pushReversed(stack *[]string, dirs []string) {
	for i := len(dirs) - 1; i >= 0; i-- {
		*stack = append(*stack, dirs[i])
	}
}
