package cssblocks

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/helper/iofs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/maruel/natural"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/yacobolo/cssblocks/internal/blockparser"
)

// ScanStats tracks file discovery statistics
type ScanStats struct {
	FilesDiscovered int // Total files found by glob patterns
	FilesScanned    int // Files actually checked (after filtering)
	FilesSkipped    int // Files skipped by excludes or .gitignore
}

// fileFilter decides which discovered files are checked.
type fileFilter struct {
	excludes  []string
	gitignore *ignore.GitIgnore
}

// newFileFilter compiles the exclude patterns and, when requested, the
// .gitignore at the root of fsys. A missing .gitignore is not an error.
func newFileFilter(fsys billy.Filesystem, excludes []string, useGitignore bool) (*fileFilter, error) {
	for _, pattern := range excludes {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("exclude pattern %q: %w", pattern, doublestar.ErrBadPattern)
		}
	}
	f := &fileFilter{excludes: excludes}
	if !useGitignore {
		return f, nil
	}
	data, err := util.ReadFile(fsys, ".gitignore")
	switch {
	case err == nil:
		f.gitignore = ignore.CompileIgnoreLines(strings.Split(string(data), "\n")...)
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("load .gitignore: %w", err)
	}
	return f, nil
}

// shouldSkipFile reports whether the slash separated path, relative to the
// root, is excluded.
//
// Two-layer filtering:
// 1. Exclude globs from the configuration
// 2. The root's .gitignore, when enabled
func (f *fileFilter) shouldSkipFile(rel string) bool {
	for _, pattern := range f.excludes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return f.gitignore != nil && f.gitignore.MatchesPath(rel)
}

// isBlockFile checks the file name suffix of Block and definition files.
func isBlockFile(name string) bool {
	return strings.HasSuffix(name, blockparser.BlockSuffix) ||
		strings.HasSuffix(name, blockparser.DefinitionSuffix)
}

// discoverBlockFiles expands the include globs over fsys and returns the
// Block identifiers (slash separated, relative to the root) in natural order.
func discoverBlockFiles(fsys billy.Filesystem, includes, excludes []string, useGitignore bool) ([]string, ScanStats, error) {
	var stats ScanStats
	filter, err := newFileFilter(fsys, excludes, useGitignore)
	if err != nil {
		return nil, stats, err
	}
	if len(includes) == 0 {
		includes = DefaultIncludes
	}

	globFS := iofs.New(fsys)
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range includes {
		pattern = path.Clean(filepath.ToSlash(pattern))
		matches, err := doublestar.Glob(globFS, strings.TrimPrefix(pattern, "/"), doublestar.WithFilesOnly())
		if err != nil {
			return nil, stats, fmt.Errorf("glob pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			if seen[match] || !isBlockFile(match) {
				continue
			}
			seen[match] = true
			stats.FilesDiscovered++

			if filter.shouldSkipFile(match) {
				stats.FilesSkipped++
				continue
			}
			files = append(files, match)
			stats.FilesScanned++
		}
	}

	sort.Slice(files, func(i, j int) bool { return natural.Less(files[i], files[j]) })
	return files, stats, nil
}
