package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Grep limits.
const (
	MaxGrepFiles      = 50
	MaxMatchesPerFile = 5
	MaxGrepResults    = 20
	// files above this size are skipped by Grep
	maxGrepFileBytes = 1 << 20
)

// Match is one matching line.
type Match struct {
	Line int
	Text string
}

// FileMatches groups the matches of one file.
type FileMatches struct {
	Path    string
	Matches []Match
}

// Grep searches files whose root-relative path matches fileGlob for the
// case-insensitive regular expression pattern. At most MaxGrepFiles
// candidate files are scanned; each reports at most MaxMatchesPerFile
// lines and at most MaxGrepResults files are returned.
func (r *Root) Grep(ctx context.Context, pattern, fileGlob string) ([]FileMatches, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPattern, err)
	}
	if fileGlob == "" {
		fileGlob = "**/*"
	}
	if !doublestar.ValidatePattern(fileGlob) {
		return nil, fmt.Errorf("%w: %s", ErrBadPattern, fileGlob)
	}

	var results []FileMatches
	scanned := 0
	walkErr := filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path != r.dir && Ignored(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel := r.Rel(path)
		if ok, _ := doublestar.Match(fileGlob, rel); !ok {
			return nil
		}
		if scanned >= MaxGrepFiles {
			return filepath.SkipAll
		}
		scanned++

		matches := grepFile(path, re)
		if len(matches) > 0 {
			results = append(results, FileMatches{Path: rel, Matches: matches})
		}
		return nil
	})
	if walkErr != nil && !errors.Is(walkErr, filepath.SkipAll) {
		return nil, walkErr
	}
	if len(results) > MaxGrepResults {
		results = results[:MaxGrepResults]
	}
	return results, nil
}

func grepFile(path string, re *regexp.Regexp) []Match {
	info, err := os.Stat(path)
	if err != nil || info.Size() > maxGrepFileBytes {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil || bytes.IndexByte(data[:min(len(data), 512)], 0) >= 0 {
		return nil
	}

	var matches []Match
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), maxGrepFileBytes)
	for line := 1; sc.Scan(); line++ {
		text := sc.Text()
		if re.MatchString(text) {
			matches = append(matches, Match{Line: line, Text: strings.TrimSpace(text)})
			if len(matches) == MaxMatchesPerFile {
				break
			}
		}
	}
	return matches
}
