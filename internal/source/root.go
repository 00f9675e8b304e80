// Package source gives the agents read-only, bounds-checked access to the
// codebase being documented.
package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
)

var (
	ErrOutOfBounds  = errors.New("path is outside the project directory")
	ErrNotFound     = errors.New("path does not exist")
	ErrIsDirectory  = errors.New("path is a directory, not a file")
	ErrNotDirectory = errors.New("path is not a directory")
	ErrFileTooLarge = errors.New("file is too large")
	ErrBadPattern   = errors.New("invalid pattern")
)

// TruncatedMarker is appended to previews cut at their character limit.
const TruncatedMarker = "\n\n... [truncated]"

// IgnorePatterns are entry names skipped by exploration listings and
// searches. Patterns are matched against a single path element.
var IgnorePatterns = []string{
	"node_modules",
	".git",
	"dist",
	"build",
	".next",
	"__pycache__",
	".venv",
	"venv",
	".idea",
	".vscode",
	"*.log",
	".DS_Store",
	"coverage",
	".nyc_output",
}

// Ignored reports whether a single path element matches IgnorePatterns.
func Ignored(name string) bool {
	for _, p := range IgnorePatterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Visible reports whether an entry should appear in a plain source
// listing: no dotfiles and no node_modules.
func Visible(name string) bool {
	return !strings.HasPrefix(name, ".") && name != "node_modules"
}

// Root is a codebase directory. All paths handed to its methods are
// resolved against it and must stay inside it, symlinks included.
type Root struct {
	dir  string
	real string
}

// NewRoot binds a Root to dir, made absolute.
func NewRoot(dir string) (*Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		real = abs
	}
	return &Root{dir: abs, real: real}, nil
}

// Dir returns the absolute root directory.
func (r *Root) Dir() string { return r.dir }

// Resolve turns a relative or absolute path into an absolute path inside
// the root. Paths escaping the root, lexically or through a symlink, fail
// with ErrOutOfBounds.
func (r *Root) Resolve(p string) (string, error) {
	full := p
	if !filepath.IsAbs(full) {
		full = filepath.Join(r.dir, p)
	}
	full = filepath.Clean(full)

	if !within(r.dir, full) {
		return "", fmt.Errorf("%w: %s", ErrOutOfBounds, p)
	}
	// Missing targets are left to the caller's not-found handling.
	if resolved, err := filepath.EvalSymlinks(full); err == nil && !within(r.real, resolved) {
		return "", fmt.Errorf("%w: %s", ErrOutOfBounds, p)
	}
	return full, nil
}

func within(dir, p string) bool {
	rel, err := filepath.Rel(dir, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Rel returns p relative to the root using forward slashes.
func (r *Root) Rel(p string) string {
	rel, err := filepath.Rel(r.dir, p)
	if err != nil {
		return p
	}
	return filepath.ToSlash(rel)
}

// ReadFile returns the file content, refusing files larger than maxBytes.
// A maxBytes of zero or less disables the cap.
func (r *Root) ReadFile(p string, maxBytes int64) (string, error) {
	full, err := r.Resolve(p)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		return "", fmt.Errorf("stat %s: %w", p, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrIsDirectory, p)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return "", &TooLargeError{Path: p, Size: info.Size(), Max: maxBytes}
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", p, err)
	}
	return string(data), nil
}

// TooLargeError reports a file over the read cap. It matches ErrFileTooLarge.
type TooLargeError struct {
	Path string
	Size int64
	Max  int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("%v: %s is %dKB, maximum is %dKB", ErrFileTooLarge, e.Path, (e.Size+512)/1024, e.Max/1024)
}

func (e *TooLargeError) Is(target error) bool { return target == ErrFileTooLarge }

// ReadPreview returns at most maxChars characters of a file followed by a
// truncation marker when the file is longer.
func (r *Root) ReadPreview(p string, maxChars int) (string, error) {
	content, err := r.ReadFile(p, 0)
	if err != nil {
		return "", err
	}
	if maxChars > 0 && utf8.RuneCountInString(content) > maxChars {
		return string([]rune(content)[:maxChars]) + TruncatedMarker, nil
	}
	return content, nil
}

// Entry is one item of a directory listing.
type Entry struct {
	Name  string
	IsDir bool
}

// List returns the immediate children of a directory accepted by keep,
// sorted by name. A nil keep accepts everything.
func (r *Root) List(p string, keep func(name string) bool) ([]Entry, error) {
	full, err := r.Resolve(p)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		if info, statErr := os.Stat(full); statErr == nil && !info.IsDir() {
			return nil, fmt.Errorf("%w: %s", ErrNotDirectory, p)
		}
		return nil, fmt.Errorf("listing %s: %w", p, err)
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if keep != nil && !keep(e.Name()) {
			continue
		}
		out = append(out, Entry{Name: e.Name(), IsDir: e.IsDir()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Node is one item of a recursive directory structure.
type Node struct {
	Name     string
	IsDir    bool
	Children []Node
}

// Tree returns the directory structure below p down to maxDepth levels,
// skipping ignored entries.
func (r *Root) Tree(p string, maxDepth int) ([]Node, error) {
	full, err := r.Resolve(p)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		return nil, fmt.Errorf("stat %s: %w", p, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, p)
	}
	return buildTree(full, maxDepth, 0)
}

func buildTree(dir string, maxDepth, depth int) ([]Node, error) {
	if depth >= maxDepth {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	nodes := make([]Node, 0, len(entries))
	for _, e := range entries {
		if Ignored(e.Name()) {
			continue
		}
		n := Node{Name: e.Name(), IsDir: e.IsDir()}
		if e.IsDir() {
			children, err := buildTree(filepath.Join(dir, e.Name()), maxDepth, depth+1)
			if err != nil {
				return nil, err
			}
			n.Children = children
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}
