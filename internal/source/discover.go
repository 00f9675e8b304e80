package source

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// AgentContextPatterns locate instruction files that AI coding assistants
// keep in a repository.
var AgentContextPatterns = []string{
	"CLAUDE.md",
	".claude/CLAUDE.md",
	"AGENTS.md",
	"agents.md",
	"GEMINI.md",
	".cursorrules",
	".cursor/rules/**/*",
	".windsurfrules",
	".github/copilot-instructions.md",
}

// KeyFilePatterns locate manifests and readmes worth reading first.
var KeyFilePatterns = []string{
	"README.md",
	"README.rst",
	"readme.md",
	"package.json",
	"pyproject.toml",
	"Cargo.toml",
	"go.mod",
	"pom.xml",
	"build.gradle",
	"tsconfig.json",
	"webpack.config.js",
	"vite.config.ts",
	"docker-compose.yml",
	"Dockerfile",
	".env.example",
	"Makefile",
}

// Document is a discovered file and its content.
type Document struct {
	Path    string
	Content string
}

// AgentContext reads every existing assistant instruction file. Each
// document is cut to maxChars characters when maxChars > 0.
func (r *Root) AgentContext(maxChars int) ([]Document, error) {
	paths, err := r.glob(AgentContextPatterns)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(paths))
	for _, p := range paths {
		content, err := r.ReadPreview(p, maxChars)
		if err != nil {
			continue
		}
		docs = append(docs, Document{Path: p, Content: content})
	}
	return docs, nil
}

// KeyFiles returns the root-relative paths of well-known project files
// that exist.
func (r *Root) KeyFiles() ([]string, error) {
	return r.glob(KeyFilePatterns)
}

func (r *Root) glob(patterns []string) ([]string, error) {
	fsys := os.DirFS(r.dir)
	seen := map[string]bool{}
	var out []string
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("globbing %s: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || containsIgnored(m) {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

func containsIgnored(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if Ignored(part) {
			return true
		}
	}
	return false
}
