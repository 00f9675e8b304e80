// Package knowledge persists the per-project knowledge base as a plain
// directory tree of markdown files:
//
//	<base>/<project>/<domain>/<topic>.md
//	<base>/<project>/EXPLORATION.md
//
// The filesystem is the only source of truth. Nothing is cached between
// calls, so every read reflects what is on disk right now.
package knowledge

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const (
	// DirName is the directory under the user's home that holds all projects.
	DirName = ".context-capturing-agents"
	// TopicExt is the file extension of topic documents.
	TopicExt = ".md"
	// AppendSeparator joins existing and new content in append-mode updates.
	AppendSeparator = "\n\n"
)

// Topic is one knowledge document read back from disk.
type Topic struct {
	Domain  string `json:"domain" yaml:"domain"`
	Name    string `json:"topic" yaml:"topic"`
	Content string `json:"content" yaml:"content"`
	Path    string `json:"path" yaml:"path"`
}

// Domain names a domain directory and the topics currently inside it.
type Domain struct {
	Name   string   `json:"name" yaml:"name"`
	Topics []string `json:"topics" yaml:"topics"`
}

// ProjectStructure is the full domain/topic listing of one project.
type ProjectStructure struct {
	Project string   `json:"project" yaml:"project"`
	Domains []Domain `json:"domains" yaml:"domains"`
}

// Store is the filesystem-backed knowledge store rooted at a fixed base
// directory. It is safe to share; it holds no mutable state.
type Store struct {
	base   string
	logger *zap.Logger
}

// New creates a Store rooted at base. A nil logger disables logging.
func New(base string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{base: filepath.Clean(base), logger: logger}
}

// DefaultBasePath returns <home>/.context-capturing-agents.
func DefaultBasePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// BasePath returns the directory holding all projects.
func (s *Store) BasePath() string { return s.base }

// ProjectPath returns the directory of a project.
func (s *Store) ProjectPath(project string) string {
	return filepath.Join(s.base, project)
}

// DomainPath returns the directory of a domain.
func (s *Store) DomainPath(project, domain string) string {
	return filepath.Join(s.base, project, domain)
}

// TopicPath returns the file path of a topic.
func (s *Store) TopicPath(project, domain, topic string) string {
	return filepath.Join(s.base, project, domain, topic+TopicExt)
}

// ─── Existence ───────────────────────────────────────────────────────────────

// ProjectExists reports whether the project directory exists.
func (s *Store) ProjectExists(project string) bool {
	return validName(project) == nil && isDir(s.ProjectPath(project))
}

// DomainExists reports whether the domain directory exists.
func (s *Store) DomainExists(project, domain string) bool {
	return validNames(project, domain) == nil && isDir(s.DomainPath(project, domain))
}

// TopicExists reports whether the topic file exists.
func (s *Store) TopicExists(project, domain, topic string) bool {
	return validNames(project, domain, topic) == nil && isFile(s.TopicPath(project, domain, topic))
}

// ─── Writes ──────────────────────────────────────────────────────────────────

// InitProject makes sure the project directory exists and returns its path.
func (s *Store) InitProject(project string) (string, error) {
	if err := validName(project); err != nil {
		return "", err
	}
	dir := s.ProjectPath(project)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating project directory: %w", err)
	}
	return dir, nil
}

// Write stores content as the topic, creating the domain directory when
// needed and replacing any previous content. It returns the file path.
func (s *Store) Write(project, domain, topic, content string) (string, error) {
	if err := validNames(project, domain, topic); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.DomainPath(project, domain), 0o755); err != nil {
		return "", fmt.Errorf("creating domain directory: %w", err)
	}
	path := s.TopicPath(project, domain, topic)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing topic: %w", err)
	}
	s.logger.Debug("topic written", zap.String("project", project), zap.String("domain", domain), zap.String("topic", topic))
	return path, nil
}

// CreateTopic stores a new topic in an existing domain. It fails with
// ErrDomainNotFound (touching nothing) when the domain is missing and
// with ErrTopicExists (leaving the old content) when the topic is taken.
func (s *Store) CreateTopic(project, domain, topic, content string) (string, error) {
	if err := validNames(project, domain, topic); err != nil {
		return "", err
	}
	if !isDir(s.DomainPath(project, domain)) {
		return "", notFoundDomain(project, domain)
	}

	path := s.TopicPath(project, domain, topic)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", &Error{Kind: ErrTopicExists, Project: project, Domain: domain, Topic: topic}
		}
		return "", fmt.Errorf("creating topic: %w", err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("writing topic: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing topic: %w", err)
	}
	s.logger.Debug("topic created", zap.String("project", project), zap.String("domain", domain), zap.String("topic", topic))
	return path, nil
}

// UpdateTopic replaces (or, with appendMode, extends) an existing topic.
// Appended content is joined with AppendSeparator.
func (s *Store) UpdateTopic(project, domain, topic, content string, appendMode bool) (string, error) {
	if err := validNames(project, domain, topic); err != nil {
		return "", err
	}
	path := s.TopicPath(project, domain, topic)
	if !isFile(path) {
		return "", notFoundTopic(project, domain, topic)
	}

	if appendMode {
		existing, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading topic: %w", err)
		}
		content = string(existing) + AppendSeparator + content
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing topic: %w", err)
	}
	s.logger.Debug("topic updated",
		zap.String("project", project), zap.String("domain", domain),
		zap.String("topic", topic), zap.Bool("append", appendMode))
	return path, nil
}

// CreateDomain makes sure the domain directory exists. It is idempotent.
func (s *Store) CreateDomain(project, domain string) (string, error) {
	if err := validNames(project, domain); err != nil {
		return "", err
	}
	dir := s.DomainPath(project, domain)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating domain directory: %w", err)
	}
	return dir, nil
}

// CreateDomainExclusive creates a new domain and fails with
// ErrDomainExists when one by that name is already present.
func (s *Store) CreateDomainExclusive(project, domain string) (string, error) {
	if err := validNames(project, domain); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.ProjectPath(project), 0o755); err != nil {
		return "", fmt.Errorf("creating project directory: %w", err)
	}
	dir := s.DomainPath(project, domain)
	if err := os.Mkdir(dir, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", &Error{Kind: ErrDomainExists, Project: project, Domain: domain}
		}
		return "", fmt.Errorf("creating domain directory: %w", err)
	}
	return dir, nil
}

// ─── Reads ───────────────────────────────────────────────────────────────────

// ReadTopic returns the topic content. found is false when the topic
// does not exist; that case is not an error.
func (s *Store) ReadTopic(project, domain, topic string) (content string, found bool, err error) {
	if err := validNames(project, domain, topic); err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(s.TopicPath(project, domain, topic))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading topic: %w", err)
	}
	return string(data), true, nil
}

// ListTopics returns the sorted topic names of a domain. A missing
// domain yields an empty list.
func (s *Store) ListTopics(project, domain string) ([]string, error) {
	if err := validNames(project, domain); err != nil {
		return nil, err
	}
	return listTopicNames(s.DomainPath(project, domain))
}

// ReadDomain returns every topic of a domain with its content. A missing
// domain yields an empty slice.
func (s *Store) ReadDomain(project, domain string) ([]Topic, error) {
	names, err := s.ListTopics(project, domain)
	if err != nil {
		return nil, err
	}
	topics := make([]Topic, 0, len(names))
	for _, name := range names {
		path := s.TopicPath(project, domain, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading topic %s: %w", name, err)
		}
		topics = append(topics, Topic{Domain: domain, Name: name, Content: string(data), Path: path})
	}
	return topics, nil
}

// ListProjectStructure lists every domain directory of a project with its
// topics. It returns nil (not an error) when the project does not exist.
func (s *Store) ListProjectStructure(project string) (*ProjectStructure, error) {
	if err := validName(project); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.ProjectPath(project))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading project directory: %w", err)
	}

	structure := &ProjectStructure{Project: project, Domains: []Domain{}}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		topics, err := listTopicNames(filepath.Join(s.ProjectPath(project), entry.Name()))
		if err != nil {
			return nil, err
		}
		structure.Domains = append(structure.Domains, Domain{Name: entry.Name(), Topics: topics})
	}
	return structure, nil
}

// ListProjects returns the sorted names of all projects. A missing base
// directory yields an empty list.
func (s *Store) ListProjects() ([]string, error) {
	entries, err := os.ReadDir(s.base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("reading knowledge base: %w", err)
	}
	projects := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			projects = append(projects, entry.Name())
		}
	}
	sort.Strings(projects)
	return projects, nil
}

// ─── Deletes and renames ─────────────────────────────────────────────────────

// DeleteTopic removes a topic file. It reports false when there was nothing to delete.
func (s *Store) DeleteTopic(project, domain, topic string) (bool, error) {
	if err := validNames(project, domain, topic); err != nil {
		return false, err
	}
	return removeIfExists(s.TopicPath(project, domain, topic))
}

// DeleteDomain removes a domain directory with all of its topics.
func (s *Store) DeleteDomain(project, domain string) (bool, error) {
	if err := validNames(project, domain); err != nil {
		return false, err
	}
	if topics, _ := s.ListTopics(project, domain); len(topics) > 0 {
		s.logger.Warn("deleting non-empty domain",
			zap.String("project", project), zap.String("domain", domain), zap.Int("topics", len(topics)))
	}
	return removeIfExists(s.DomainPath(project, domain))
}

// DeleteProject removes a project and everything under it.
func (s *Store) DeleteProject(project string) (bool, error) {
	if err := validName(project); err != nil {
		return false, err
	}
	return removeIfExists(s.ProjectPath(project))
}

// RenameTopic moves a topic to a new name within its domain. It reports
// false when the source does not exist. An existing target is replaced.
func (s *Store) RenameTopic(project, domain, oldTopic, newTopic string) (bool, error) {
	if err := validNames(project, domain, oldTopic, newTopic); err != nil {
		return false, err
	}
	return renameIfExists(s.TopicPath(project, domain, oldTopic), s.TopicPath(project, domain, newTopic))
}

// RenameDomain moves a domain directory to a new name within its project.
func (s *Store) RenameDomain(project, oldDomain, newDomain string) (bool, error) {
	if err := validNames(project, oldDomain, newDomain); err != nil {
		return false, err
	}
	return renameIfExists(s.DomainPath(project, oldDomain), s.DomainPath(project, newDomain))
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func listTopicNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("reading domain directory: %w", err)
	}
	names := []string{}
	for _, entry := range entries {
		if !entry.Type().IsRegular() || filepath.Ext(entry.Name()) != TopicExt {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), TopicExt))
	}
	sort.Strings(names)
	return names, nil
}

func removeIfExists(path string) (bool, error) {
	if _, err := os.Lstat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", path, err)
	}
	if err := os.RemoveAll(path); err != nil {
		return false, fmt.Errorf("removing %s: %w", path, err)
	}
	return true, nil
}

func renameIfExists(from, to string) (bool, error) {
	if _, err := os.Lstat(from); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", from, err)
	}
	if err := os.Rename(from, to); err != nil {
		return false, fmt.Errorf("renaming %s: %w", from, err)
	}
	return true, nil
}

// validName rejects names that would escape their parent directory.
func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func validNames(names ...string) error {
	for _, n := range names {
		if err := validName(n); err != nil {
			return err
		}
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
