package knowledge

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ExplorationFile is the exploration document written at the project root.
// Its presence marks a completed exploration phase.
const ExplorationFile = "EXPLORATION.md"

// ExplorationPath returns the path of a project's exploration document.
func (s *Store) ExplorationPath(project string) string {
	return filepath.Join(s.ProjectPath(project), ExplorationFile)
}

// ExplorationExists reports whether the project has an exploration document.
func (s *Store) ExplorationExists(project string) bool {
	return validName(project) == nil && isFile(s.ExplorationPath(project))
}

// WriteExploration creates or replaces the exploration document.
func (s *Store) WriteExploration(project, content string) (string, error) {
	dir, err := s.InitProject(project)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, ExplorationFile)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing exploration: %w", err)
	}
	return path, nil
}

// UpdateExploration replaces an existing exploration document and fails
// with ErrExplorationNotFound when there is none yet.
func (s *Store) UpdateExploration(project, content string) (string, error) {
	if !s.ExplorationExists(project) {
		return "", &Error{Kind: ErrExplorationNotFound, Project: project}
	}
	path := s.ExplorationPath(project)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing exploration: %w", err)
	}
	return path, nil
}

// ReadExploration returns the exploration document; found is false when
// it does not exist.
func (s *Store) ReadExploration(project string) (content string, found bool, err error) {
	if err := validName(project); err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(s.ExplorationPath(project))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading exploration: %w", err)
	}
	return string(data), true, nil
}

// DeleteExploration removes the exploration document. It reports false
// when there was none.
func (s *Store) DeleteExploration(project string) (bool, error) {
	if err := validName(project); err != nil {
		return false, err
	}
	return removeIfExists(s.ExplorationPath(project))
}
