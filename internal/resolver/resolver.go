// Package resolver decides which stored project a search or update
// request refers to when the caller did not say so explicitly.
package resolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Sentinels matched by *UnresolvedError.
var (
	ErrNoProjects = errors.New("no projects have been initialized")
	ErrAmbiguous  = errors.New("could not determine project")
)

// Source records which rule produced a resolution.
type Source string

const (
	SourceExplicit    Source = "explicit"
	SourcePath        Source = "path"
	SourceWorkingDir  Source = "working-dir"
	SourceSoleProject Source = "sole-project"
)

// ProjectLister is the slice of the knowledge store the resolver needs.
type ProjectLister interface {
	ListProjects() ([]string, error)
}

// Request carries the optional hints supplied by the caller.
type Request struct {
	ProjectName string
	ProjectPath string
}

// Resolution is a resolved project name plus the codebase path the
// update flow should read source from.
type Resolution struct {
	Name         string
	Source       Source
	CodebasePath string
}

// UnresolvedError is returned when no rule identifies a project.
type UnresolvedError struct {
	Candidates []string
}

func (e *UnresolvedError) Error() string {
	if len(e.Candidates) == 0 {
		return ErrNoProjects.Error()
	}
	return fmt.Sprintf("%v; available projects: %s", ErrAmbiguous, strings.Join(e.Candidates, ", "))
}

// Is lets errors.Is tell an empty store from an ambiguous one.
func (e *UnresolvedError) Is(target error) bool {
	if len(e.Candidates) == 0 {
		return target == ErrNoProjects
	}
	return target == ErrAmbiguous
}

// Resolver applies the resolution rules in order.
type Resolver struct {
	projects ProjectLister
	getwd    func() (string, error)
}

// New creates a Resolver backed by the given project listing.
func New(projects ProjectLister) *Resolver {
	return &Resolver{projects: projects, getwd: os.Getwd}
}

// WithWorkingDir overrides the working-directory lookup (used by tests
// and by callers that run on behalf of another directory).
func (r *Resolver) WithWorkingDir(getwd func() (string, error)) *Resolver {
	r.getwd = getwd
	return r
}

// Resolve picks the project in this order:
//
//  1. the explicit name, unchecked;
//  2. the base name of the explicit path;
//  3. the working directory's base name, if such a project exists;
//  4. the only project, if exactly one exists.
//
// Anything else is an *UnresolvedError listing the candidates.
func (r *Resolver) Resolve(req Request) (Resolution, error) {
	cwd, cwdErr := r.getwd()

	codebase := cwd
	if req.ProjectPath != "" {
		abs, err := filepath.Abs(req.ProjectPath)
		if err != nil {
			return Resolution{}, fmt.Errorf("resolving project path: %w", err)
		}
		codebase = abs
	}

	if req.ProjectName != "" {
		return Resolution{Name: req.ProjectName, Source: SourceExplicit, CodebasePath: codebase}, nil
	}
	if req.ProjectPath != "" {
		return Resolution{Name: filepath.Base(codebase), Source: SourcePath, CodebasePath: codebase}, nil
	}

	projects, err := r.projects.ListProjects()
	if err != nil {
		return Resolution{}, fmt.Errorf("listing projects: %w", err)
	}

	if cwdErr == nil {
		if name := filepath.Base(cwd); slices.Contains(projects, name) {
			return Resolution{Name: name, Source: SourceWorkingDir, CodebasePath: codebase}, nil
		}
	}
	if len(projects) == 1 {
		return Resolution{Name: projects[0], Source: SourceSoleProject, CodebasePath: codebase}, nil
	}
	return Resolution{}, &UnresolvedError{Candidates: projects}
}
