package capture

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/HendryAvila/cca/internal/agent"
	"github.com/HendryAvila/cca/internal/prompts"
	"github.com/HendryAvila/cca/internal/source"
	"github.com/HendryAvila/cca/internal/surfaces"
	"go.uber.org/zap"
)

// InitResult reports a capture run.
type InitResult struct {
	Success     bool   `json:"success"`
	ProjectName string `json:"project_name"`
	MemoryPath  string `json:"memory_path"`
	Error       string `json:"error,omitempty"`
	Err         error  `json:"-"`
}

func (r InitResult) fail(err error) InitResult {
	r.Success = false
	r.Error = err.Error()
	r.Err = err
	return r
}

// InitProject captures the codebase at path: an explorer agent writes
// EXPLORATION.md, then a writer agent turns it into domains and topics.
// The project is named after the directory's base name. A re-run starts
// from a fresh exploration and leaves existing topics for the writer to
// revise.
func (s *Service) InitProject(ctx context.Context, path string) InitResult {
	log := s.runLogger("init")
	log.Info("initializing project", zap.String("path", path))

	abs, err := filepath.Abs(path)
	if err != nil {
		return InitResult{}.fail(fmt.Errorf("resolving project path: %w", err))
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			log.Error("project path does not exist", zap.String("path", abs))
			return InitResult{
				Error: "Project path does not exist: " + path,
				Err:   fmt.Errorf("%w: %s", ErrPathNotFound, path),
			}
		}
		return InitResult{}.fail(fmt.Errorf("checking project path: %w", err))
	}

	name := filepath.Base(abs)
	result := InitResult{ProjectName: name, MemoryPath: s.store.ProjectPath(name)}
	log = log.With(zap.String("project", name))
	log.Debug("paths configured",
		zap.String("memory_path", result.MemoryPath),
		zap.String("exploration_path", s.store.ExplorationPath(name)))

	// A document left by an earlier run must not pass for this run's exploration.
	removed, err := s.store.DeleteExploration(name)
	if err != nil {
		return result.fail(err)
	}
	if removed {
		log.Debug("removed previous exploration document")
	}

	root, err := source.NewRoot(abs)
	if err != nil {
		return result.fail(err)
	}
	binding := surfaces.Binding{
		Store:   s.store,
		Project: name,
		Source:  root,
		Limits:  s.opts.Limits,
		Logger:  log,
	}

	if _, err := s.runPhase(ctx, log, agent.Task{
		Name:         "explorer",
		SystemPrompt: prompts.Explorer,
		Prompt:       prompts.ExplorerKickoff(),
		Tools:        surfaces.Explorer(binding),
		MaxSteps:     s.opts.Steps.ExplorerMaxSteps,
	}); err != nil {
		return result.fail(err)
	}

	if !s.store.ExplorationExists(name) {
		log.Error("explorer agent did not create EXPLORATION.md")
		return InitResult{
			ProjectName: name,
			MemoryPath:  result.MemoryPath,
			Error:       "Explorer agent did not create EXPLORATION.md",
			Err:         ErrExplorationIncomplete,
		}
	}

	if _, err := s.runPhase(ctx, log, agent.Task{
		Name:         "writer",
		SystemPrompt: prompts.Writer,
		Prompt:       prompts.WriterKickoff(),
		Tools:        surfaces.Writer(binding),
		MaxSteps:     s.opts.Steps.WriterMaxSteps,
	}); err != nil {
		return result.fail(err)
	}

	log.Info("project initialization completed")
	result.Success = true
	return result
}
