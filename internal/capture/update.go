package capture

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/cca/internal/agent"
	"github.com/HendryAvila/cca/internal/prompts"
	"github.com/HendryAvila/cca/internal/resolver"
	"github.com/HendryAvila/cca/internal/surfaces"
	"go.uber.org/zap"
)

// UpdateParams is an update request. ProjectPath also tells the updater
// where to read source from; without it the working directory is used.
type UpdateParams struct {
	Context     string
	ProjectName string
	ProjectPath string
}

// UpdateResult is the updater's report of what it changed.
type UpdateResult struct {
	Success     bool   `json:"success"`
	ProjectName string `json:"project_name"`
	Context     string `json:"context"`
	Result      string `json:"result"`
	Error       string `json:"error,omitempty"`
	Err         error  `json:"-"`
}

// UpdateContext folds a description of new information or changes into
// a project's stored context.
func (s *Service) UpdateContext(ctx context.Context, p UpdateParams) UpdateResult {
	log := s.runLogger("update")
	log.Info("updating context", zap.Int("context_length", len(p.Context)), zap.String("project_name", p.ProjectName))

	result := UpdateResult{Context: p.Context}
	if strings.TrimSpace(p.Context) == "" {
		log.Error("empty context provided")
		result.Error, result.Err = "Context cannot be empty", fmt.Errorf("%w: context", ErrEmptyInput)
		return result
	}

	res, msg, err := s.resolve(resolver.Request{ProjectName: p.ProjectName, ProjectPath: p.ProjectPath}, " or projectPath")
	if err != nil {
		log.Error("could not resolve project", zap.Error(err))
		result.Error, result.Err = msg, err
		return result
	}
	result.ProjectName = res.Name
	log = log.With(zap.String("project", res.Name), zap.String("resolved_by", string(res.Source)))

	if !s.store.ProjectExists(res.Name) {
		log.Error("project context does not exist")
		result.Error, result.Err = contextMissing(res.Name)
		return result
	}

	root := codebaseRoot(res.CodebasePath)
	if root == nil {
		log.Warn("codebase not available, source tools disabled", zap.String("codebase", res.CodebasePath))
	}
	log.Debug("paths configured",
		zap.String("memory_path", s.store.ProjectPath(res.Name)),
		zap.String("codebase", res.CodebasePath))

	binding := surfaces.Binding{
		Store:   s.store,
		Project: res.Name,
		Source:  root,
		Limits:  s.opts.Limits,
		Logger:  log,
	}
	out, err := s.runPhase(ctx, log, agent.Task{
		Name:         "updater",
		SystemPrompt: prompts.Updater,
		Prompt:       prompts.UpdaterKickoff(p.Context),
		Tools:        surfaces.Updater(binding),
		MaxSteps:     s.opts.Steps.UpdaterMaxSteps,
	})
	if err != nil {
		result.Error, result.Err = err.Error(), err
		return result
	}

	result.Success = true
	result.Result = out.Text
	if strings.TrimSpace(result.Result) == "" {
		result.Result = "No response generated from update agent."
	}
	return result
}
