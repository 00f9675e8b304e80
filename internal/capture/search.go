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

// SearchParams is a search request. ProjectName and ProjectPath are
// optional hints for the resolver.
type SearchParams struct {
	Query       string
	ProjectName string
	ProjectPath string
}

// SearchResult is the searcher's answer.
type SearchResult struct {
	Success     bool   `json:"success"`
	ProjectName string `json:"project_name"`
	Query       string `json:"query"`
	Result      string `json:"result"`
	Error       string `json:"error,omitempty"`
	Err         error  `json:"-"`
}

// SearchContext answers a question from a project's stored context.
func (s *Service) SearchContext(ctx context.Context, p SearchParams) SearchResult {
	log := s.runLogger("search")
	log.Info("searching context", zap.String("query", p.Query), zap.String("project_name", p.ProjectName))

	result := SearchResult{Query: p.Query}
	if strings.TrimSpace(p.Query) == "" {
		log.Error("empty query provided")
		result.Error, result.Err = "Query cannot be empty", fmt.Errorf("%w: query", ErrEmptyInput)
		return result
	}

	res, msg, err := s.resolve(resolver.Request{ProjectName: p.ProjectName, ProjectPath: p.ProjectPath}, "")
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

	binding := surfaces.Binding{
		Store:   s.store,
		Project: res.Name,
		Limits:  s.opts.Limits,
		Logger:  log,
	}
	out, err := s.runPhase(ctx, log, agent.Task{
		Name:         "searcher",
		SystemPrompt: prompts.Searcher,
		Prompt:       prompts.SearcherKickoff(p.Query),
		Tools:        surfaces.Searcher(binding),
		MaxSteps:     s.opts.Steps.SearcherMaxSteps,
	})
	if err != nil {
		result.Error, result.Err = err.Error(), err
		return result
	}

	result.Success = true
	result.Result = out.Text
	if strings.TrimSpace(result.Result) == "" {
		result.Result = "No response generated from search agent."
	}
	return result
}
