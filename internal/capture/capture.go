// Package capture runs the agent pipelines behind the three public
// operations: capturing a codebase, searching captured context and
// updating it.
//
// Entrypoints never return Go errors. Every failure is folded into the
// result's Success, Error and Err fields so each transport can report it
// in its own way.
package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/HendryAvila/cca/internal/agent"
	"github.com/HendryAvila/cca/internal/config"
	"github.com/HendryAvila/cca/internal/knowledge"
	"github.com/HendryAvila/cca/internal/resolver"
	"github.com/HendryAvila/cca/internal/source"
	"github.com/HendryAvila/cca/internal/surfaces"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Failure kinds carried in result Err fields. Resolver errors
// (resolver.ErrNoProjects, resolver.ErrAmbiguous) pass through as is.
var (
	ErrPathNotFound          = errors.New("project path not found")
	ErrExplorationIncomplete = errors.New("exploration incomplete")
	ErrEmptyInput            = errors.New("empty input")
	ErrProjectContextMissing = errors.New("project context missing")
)

// Runner executes one agent task. *agent.Runner satisfies it.
type Runner interface {
	Run(ctx context.Context, task agent.Task) (*agent.Outcome, error)
}

// Options tunes the agents a Service starts.
type Options struct {
	Limits surfaces.Limits
	Steps  config.AgentsConfig
}

// OptionsFrom derives Options from loaded configuration.
func OptionsFrom(cfg *config.Config) Options {
	return Options{
		Limits: surfaces.Limits{
			MaxReadBytes: cfg.Source.MaxReadBytes,
			PreviewChars: cfg.Source.PreviewChars,
		},
		Steps: cfg.Agents,
	}
}

// Service wires the knowledge store, the resolver and an agent runner
// into the capture, search and update flows.
type Service struct {
	store    *knowledge.Store
	resolver *resolver.Resolver
	runner   Runner
	opts     Options
	logger   *zap.Logger
	newRunID func() string
}

// New creates a Service. A nil logger disables logging.
func New(store *knowledge.Store, res *resolver.Resolver, runner Runner, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		resolver: res,
		runner:   runner,
		opts:     opts,
		logger:   logger,
		newRunID: uuid.NewString,
	}
}

// Store returns the knowledge store the service writes to.
func (s *Service) Store() *knowledge.Store { return s.store }

// runLogger names a logger for one flow and tags it with a fresh run id.
func (s *Service) runLogger(flow string) *zap.Logger {
	return s.logger.Named("capture." + flow).With(zap.String("run_id", s.newRunID()))
}

// runPhase runs one agent and logs how long it took.
func (s *Service) runPhase(ctx context.Context, log *zap.Logger, task agent.Task) (*agent.Outcome, error) {
	task.Logger = log
	log.Info("phase started", zap.String("phase", task.Name))
	start := time.Now()
	out, err := s.runner.Run(ctx, task)
	fields := []zap.Field{zap.String("phase", task.Name), zap.Duration("duration", time.Since(start))}
	if out != nil {
		fields = append(fields, zap.Int("steps", out.Steps), zap.Int("tool_calls", out.ToolCalls))
	}
	if err != nil {
		log.Error("phase failed", append(fields, zap.Error(err))...)
		return out, err
	}
	log.Info("phase completed", fields...)
	return out, nil
}

// resolve maps a resolver failure to the message callers show. suffix
// completes "Please specify projectName".
func (s *Service) resolve(req resolver.Request, suffix string) (resolver.Resolution, string, error) {
	res, err := s.resolver.Resolve(req)
	if err == nil {
		return res, "", nil
	}
	var unresolved *resolver.UnresolvedError
	if errors.As(err, &unresolved) {
		if len(unresolved.Candidates) == 0 {
			return res, "No projects have been initialized. Use init_project first.", err
		}
		return res, fmt.Sprintf("Could not determine project. Available projects: %s. Please specify projectName%s.",
			strings.Join(unresolved.Candidates, ", "), suffix), err
	}
	return res, err.Error(), err
}

// contextMissing reports a resolved project that has nothing stored.
func contextMissing(project string) (string, error) {
	return fmt.Sprintf("No context exists for project %q. Use init_project first.", project),
		fmt.Errorf("%w: %s", ErrProjectContextMissing, project)
}

// codebaseRoot binds source access to dir when it is an existing
// directory and returns nil otherwise.
func codebaseRoot(dir string) *source.Root {
	if dir == "" {
		return nil
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil
	}
	root, err := source.NewRoot(dir)
	if err != nil {
		return nil
	}
	return root
}
