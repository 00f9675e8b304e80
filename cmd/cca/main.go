// cca: context capturing agents.
//
// Captures a codebase into a knowledge tree of domains and topics, then
// answers questions from it and keeps it current. The same operations are
// served to AI coding tools over MCP.
//
// Usage:
//
//	cca init [path]          # Capture a codebase (default: current directory)
//	cca search <query>       # Ask the captured context a question
//	cca update <context>     # Fold a change into the captured context
//	cca serve                # Start MCP server (stdio transport)
//	cca projects             # List captured projects
//	cca tree [project]       # Show a project's domains and topics
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/HendryAvila/cca/internal/agent"
	"github.com/HendryAvila/cca/internal/capture"
	"github.com/HendryAvila/cca/internal/config"
	"github.com/HendryAvila/cca/internal/knowledge"
	"github.com/HendryAvila/cca/internal/logging"
	ccaserver "github.com/HendryAvila/cca/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries what PersistentPreRunE loads for the subcommands.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger

	// newModel is swapped out by tests.
	newModel func(config.LLMConfig) (agent.Model, error)
}

func newApp() *app {
	return &app{newModel: agent.NewModel}
}

// newRootCmd builds the command tree.
func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "cca",
		Short: "Capture and query the knowledge of a codebase",
		Long: `cca explores a codebase with an AI agent and writes what it learns to a tree of
markdown topics grouped by domain. Later you can search that tree in plain
language or describe changes so an agent updates it.

The tree lives under ~/.context-capturing-agents/<project>/ unless base_dir
is configured. The same operations are available to AI coding tools through
"cca serve" (MCP over stdio).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "",
		"config file (default: $XDG_CONFIG_HOME/cca/config.yaml or ~/.config/cca/config.yaml)")

	root.AddCommand(
		newInitCmd(a),
		newSearchCmd(a),
		newUpdateCmd(a),
		newServeCmd(a),
		newProjectsCmd(a),
		newTreeCmd(a),
		newDeleteCmd(a),
		newRenameCmd(a),
		newVersionCmd(),
	)
	return root
}

// load reads .env, the configuration and builds the logger.
func (a *app) load() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	a.cfg, a.logger = cfg, logger
	return nil
}

func (a *app) store() *knowledge.Store {
	return ccaserver.NewStore(a.cfg, a.logger)
}

// capture builds the capture service with the configured model.
func (a *app) capture() (*capture.Service, error) {
	model, err := a.newModel(a.cfg.LLM)
	if err != nil {
		return nil, err
	}
	return ccaserver.NewCapture(a.cfg, model, a.logger), nil
}

// errFailed marks a failure already reported to the user.
var errFailed = errors.New("failed")

func main() {
	a := newApp()
	err := newRootCmd(a).Execute()
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
