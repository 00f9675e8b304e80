package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/HendryAvila/cca/internal/capture"
	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Capture a codebase into a context tree",
		Long: `Init explores the codebase at path (default: the current directory) with an
explorer agent, which writes EXPLORATION.md, then lets a writer agent organise
those findings into domains and topics. The project is named after the
directory.`,
		Example: `  cca init                    # Initialize current directory
  cca init /path/to/project   # Initialize specific project`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := os.Getwd()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				if path, err = filepath.Abs(args[0]); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n🚀 Initializing context capture for: %s\n\n", path)

			// Checked before the model is built so a bad path is reported
			// even when no API key is configured.
			if info, err := os.Stat(path); err != nil || !info.IsDir() {
				return initFailed(cmd, "Project path does not exist: "+path)
			}

			svc, err := a.capture()
			if err != nil {
				return err
			}
			res := svc.InitProject(cmd.Context(), path)
			if !res.Success {
				return initFailed(cmd, res.Error)
			}
			fmt.Fprintf(out, "\n✅ Project initialized successfully!\n")
			fmt.Fprintf(out, "   Project: %s\n", res.ProjectName)
			fmt.Fprintf(out, "   Memory:  %s\n\n", res.MemoryPath)
			return nil
		},
	}
}

func initFailed(cmd *cobra.Command, msg string) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "\n❌ Initialization failed: %s\n\n", msg)
	return errFailed
}

// projectFlags are the resolver hints shared by search and update.
type projectFlags struct {
	name string
	path string
	json bool
}

func (f *projectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.name, "project", "p", "", "project name (default: detected from the working directory)")
	cmd.Flags().StringVar(&f.path, "path", "", "project directory; its base name is the project name")
	cmd.Flags().BoolVar(&f.json, "json", false, "print the result as JSON")
}

func newSearchCmd(a *app) *cobra.Command {
	var flags projectFlags
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Ask the captured context a question",
		Long: `Search hands the query to a searcher agent that browses the project's context
tree and answers with a summary and references to the topics it used.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.capture()
			if err != nil {
				return err
			}
			res := svc.SearchContext(cmd.Context(), capture.SearchParams{
				Query:       strings.Join(args, " "),
				ProjectName: flags.name,
				ProjectPath: flags.path,
			})
			return report(cmd, flags.json, res, res.Success, res.Result, res.Error)
		},
	}
	flags.register(cmd)
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var flags projectFlags
	cmd := &cobra.Command{
		Use:   "update <context>",
		Short: "Fold new information or a change into the captured context",
		Long: `Update hands a description of new information or a change to an updater agent.
It reads the relevant topics (and source files, from --path or the current
directory), then updates, creates, deletes or skips topics and reports what
it did.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.capture()
			if err != nil {
				return err
			}
			res := svc.UpdateContext(cmd.Context(), capture.UpdateParams{
				Context:     strings.Join(args, " "),
				ProjectName: flags.name,
				ProjectPath: flags.path,
			})
			return report(cmd, flags.json, res, res.Success, res.Result, res.Error)
		},
	}
	flags.register(cmd)
	return cmd
}

// report prints an entrypoint result as text or JSON and turns failure
// into a non-zero exit.
func report(cmd *cobra.Command, asJSON bool, v any, ok bool, text, errMsg string) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return err
		}
		if !ok {
			return errFailed
		}
		return nil
	}
	if !ok {
		fmt.Fprintf(cmd.ErrOrStderr(), "❌ %s\n", errMsg)
		return errFailed
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
