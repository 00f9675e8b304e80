package main

import (
	"fmt"

	ccaserver "github.com/HendryAvila/cca/internal/server"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Long: `Serve exposes init_project, search_context, update_context and list_projects
to an MCP host over stdio. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.capture()
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			s := ccaserver.New(svc, a.logger)

			a.logger.Info("starting MCP server",
				zap.String("version", ccaserver.Version),
				zap.String("base_dir", a.cfg.BaseDir))
			if err := server.ServeStdio(s); err != nil {
				a.logger.Error("server stopped", zap.Error(err))
				return err
			}
			return nil
		},
	}
}
