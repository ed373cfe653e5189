package main

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	curhatserver "github.com/HendryAvila/curhat/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Long: `Serves curhat over the Model Context Protocol on stdin/stdout so an AI
host can relay conversations. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, cleanup, err := curhatserver.New(a.cfg, a.logger)
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			defer cleanup()

			a.logger.Info("serving MCP over stdio", zap.String("version", curhatserver.Version))
			// ServeStdio handles SIGINT/SIGTERM itself.
			return server.ServeStdio(s)
		},
	}
}
