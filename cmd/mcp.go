package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/nhanvu/docchat/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing document search and question-answering tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		svc, docs, cleanup, err := buildService(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		// Stdout carries MCP protocol messages; logging goes to stderr.
		mcpserver.Version = Version
		fmt.Fprintf(os.Stderr, "docchat MCP server started on stdio (data=%s)\n", cfg.DataDir)

		srv := mcpserver.NewServer(svc, docs)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
