package main

import (
	"github.com/felixgeelhaar/mcp-go"
	mcptools "github.com/felixgeelhaar/vamphost/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI agent integration",
	Long: `Start a Model Context Protocol (MCP) server for AI agent integration.

The MCP server exposes plugin discovery and analysis to AI agents via the
Model Context Protocol.

Available tools:
  - vamp_list_plugins       List installed plugins by library
  - vamp_plugin_info        Describe one plugin
  - vamp_plugin_categories  Group plugins by category
  - vamp_search_path        Show the plugin search path
  - vamp_run                Run a plugin over a WAV file
  - vamp_status             Get version information

Examples:
  vamphost mcp                     # Start stdio MCP server
  vamphost mcp --http :8080        # Start HTTP MCP server
  vamphost mcp --config path.yaml  # Use specific config file`,
	RunE: runMCP,
}

var mcpHTTP string

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().StringVar(&mcpHTTP, "http", "", "Start HTTP server on address (e.g., :8080)")
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	// stdout carries the protocol, so logs must stay on stderr.
	host, err := loadHost(cmd)
	if err != nil {
		return err
	}

	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "vamphost",
		Version: version,
	})

	versionInfo := mcptools.VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
	}
	mcptools.RegisterAll(srv, host, versionInfo)

	if mcpHTTP != "" {
		return mcp.ServeHTTP(ctx, srv, mcpHTTP)
	}

	return mcp.ServeStdio(ctx, srv)
}
