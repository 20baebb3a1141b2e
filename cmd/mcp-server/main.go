// cmd/mcp-server/main.go — Standalone HTTP MCP server for gomx
//
// Exposes the mx tools as an HTTP endpoint for AI agent frameworks.
//
// Usage:
//
//	go run ./cmd/mcp-server --config gomx.yaml --addr :8080
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
// Metrics endpoint:   GET  /metrics
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gomx/internal/config"
	"github.com/njchilds90/gomx/internal/server"
)

var version = "dev"

var (
	configPath string
	addr       string

	rootCmd = &cobra.Command{
		Use:           "mcp-server",
		Short:         "Serve the gomx tools over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
)

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides the config")
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	logger := cfg.Log.NewLogger(os.Stdout)
	return server.Serve(cmd.Context(), cfg, logger, version)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		config.DefaultConfig().Log.NewLogger(os.Stderr).Error("mcp-server failed", "error", err)
		os.Exit(1)
	}
}
