// Command gomx evaluates, differentiates and compares mx expressions from
// the command line.
//
// Expressions are given in the JSON form of mx.ParseJSON; a bare number or
// variable name also works:
//
//	gomx eval '{"type":"add","args":["x",2]}' --bind x=3
//	gomx diff '{"type":"pow","base":"x","exp":3}' x --order 2
//	gomx equal '{"type":"mul","args":["x","x"]}' '{"type":"pow","base":"x","exp":2}'
//	gomx serve --config gomx.yaml
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gomx/internal/config"
)

var version = "dev"

var (
	configPath string
	cfg        config.Config

	rootCmd = &cobra.Command{
		Use:           "gomx",
		Short:         "Symbolic expressions: evaluate, differentiate, compare",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			var err error
			cfg, err = config.Load(configPath)
			return err
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		config.DefaultConfig().Log.NewLogger(os.Stderr).Error("gomx failed", "error", err)
		os.Exit(1)
	}
}
