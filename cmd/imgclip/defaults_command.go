package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/imgclip/internal/config"
	"github.com/dshills/imgclip/internal/config/loader"
)

func newDefaultsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Print the built-in configuration as TOML",
		Long: `Print the built-in configuration as TOML. The output is a valid
config file and can be used as a starting point for config.toml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return loader.EncodeTOML(cmd.OutOrStdout(), config.DefaultConfig())
		},
	}
}
