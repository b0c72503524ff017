package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/imgclip/internal/config"
	"github.com/dshills/imgclip/internal/config/registry"
)

func newOptionsCommand(ctx *commandContext) *cobra.Command {
	var hf hostFlags
	var argPairs []string

	cmd := &cobra.Command{
		Use:   "options",
		Short: "List every built-in option resolved for a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			callArgs, err := parseArgs(argPairs)
			if err != nil {
				return err
			}

			stack, r, err := ctx.load(cmd.Context(), hf.host(), false)
			if err != nil {
				return err
			}
			defer r.Close()
			defer stack.Close()

			reg := registry.NewWithDefaults()
			rows := make([][]string, 0, len(config.Keys))
			for _, key := range config.Keys {
				res := r.Resolve(config.Request{Key: key, Args: callArgs})
				layerName := res.Kind.String()
				if res.Pattern != "" {
					layerName += " " + res.Pattern
				}
				desc := ""
				if s := reg.Get(key); s != nil {
					desc = s.Description
				}
				rows = append(rows, []string{key, formatValue(res.Value), layerName, desc})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"Option", "Value", "Layer", "Description"}, rows))
			return nil
		},
	}

	hf.register(cmd)
	cmd.Flags().StringArrayVar(&argPairs, "arg", nil, "Argument passed to computed values")
	return cmd
}
