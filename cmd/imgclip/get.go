package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/imgclip/internal/config"
)

func newGetCommand(ctx *commandContext) *cobra.Command {
	var hf hostFlags
	var argPairs []string
	var explain bool

	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Print the effective value of an option",
		Long: `Print the effective value of an option for the given file.

Strings are printed as is, tables as JSON. With --explain every layer
that defines the option is listed, highest precedence first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
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

			out := cmd.OutOrStdout()

			if explain {
				results := r.Explain(key, nil, callArgs)
				if len(results) == 0 {
					return fmt.Errorf("%s: %w", key, config.ErrSettingNotFound)
				}
				rows := make([][]string, 0, len(results))
				for _, res := range results {
					rows = append(rows, []string{res.Kind.String(), res.Pattern, formatValue(res.Value)})
				}
				fmt.Fprintln(out, renderTable(out, []string{"Layer", "Pattern", "Value"}, rows))
				return nil
			}

			res := r.Resolve(config.Request{Key: key, Args: callArgs})
			if !res.Found {
				return fmt.Errorf("%s: %w", key, config.ErrSettingNotFound)
			}
			if s, ok := res.Value.(string); ok {
				fmt.Fprintln(out, s)
				return nil
			}
			fmt.Fprintln(out, formatValue(res.Value))
			return nil
		},
	}

	hf.register(cmd)
	cmd.Flags().StringArrayVar(&argPairs, "arg", nil, "Argument passed to computed values, e.g. --arg source=drop")
	cmd.Flags().BoolVar(&explain, "explain", false, "List every layer defining the option")
	return cmd
}
