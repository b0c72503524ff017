package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/imgclip/internal/config/value"
	"github.com/dshills/imgclip/internal/host"
)

func newFiletypesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "filetypes [FILETYPE...]",
		Short: "List per-filetype overrides after all sources are merged",
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, r, err := ctx.load(cmd.Context(), host.Nop{}, false)
			if err != nil {
				return err
			}
			defer r.Close()
			defer stack.Close()

			base := r.Base()
			names := args
			if len(names) == 0 {
				names = base.FiletypeNames()
			}

			var rows [][]string
			for _, ft := range names {
				tree, ok := base.Filetypes[ft]
				if !ok {
					return fmt.Errorf("filetype %q has no overrides", ft)
				}
				flat := value.Flatten(tree)
				for _, key := range value.Keys(tree) {
					rows = append(rows, []string{ft, key, formatValue(flat[key])})
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"Filetype", "Option", "Value"}, rows))
			return nil
		},
	}
}
