package main

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newWordsCmd(a *app) *cobra.Command {
	var userOnly bool
	cmd := &cobra.Command{
		Use:   "words [FILE...]",
		Short: "List the dictionary",
		Long: `Words lists the dictionary in lookup order, newest first. Any files given
are run first, with their output discarded, so that their definitions are
listed too.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd.Context())
			defer cancel()
			vm, err := a.runFiles(ctx, io.Discard, args)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"XT", "Name", "Kind", "Flags"})
			for _, w := range vm.Words() {
				if userOnly && w.Builtin {
					continue
				}
				var flags []string
				if w.Immediate {
					flags = append(flags, "immediate")
				}
				if w.Hidden {
					flags = append(flags, "hidden")
				}
				t.AppendRow(table.Row{w.XT, w.Name, w.Kind, strings.Join(flags, ",")})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().BoolVarP(&userOnly, "user", "u", false, "list only user definitions")
	return cmd
}
