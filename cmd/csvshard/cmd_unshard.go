package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carlodf/csvshard/shard"
)

func newUnshardCmd(a *app) *cobra.Command {
	var (
		union  bool
		output string
		comma  string
	)
	cmd := &cobra.Command{
		Use:   "unshard [-o OUTPUT] <filename>",
		Short: "Merge the shards of a CSV file back into one file",
		Long: `Merge every shard of <filename> (name.NNN.ext next to it) into
<filename>, or into OUTPUT when given. Shards are concatenated in ascending
shard number order under a single header.

The output is replaced only once every shard has been read.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("union-headers") {
				a.cfg.Merge.UnionHeaders = union
			}
			if cmd.Flags().Changed("comma") {
				a.cfg.CSV.Comma = comma
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			sep, _ := a.cfg.CommaRune()

			res, err := shard.Merge(cmd.Context(), args[0], shard.MergeOptions{
				Output:       output,
				Comma:        sep,
				UnionHeaders: a.cfg.Merge.UnionHeaders,
				Logger:       a.logger.Named("unshard"),
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d rows from %d shards\n", res.Output, res.Rows, len(res.Shards))
			return nil
		},
	}
	cmd.Flags().BoolVar(&union, "union-headers", false, "Merge shards whose columns differ, filling gaps with empty values")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the merged file here instead of <filename>")
	cmd.Flags().StringVar(&comma, "comma", ",", "Field delimiter")
	return cmd
}
