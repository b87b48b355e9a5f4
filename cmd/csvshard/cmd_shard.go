package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/carlodf/csvshard/shard"
)

func newShardCmd(a *app) *cobra.Command {
	var (
		rows  int
		comma string
	)
	cmd := &cobra.Command{
		Use:   "shard [-n ROWS] <filename>",
		Short: "Split a CSV file into shards of at most ROWS data rows",
		Long: `Split a CSV file into shards written next to it.

Every shard repeats the header and holds at most ROWS data rows. The last
shard may hold fewer. A header-only file yields one header-only shard.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("rows") {
				a.cfg.Shard.Rows = rows
			}
			if cmd.Flags().Changed("comma") {
				a.cfg.CSV.Comma = comma
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			sep, _ := a.cfg.CommaRune()

			res, err := shard.Split(cmd.Context(), args[0], shard.WriterOptions{
				MaxRows:          a.cfg.Shard.Rows,
				Comma:            sep,
				TrimLeadingSpace: a.cfg.CSV.TrimLeadingSpace,
				Logger:           a.logger.Named("shard"),
			})
			if err != nil {
				return err
			}

			a.logger.Debug("split finished", zap.String("source", res.Source), zap.Int("shards", len(res.Shards)))
			out := cmd.OutOrStdout()
			for _, s := range res.Shards {
				fmt.Fprintf(out, "%s\t%d rows\n", s.Path, s.Rows)
			}
			fmt.Fprintf(out, "%d rows in %d shards\n", res.Rows, len(res.Shards))
			return nil
		},
	}
	cmd.Flags().IntVarP(&rows, "rows", "n", shard.DefaultMaxRows, "Maximum data rows per shard")
	cmd.Flags().StringVar(&comma, "comma", ",", "Field delimiter")
	return cmd
}
