package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/learnpages/internal/app"
	"github.com/yungbote/learnpages/internal/data/seed"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load a YAML fixture into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := withSignals(cmd)
			defer stop()

			dbService, err := app.OpenDB(log, cfg)
			if err != nil {
				return err
			}
			defer dbService.Close()
			if err := dbService.AutoMigrateAll(); err != nil {
				return err
			}
			summary, err := seed.LoadFile(ctx, dbService.DB(), log, args[0])
			if err != nil {
				return fmt.Errorf("seed %s: %w", args[0], err)
			}
			out, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
