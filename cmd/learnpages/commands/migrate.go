package commands

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/learnpages/internal/app"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbService, err := app.OpenDB(log, cfg)
			if err != nil {
				return err
			}
			defer dbService.Close()
			if err := dbService.AutoMigrateAll(); err != nil {
				return err
			}
			log.Info("schema migrated", "driver", cfg.DB.Driver)
			return nil
		},
	}
}
