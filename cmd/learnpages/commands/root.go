package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/learnpages/internal/app"
	"github.com/yungbote/learnpages/internal/platform/logger"
)

var (
	configPath string
	log        *logger.Logger
	cfg        app.Config
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "learnpages",
		Short:         "Learning pages backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			boot, err := app.NewLogger()
			if err != nil {
				return err
			}
			loaded, err := app.LoadConfig(boot, configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			log = boot
			if mode := strings.TrimSpace(cfg.Log.Mode); mode != "" {
				if log, err = logger.New(mode); err != nil {
					return fmt.Errorf("init logger: %w", err)
				}
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $LEARNPAGES_CONFIG)")

	root.AddCommand(serveCmd(), migrateCmd(), seedCmd(), showCmd(), tokenCmd())
	return root
}

func Execute() error {
	root := newRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "error:", err)
		return err
	}
	return nil
}
