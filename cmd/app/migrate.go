package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker-api/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the tasks schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, _ := zap.NewProduction()
		defer logger.Sync()

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		// openStore уже применяет схему
		_, closeStore, err := openStore(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		closeStore()

		logger.Info("Schema is up to date", zap.String("store", cfg.Store))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
