// Command manage administers the catalog and accounts from the shell.
package main

import (
	"fmt"
	"os"

	"kvartal/internal/config"
	"kvartal/internal/db"
	"kvartal/internal/logger"
	"kvartal/internal/services"
	"kvartal/internal/storage"

	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "manage",
	Short:         "Kvartal management commands",
	Long:          `manage migrates the database and edits the shop catalog without the web UI.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, _, err = config.Load()
		if err != nil {
			return err
		}
		if err := logger.Initialize("warn", cfg.LogFile); err != nil {
			return err
		}
		services.Media = storage.NewImageStore(cfg.MediaDir, cfg.MaxUploadBytes)
		return db.Connect(cfg.DatabaseURL)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.Migrate(db.DB); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Database migrated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(productCmd)
	rootCmd.AddCommand(userCmd)
}

func main() {
	defer logger.Close()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
