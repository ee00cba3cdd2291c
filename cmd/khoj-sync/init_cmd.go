package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/khoj-ai/khoj-sync/internal/client/config"
)

func newInitCmd() *cobra.Command {
	var apiKey string
	var syncDir string

	cmd := &cobra.Command{
		Use:   "init <server>",
		Short: "Set up the current directory to sync to a Khoj server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			dir, err := os.Getwd()
			if err != nil {
				return err
			}

			cfgPath := filepath.Join(dir, config.ConfigFileName)
			if existing, err := config.Load(cfgPath); err == nil {
				fmt.Printf("%s: a valid configuration already exists\n", red("ERROR"))
				fmt.Printf("Config: %s\n", green(cfgPath))
				fmt.Printf("Server: %s\n", cyan(existing.Server))
				os.Exit(1)
			}

			cfg := &config.Config{
				Path:       cfgPath,
				Server:     args[0],
				APIKey:     apiKey,
				Frequency:  5 * time.Minute,
				MaxUploads: 10,
				BatchSize:  1,
				SyncDir:    syncDir,
				LastSync:   config.NeverSynced,
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			// an empty state artifact marks the directory as initialized
			if err := os.WriteFile(cfg.StatePath(), []byte("{}"), 0o644); err != nil {
				return fmt.Errorf("write state: %w", err)
			}

			fmt.Printf("Set up %s to sync to %s\n", cyan(dir), green(cfg.Server))
			return nil
		},
	}

	cmd.Flags().SortFlags = false
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key for authentication with the Khoj server")
	cmd.Flags().StringVar(&syncDir, "sync-dir", "", "Directory to sync (default: current directory)")

	return cmd
}
