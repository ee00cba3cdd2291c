package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/khoj-ai/khoj-sync/internal/client/syncer"
	"github.com/khoj-ai/khoj-sync/internal/khojapi"
)

func newSyncCmd() *cobra.Command {
	var once bool
	var syncDir string
	var filesList string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync new, changed and deleted files to the Khoj server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := loadWorkingConfig()
			if err != nil {
				return err
			}

			root, err := cfg.SyncRoot(syncDir)
			if err != nil {
				return err
			}
			slog.Debug("using sync directory", "path", root)

			state, err := syncer.OpenState(cfg.StatePath())
			if err != nil {
				return err
			}
			defer state.Close()

			api := khojapi.New(cfg.Server, cfg.APIKey)
			engine := syncer.NewEngine(cfg, root, state, api, filesList)

			if once {
				res, err := engine.RunCycle(cmd.Context())
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				}
				fmt.Printf("Uploaded %s, deleted %s, failed %s\n",
					green(res.Uploaded), green(res.Deleted), red(res.Failed))
				return nil
			}

			err = syncer.NewScheduler(engine, cfg.Frequency).Run(cmd.Context())
			if errors.Is(err, context.Canceled) {
				slog.Info("Bye!")
				return nil
			}
			return err
		},
	}

	cmd.Flags().SortFlags = false
	cmd.Flags().BoolVar(&once, "once", false, "Run sync only once, then exit (don't continuously sync)")
	cmd.Flags().StringVar(&syncDir, "sync-dir", "", "Directory to sync (default: directory of the config file)")
	cmd.Flags().StringVar(&filesList, "files-list", "", "Path to a file containing a list of files to sync (one per line)")

	return cmd
}
