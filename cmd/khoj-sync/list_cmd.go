package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/khoj-ai/khoj-sync/internal/client/syncer"
)

func newListCmd() *cobra.Command {
	var syncDir string
	var filesList string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the files that a sync would upload or delete, without syncing",
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

			state, err := syncer.OpenState(cfg.StatePath())
			if err != nil {
				return err
			}
			defer state.Close()

			catalog := syncer.NewCatalog(root, filesList)
			files, err := catalog.Files()
			if err != nil {
				return err
			}
			fmt.Printf("Found %d total files in %s\n", len(files), cyan(root))

			// no upload cap here: show everything a full sync would touch
			changes := syncer.DetectChanges(files, state, root, 0, catalog.ManifestMode())
			if len(changes.Uploads)+len(changes.Deletes) == 0 {
				fmt.Println("Everything is in sync.")
				return nil
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Path", "Size", "Modified", "Action"})
			table.SetBorder(false)
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)

			for _, rel := range changes.Uploads {
				size, modified := "?", "?"
				if info, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err == nil {
					size = humanize.Bytes(uint64(info.Size()))
					modified = humanize.Time(info.ModTime())
				}
				table.Append([]string{rel, size, modified, "upload"})
			}
			for _, rel := range changes.Deletes {
				table.Append([]string{rel, "-", "-", "delete"})
			}
			table.Render()

			fmt.Printf("Total changes: %d\n", len(changes.Uploads)+len(changes.Deletes))
			return nil
		},
	}

	cmd.Flags().SortFlags = false
	cmd.Flags().StringVar(&syncDir, "sync-dir", "", "Directory to sync (default: directory of the config file)")
	cmd.Flags().StringVar(&filesList, "files-list", "", "Path to a file containing a list of files to sync (one per line)")

	return cmd
}
