package syncer

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/khoj-ai/khoj-sync/internal/client/config"
)

// Changes is the work for one cycle, split into upload and delete sets of
// relative paths.
type Changes struct {
	Uploads []string
	Deletes []string
}

// DetectChanges classifies catalog paths against the recorded sync state.
//
// A file is an upload candidate when it has no confirmed sync or its
// modification time, read now, is strictly newer than the recorded one.
// Candidates past maxUploads are dropped, first-N by catalog order; pass 0
// for no cap.
//
// Delete candidates are recorded paths that left the catalog. Among those,
// entries recorded as "never" are purged from state right away without any
// network activity, since the server was never told about them. Manifest
// mode disables deletion detection entirely.
func DetectChanges(catalog []string, state *SyncState, root string, maxUploads int, manifestMode bool) *Changes {
	changes := &Changes{}

	inCatalog := make(map[string]struct{}, len(catalog))
	for _, rel := range catalog {
		inCatalog[rel] = struct{}{}

		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			slog.Warn("stat failed, skipping", "path", rel, "error", err)
			continue
		}

		lastSync, synced := state.LastSync(rel)
		if !synced || info.ModTime().After(lastSync) {
			changes.Uploads = append(changes.Uploads, rel)
		}
	}

	if maxUploads > 0 && len(changes.Uploads) > maxUploads {
		changes.Uploads = changes.Uploads[:maxUploads]
	}

	if manifestMode {
		return changes
	}

	for _, rel := range state.Paths() {
		if _, ok := inCatalog[rel]; ok {
			continue
		}
		if state.Get(rel) == config.NeverSynced {
			// Never confirmed remotely, nothing to delete there.
			state.Remove(rel)
			continue
		}
		changes.Deletes = append(changes.Deletes, rel)
	}

	return changes
}
