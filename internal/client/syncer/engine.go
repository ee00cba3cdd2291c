package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"time"

	"github.com/khoj-ai/khoj-sync/internal/client/config"
	"github.com/khoj-ai/khoj-sync/internal/khojapi"
)

// CycleResult reports what one sync cycle did.
type CycleResult struct {
	Uploaded int
	Deleted  int
	Failed   int
}

// Engine orchestrates one synchronization cycle: build the catalog, detect
// changes, push upload batches, push delete batches, persisting config and
// state after every exchange.
type Engine struct {
	cfg     *config.Config
	root    string
	state   *SyncState
	api     *khojapi.Client
	catalog *Catalog

	newBreaker func() *khojapi.Breaker
}

func NewEngine(cfg *config.Config, root string, state *SyncState, api *khojapi.Client, manifestPath string) *Engine {
	return &Engine{
		cfg:        cfg,
		root:       root,
		state:      state,
		api:        api,
		catalog:    NewCatalog(root, manifestPath),
		newBreaker: khojapi.NewBreaker,
	}
}

// RunCycle performs one full catalog -> detect -> upload -> delete pass.
// Recoverable batch failures are absorbed by the breaker; the returned error
// is either fatal (khojapi.ErrCircuitOpen, persistence failure) or a context
// cancellation.
func (e *Engine) RunCycle(ctx context.Context) (*CycleResult, error) {
	started := time.Now()

	files, err := e.catalog.Files()
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", e.root, err)
	}

	changes := DetectChanges(files, e.state, e.root, e.cfg.MaxUploads, e.catalog.ManifestMode())
	slog.Debug("cycle detected changes",
		"root", e.root,
		"files", len(files),
		"uploads", len(changes.Uploads),
		"deletes", len(changes.Deletes))

	// the last-sync marker and the per-file timestamps all use the cycle
	// start time, matching what the server saw at catalog time
	e.cfg.LastSync = started.Format(time.RFC3339)

	result := &CycleResult{}
	// one breaker spans both phases: an outage across the phase boundary
	// must trip once, not twice
	breaker := e.newBreaker()

	if err := e.pushUploads(ctx, changes.Uploads, breaker, started, result); err != nil {
		return result, err
	}
	if err := e.pushDeletes(ctx, changes.Deletes, breaker, result); err != nil {
		return result, err
	}

	slog.Info("cycle complete",
		"took", time.Since(started).Round(time.Millisecond),
		"uploaded", result.Uploaded,
		"deleted", result.Deleted,
		"failed", result.Failed)
	return result, nil
}

func (e *Engine) pushUploads(ctx context.Context, uploads []string, breaker *khojapi.Breaker, syncTime time.Time, result *CycleResult) error {
	for start := 0; start < len(uploads); start += e.cfg.BatchSize {
		end := min(start+e.cfg.BatchSize, len(uploads))
		batch := uploads[start:end]

		files := make([]*khojapi.File, 0, len(batch))
		for _, rel := range batch {
			files = append(files, &khojapi.File{
				Name:      path.Base(rel),
				Path:      filepath.Join(e.root, filepath.FromSlash(rel)),
				MediaType: khojapi.MediaType(rel),
			})
		}

		res, err := e.api.Push(ctx, files)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("upload batch failed", "from", start, "to", end, "error", err)
			breaker.Failure()
			result.Failed += len(batch)
		} else {
			breaker.Success()
			for i, rel := range batch {
				if res.Confirmed[files[i].Name] {
					e.state.Set(rel, syncTime)
					result.Uploaded++
					slog.Debug("uploaded", "path", rel)
				} else {
					result.Failed++
					slog.Warn("upload not confirmed by server", "path", rel)
				}
			}
		}

		if err := e.persist(); err != nil {
			return err
		}
		if err := breaker.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) pushDeletes(ctx context.Context, deletes []string, breaker *khojapi.Breaker, result *CycleResult) error {
	for start := 0; start < len(deletes); start += e.cfg.BatchSize {
		end := min(start+e.cfg.BatchSize, len(deletes))
		batch := deletes[start:end]

		files := make([]*khojapi.File, 0, len(batch))
		for _, rel := range batch {
			files = append(files, &khojapi.File{
				Name:      path.Base(rel),
				MediaType: khojapi.MediaType(rel),
			})
		}

		res, err := e.api.Push(ctx, files)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("delete batch failed", "from", start, "to", end, "error", err)
			breaker.Failure()
			result.Failed += len(batch)
		} else {
			breaker.Success()
			for i, rel := range batch {
				if res.Confirmed[files[i].Name] {
					// forget the path only once the server confirmed
					e.state.Remove(rel)
					result.Deleted++
					slog.Debug("deleted remotely", "path", rel)
				} else {
					result.Failed++
					slog.Warn("deletion not confirmed by server", "path", rel)
				}
			}
		}

		if err := e.persist(); err != nil {
			return err
		}
		if err := breaker.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) persist() error {
	if err := e.cfg.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	if err := e.state.Save(); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}
