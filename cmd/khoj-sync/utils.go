package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/khoj-ai/khoj-sync/internal/client/config"
)

// loadWorkingConfig loads the config artifact of the current directory.
func loadWorkingConfig() (*config.Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(filepath.Join(dir, config.ConfigFileName))
	if err != nil {
		return nil, fmt.Errorf("%w\nRegenerate with `khoj-sync init <server>`", err)
	}
	return cfg, nil
}
