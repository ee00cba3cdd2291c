package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/khoj-ai/khoj-sync/internal/client/config"
	"github.com/khoj-ai/khoj-sync/internal/utils"
	"github.com/khoj-ai/khoj-sync/internal/version"
)

var (
	red   = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green = color.New(color.FgHiGreen).SprintFunc()
	cyan  = color.New(color.FgHiCyan).SprintFunc()
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:     "khoj-sync",
	Short:   "Keep a local directory synced to a Khoj server",
	Version: version.Detailed(),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Tell me everything you do in excruciating detail")
	rootCmd.AddCommand(
		newInitCmd(),
		newSyncCmd(),
		newListCmd(),
		newVersionCmd(),
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// setupLogging fans slog out to stderr and a rotating per-directory log
// file. The file always gets debug; stderr stays quiet unless -v is set.
func setupLogging(verbose bool) {
	stderrLevel := slog.LevelWarn
	if verbose {
		stderrLevel = slog.LevelDebug
	}

	stderrHandler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      stderrLevel,
		TimeFormat: time.Kitchen,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})

	// only initialized directories get a log file
	dir, err := os.Getwd()
	if err != nil || !utils.FileExists(filepath.Join(dir, config.ConfigFileName)) {
		slog.SetDefault(slog.New(stderrHandler))
		return
	}

	fileHandler := slog.NewTextHandler(&lumberjack.Logger{
		Filename:   filepath.Join(dir, config.ClientLogFileName),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
	}, &slog.HandlerOptions{Level: slog.LevelDebug})

	slog.SetDefault(slog.New(utils.NewFanoutHandler(stderrHandler, fileHandler)))
}
