// Package cmd provides the facturo CLI commands.
package cmd

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/facturo/facturo/internal/config"
	"github.com/facturo/facturo/internal/store"
)

var debug bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "facturo",
	Short: "Manage clients, projects and invoices",
	Long: `facturo is a local-first invoice manager. State always lives in a
local SQLite store; when REMOTE_DSN is set it is also mirrored to a
durable Postgres store. If the remote becomes unreachable the session
continues on the local store alone.

Example:
  facturo list
  facturo export backup.json
  facturo render 2026-014 -o invoice.pdf`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(renderCmd)
}

// openStore builds the configured store and loads its initial state.
func openStore(ctx context.Context) (*store.Store, *config.Config, error) {
	cfg := config.Load()
	local, err := store.OpenLocal(cfg.LocalPath)
	if err != nil {
		return nil, nil, err
	}
	opts := store.Options{
		Local:         local,
		RemoteTimeout: time.Duration(cfg.RemoteTimeoutSeconds) * time.Second,
	}
	if cfg.RemoteDSN != "" {
		db, err := store.OpenPostgres(cfg.RemoteDSN, debug)
		if err != nil {
			// First remote failure of the session: continue local-only.
			slog.Warn("remote store unreachable at startup; using local store only", "err", err)
		} else {
			opts.Remote = store.NewGormRemote(db, cfg.MaxPayloadBytes, cfg.MaxBatchRecords)
		}
	}
	s := store.New(opts)
	if err := s.Bootstrap(ctx); err != nil {
		return nil, nil, err
	}
	return s, cfg, nil
}
