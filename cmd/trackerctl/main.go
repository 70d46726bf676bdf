// Command trackerctl inspects a tracker snapshot from the terminal.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/fastygo/goaltracker/internal/bootstrap"
	"github.com/fastygo/goaltracker/internal/config"
	"github.com/fastygo/goaltracker/internal/store"
	"github.com/fastygo/goaltracker/pkg/logger"
)

var version = "dev"

// openFunc returns a loaded store and a release function.
type openFunc func(ctx context.Context, opts openOptions) (*store.Store, func() error, error)

type openOptions struct {
	Backend string
	Path    string
	Key     string
}

func main() {
	if err := newRootCmd(openStore).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(open openFunc) *cobra.Command {
	opts := &openOptions{}
	rootCmd := &cobra.Command{
		Use:           "trackerctl",
		Short:         "Inspect goal tracker snapshots",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "snapshot backend (bolt, redis, memory)")
	rootCmd.PersistentFlags().StringVar(&opts.Path, "path", "", "bolt file path")
	rootCmd.PersistentFlags().StringVar(&opts.Key, "key", "", "snapshot key")

	rootCmd.AddCommand(statsCmd(open, opts))
	rootCmd.AddCommand(goalsCmd(open, opts))
	rootCmd.AddCommand(timelineCmd(open, opts))
	rootCmd.AddCommand(exportCmd(open, opts))
	return rootCmd
}

// openStore loads the configured snapshot read-only. Nothing is written
// back: slot seeding is disabled and no command mutates the store.
func openStore(ctx context.Context, opts openOptions) (*store.Store, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if opts.Backend != "" {
		cfg.Snapshot.Backend = opts.Backend
	}
	if opts.Path != "" {
		cfg.Snapshot.Path = opts.Path
	}
	if opts.Key != "" {
		cfg.Snapshot.Key = opts.Key
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	cfg.Tracker.SeedTimeSlots = false

	log, err := logger.New(logger.Config{
		Level:    "error",
		Encoding: "console",
		Output:   zapcore.AddSync(os.Stderr),
	})
	if err != nil {
		return nil, nil, err
	}

	slot, err := bootstrap.OpenSlot(ctx, cfg, true)
	if err != nil {
		return nil, nil, err
	}
	s, err := bootstrap.NewStore(ctx, cfg, slot.Repo, log)
	if err != nil {
		_ = slot.Close()
		return nil, nil, fmt.Errorf("load snapshot: %w", err)
	}
	return s, slot.Close, nil
}

// withStore opens the store for the duration of fn.
func withStore(cmd *cobra.Command, open openFunc, opts *openOptions, fn func(s *store.Store) error) error {
	s, release, err := open(cmd.Context(), *opts)
	if err != nil {
		return err
	}
	defer func() {
		if release != nil {
			_ = release()
		}
	}()
	return fn(s)
}
