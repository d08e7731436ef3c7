package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	aidb "github.com/sion-neko/AI-DB"
	"github.com/sion-neko/AI-DB/internal/platform"
	"github.com/sion-neko/AI-DB/pkg/core"
)

var (
	verbose bool
	dataDir string
	adapter string
	format  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "aidb",
	Short: "Save and organize questions and answers from AI assistants",
	Long: `aidb keeps the answers you got from AI assistants in folders on your machine.
Conversations can be listed per folder, edited and searched by any word in the
question or the answer.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "dir", "", "Data directory (default: nearest .aidb above the working directory, then ~/.aidb)")
	rootCmd.PersistentFlags().StringVar(&adapter, "adapter", "fs", "Storage adapter: fs or sqlite")
	rootCmd.PersistentFlags().StringVar(&format, "format", "json", "Dataset encoding for the fs adapter: json or yaml")
}

// session bundles the manager with the store it runs on.
type session struct {
	dir     string
	store   core.Store
	manager *core.Manager
}

func (s *session) Close() error {
	return s.manager.Close()
}

// openSession resolves the data directory, opens the store and waits for the
// dataset to load.
func openSession(ctx context.Context, opts ...aidb.Option) (*session, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	dir, err := platform.DataDir(dataDir, wd)
	if err != nil {
		return nil, fmt.Errorf("resolve data directory: %w", err)
	}

	base := []aidb.Option{
		aidb.WithAdapter(adapter),
		aidb.WithFormat(format),
		aidb.WithLogger(slog.Default()),
	}
	opts = append(base, opts...)

	store, err := aidb.Init(dir, opts...)
	if err != nil {
		return nil, err
	}
	m, err := aidb.New(ctx, dir, append(opts, aidb.WithStore(store))...)
	if err != nil {
		return nil, err
	}
	if err := m.WaitReady(ctx); err != nil {
		m.Close()
		return nil, err
	}
	slog.Debug("dataset loaded", "dir", dir, "adapter", adapter, "folders", len(m.Folders()))
	return &session{dir: dir, store: store, manager: m}, nil
}

// withSession runs fn against an open session and exits on failure.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error, opts ...aidb.Option) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(ctx, opts...)
	if err != nil {
		fatal("Error opening data directory", err)
	}
	err = s.run(ctx, fn)
	if cerr := s.Close(); cerr != nil {
		slog.Warn("failed to close store", "error", cerr)
	}
	if err != nil {
		fatal("Error", err)
	}
}

// run executes fn and fails when the manager still holds changes its last
// write could not persist. The process exits right after, so those changes
// would be lost.
func (s *session) run(ctx context.Context, fn func(ctx context.Context, s *session) error) error {
	if err := fn(ctx, s); err != nil {
		return err
	}
	if st := s.manager.Status(); st.Dirty {
		return fmt.Errorf("%w: %v", errNotSaved, st.LastSaveError)
	}
	return nil
}
