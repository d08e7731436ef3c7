package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	lcadapter "github.com/sion-neko/AI-DB/pkg/adapters/lifecycle"
	"github.com/sion-neko/AI-DB/pkg/core"
)

var watchCmd = &cobra.Command{
	Use:   "watch [pattern]",
	Short: "Report changes made to the data files by any process",
	Long: `Watch prints a line every time a key file in the data directory changes,
followed by the dataset counts read back from disk. The pattern uses glob
syntax and defaults to the dataset key. Only the fs adapter can be watched.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pattern := core.DefaultKey
		if len(args) == 1 {
			pattern = args[0]
		}
		codec, err := core.CodecByName(format)
		if err != nil {
			fatal("Error", err)
		}

		withSession(cmd, func(ctx context.Context, s *session) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
			defer stop()
			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl+C to stop)\n", s.dir)
			return watch(ctx, s.store, cmd.OutOrStdout(), pattern, codec)
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// watch blocks until ctx is done, printing each store change.
func watch(ctx context.Context, store core.Store, w io.Writer, pattern string, codec core.Codec) error {
	watchable, ok := store.(core.Watchable)
	if !ok {
		return fmt.Errorf("store %T does not support watching", store)
	}
	events, err := watchable.Watch(ctx, pattern)
	if err != nil {
		return err
	}

	src := lcadapter.NewSource(events, lcadapter.WithEntities(core.EntityStore))
	if err := src.Start(ctx); err != nil {
		return err
	}

	for e := range src.Events() {
		fmt.Fprintln(w, e.String())

		ev, ok := e.(core.Event)
		if !ok || ev.Type == core.EventDelete {
			continue
		}
		data := core.NewPersistence(store, core.WithKey(ev.ID), core.WithCodec(codec)).Load(ctx)
		fmt.Fprintf(w, "  folders=%d conversations=%d\n", len(data.Folders), len(data.Conversations))
	}
	return nil
}
