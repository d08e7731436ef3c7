package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	aidb "github.com/sion-neko/AI-DB"
	"github.com/sion-neko/AI-DB/internal/platform"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a data directory",
	Long: `Create a .aidb data directory in the current directory (or --dir).
Commands run below this directory use it instead of ~/.aidb.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		dir := dataDir
		if dir == "" {
			cwd, err := os.Getwd()
			if err != nil {
				fatal("Failed to get CWD", err)
			}
			dir = filepath.Join(cwd, platform.RootMarker)
		}

		_, statErr := os.Stat(dir)
		existed := statErr == nil

		store, err := aidb.Init(dir,
			aidb.WithAdapter(adapter),
			aidb.WithFormat(format),
			aidb.WithLogger(slog.Default()),
		)
		if err != nil {
			fatal("Failed to initialize data directory", err)
		}
		if closer, ok := store.(interface{ Close() error }); ok {
			closer.Close()
		}

		if existed {
			fmt.Fprintln(cmd.OutOrStdout(), "Reinitialized existing aidb data directory in", dir)
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Initialized empty aidb data directory in", dir)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
