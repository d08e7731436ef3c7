package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the state of the data manager and its store as JSON",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withSession(cmd, func(ctx context.Context, s *session) error {
			return status(s, cmd.OutOrStdout())
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type statusReport struct {
	Dir     string `json:"dir"`
	Manager any    `json:"manager"`
	Store   any    `json:"store,omitempty"`
}

func status(s *session, w io.Writer) error {
	report := statusReport{
		Dir:     s.dir,
		Manager: s.manager.State(),
	}
	if in, ok := s.store.(introspection.Introspectable); ok {
		report.Store = in.State()
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
