package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sion-neko/AI-DB/pkg/core"
)

var searchJSON bool

var searchCmd = &cobra.Command{
	Use:   "search [words...]",
	Short: "Find conversations whose question or answer contains the text",
	Long: `Search is case-insensitive and matches the words as one phrase against
both the question and the answer. Without words nothing is listed.`,
	Run: func(cmd *cobra.Command, args []string) {
		withSession(cmd, func(ctx context.Context, s *session) error {
			return search(s.manager, cmd.OutOrStdout(), strings.Join(args, " "), searchJSON)
		})
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output in JSON format")
}

func search(m *core.Manager, w io.Writer, query string, asJSON bool) error {
	query = strings.TrimSpace(query)
	hits := []core.Conversation{}
	if query != "" {
		hits = m.SearchConversations(query)
	}

	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(hits)
	}
	if query == "" {
		fmt.Fprintln(w, "Type a word to search questions and answers: aidb search <words>")
		return nil
	}
	if len(hits) == 0 {
		fmt.Fprintf(w, "No conversations match %q.\n", query)
		return nil
	}
	writeConversations(w, m, hits, true)
	return nil
}
