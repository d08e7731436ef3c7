package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sion-neko/AI-DB/pkg/core"
)

var (
	convQuestion string
	convAnswer   string
	convJSON     bool
	convYes      bool
)

var convCmd = &cobra.Command{
	Use:     "conv",
	Aliases: []string{"conversation", "conversations"},
	Short:   "Manage saved conversations",
}

var convAddCmd = &cobra.Command{
	Use:   "add [folder]",
	Short: "Save a question and its answer into a folder",
	Long: `Save a question and its answer into a folder (id or name).
Pass "-" to --answer to read the answer from stdin.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		answer, err := readArg(cmd.InOrStdin(), convAnswer)
		if err != nil {
			fatal("Error reading answer", err)
		}
		withSession(cmd, func(ctx context.Context, s *session) error {
			return convAdd(ctx, s.manager, cmd.OutOrStdout(), args[0], convQuestion, answer)
		})
	},
}

var convListCmd = &cobra.Command{
	Use:   "list [folder]",
	Short: "List the conversations of a folder, most recently updated first",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withSession(cmd, func(ctx context.Context, s *session) error {
			return convList(s.manager, cmd.OutOrStdout(), args[0], convJSON)
		})
	},
}

var convShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a conversation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withSession(cmd, func(ctx context.Context, s *session) error {
			return convShow(s.manager, cmd.OutOrStdout(), args[0], convJSON)
		})
	},
}

var convEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Replace the question and/or answer of a conversation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var question, answer *string
		if cmd.Flags().Changed("question") {
			question = &convQuestion
		}
		if cmd.Flags().Changed("answer") {
			a, err := readArg(cmd.InOrStdin(), convAnswer)
			if err != nil {
				fatal("Error reading answer", err)
			}
			answer = &a
		}
		withSession(cmd, func(ctx context.Context, s *session) error {
			return convEdit(ctx, s.manager, cmd.OutOrStdout(), args[0], question, answer)
		})
	},
}

var convDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withSession(cmd, func(ctx context.Context, s *session) error {
			return convDelete(ctx, s.manager, cmd.InOrStdin(), cmd.OutOrStdout(), args[0], convYes)
		})
	},
}

func init() {
	rootCmd.AddCommand(convCmd)
	convCmd.AddCommand(convAddCmd, convListCmd, convShowCmd, convEditCmd, convDeleteCmd)

	for _, c := range []*cobra.Command{convAddCmd, convEditCmd} {
		c.Flags().StringVarP(&convQuestion, "question", "q", "", "Question text")
		c.Flags().StringVarP(&convAnswer, "answer", "a", "", `Answer text ("-" reads stdin)`)
	}
	convAddCmd.MarkFlagRequired("question")
	convAddCmd.MarkFlagRequired("answer")

	convListCmd.Flags().BoolVar(&convJSON, "json", false, "Output in JSON format")
	convShowCmd.Flags().BoolVar(&convJSON, "json", false, "Output in JSON format")
	convDeleteCmd.Flags().BoolVarP(&convYes, "yes", "y", false, "Do not ask for confirmation")
}

// readArg returns v, or all of r when v is "-".
func readArg(r io.Reader, v string) (string, error) {
	if v != "-" {
		return v, nil
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func convAdd(ctx context.Context, m *core.Manager, w io.Writer, folderRef, question, answer string) error {
	f, err := resolveFolder(m, folderRef)
	if err != nil {
		return err
	}
	question, err = requireText(question, errEmptyQuestion)
	if err != nil {
		return err
	}
	answer, err = requireText(answer, errEmptyAnswer)
	if err != nil {
		return err
	}

	c, err := m.AddConversation(ctx, f.ID, question, answer)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Conversation saved to %s: %s\n", f.Name, c.ID)
	return nil
}

func convList(m *core.Manager, w io.Writer, folderRef string, asJSON bool) error {
	f, err := resolveFolder(m, folderRef)
	if err != nil {
		return err
	}
	convs := m.ConversationsByFolder(f.ID)

	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(convs)
	}
	if len(convs) == 0 {
		fmt.Fprintf(w, "No conversations in %s.\n", f.Name)
		return nil
	}
	writeConversations(w, m, convs, false)
	return nil
}

func convShow(m *core.Manager, w io.Writer, id string, asJSON bool) error {
	c, ok := m.Conversation(id)
	if !ok {
		return fmt.Errorf("%w: %s", errNoConv, id)
	}

	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(c)
	}

	fmt.Fprintf(w, "Folder:  %s\n", folderName(m, c.FolderID))
	fmt.Fprintf(w, "Created: %s\n", formatTime(c.CreatedAt))
	if c.UpdatedAt != c.CreatedAt {
		fmt.Fprintf(w, "Updated: %s\n", formatTime(c.UpdatedAt))
	}
	fmt.Fprintf(w, "\nQ: %s\n\nA: %s\n", c.Question, c.Answer)
	return nil
}

// convEdit replaces the fields that are non-nil and keeps the others.
func convEdit(ctx context.Context, m *core.Manager, w io.Writer, id string, question, answer *string) error {
	c, ok := m.Conversation(id)
	if !ok {
		return fmt.Errorf("%w: %s", errNoConv, id)
	}
	if question == nil && answer == nil {
		return fmt.Errorf("nothing to change: pass --question and/or --answer")
	}

	q, a := c.Question, c.Answer
	var err error
	if question != nil {
		if q, err = requireText(*question, errEmptyQuestion); err != nil {
			return err
		}
	}
	if answer != nil {
		if a, err = requireText(*answer, errEmptyAnswer); err != nil {
			return err
		}
	}

	if err := m.UpdateConversation(ctx, id, q, a); err != nil {
		return err
	}
	fmt.Fprintf(w, "Conversation updated: %s\n", id)
	return nil
}

func convDelete(ctx context.Context, m *core.Manager, r io.Reader, w io.Writer, id string, yes bool) error {
	c, ok := m.Conversation(id)
	if !ok {
		return fmt.Errorf("%w: %s", errNoConv, id)
	}
	if !yes && !confirm(r, w, fmt.Sprintf("Delete %q?", preview(c.Question))) {
		fmt.Fprintln(w, "Aborted.")
		return nil
	}
	if err := m.DeleteConversation(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(w, "Conversation deleted: %s\n", id)
	return nil
}
