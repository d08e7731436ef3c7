package main

import (
	"context"
	"encoding/json"
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/sion-neko/AI-DB/pkg/core"
)

var (
	folderJSON bool
	folderYes  bool
)

var folderCmd = &cobra.Command{
	Use:     "folder",
	Aliases: []string{"folders"},
	Short:   "Manage folders",
}

var folderAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withSession(cmd, func(ctx context.Context, s *session) error {
			return folderAdd(ctx, s.manager, cmd.OutOrStdout(), args[0])
		})
	},
}

var folderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List folders with their conversation counts",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withSession(cmd, func(ctx context.Context, s *session) error {
			return folderList(s.manager, cmd.OutOrStdout(), folderJSON)
		})
	},
}

var folderRenameCmd = &cobra.Command{
	Use:   "rename [folder] [new-name]",
	Short: "Rename a folder",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		withSession(cmd, func(ctx context.Context, s *session) error {
			return folderRename(ctx, s.manager, cmd.OutOrStdout(), args[0], args[1])
		})
	},
}

var folderDeleteCmd = &cobra.Command{
	Use:   "delete [folder]",
	Short: "Delete a folder and every conversation in it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withSession(cmd, func(ctx context.Context, s *session) error {
			return folderDelete(ctx, s.manager, cmd.InOrStdin(), cmd.OutOrStdout(), args[0], folderYes)
		})
	},
}

func init() {
	rootCmd.AddCommand(folderCmd)
	folderCmd.AddCommand(folderAddCmd, folderListCmd, folderRenameCmd, folderDeleteCmd)
	folderListCmd.Flags().BoolVar(&folderJSON, "json", false, "Output in JSON format")
	folderDeleteCmd.Flags().BoolVarP(&folderYes, "yes", "y", false, "Do not ask for confirmation")
}

func folderAdd(ctx context.Context, m *core.Manager, w io.Writer, name string) error {
	name, err := requireText(name, errEmptyName)
	if err != nil {
		return err
	}
	f, err := m.AddFolder(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Folder created: %s (%s)\n", f.Name, f.ID)
	return nil
}

type folderSummary struct {
	core.Folder
	Conversations int `json:"conversations"`
}

func folderList(m *core.Manager, w io.Writer, asJSON bool) error {
	folders := m.Folders()
	summaries := make([]folderSummary, 0, len(folders))
	for _, f := range folders {
		summaries = append(summaries, folderSummary{Folder: f, Conversations: m.CountByFolder(f.ID)})
	}
	// Newest first.
	slices.SortStableFunc(summaries, func(a, b folderSummary) int {
		return cmp.Compare(b.CreatedAt, a.CreatedAt)
	})

	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summaries)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(w, "No folders yet. Create one with: aidb folder add <name>")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(w, "%s  %s (%d)\n", s.ID, s.Name, s.Conversations)
	}
	return nil
}

func folderRename(ctx context.Context, m *core.Manager, w io.Writer, ref, name string) error {
	f, err := resolveFolder(m, ref)
	if err != nil {
		return err
	}
	name, err = requireText(name, errEmptyName)
	if err != nil {
		return err
	}
	if err := m.UpdateFolder(ctx, f.ID, name); err != nil {
		return err
	}
	fmt.Fprintf(w, "Folder renamed: %s -> %s\n", f.Name, name)
	return nil
}

func folderDelete(ctx context.Context, m *core.Manager, r io.Reader, w io.Writer, ref string, yes bool) error {
	f, err := resolveFolder(m, ref)
	if err != nil {
		return err
	}

	if !yes {
		prompt := fmt.Sprintf("Delete folder %q?", f.Name)
		if n := m.CountByFolder(f.ID); n > 0 {
			prompt = fmt.Sprintf("Delete folder %q and its %d conversation(s)?", f.Name, n)
		}
		if !confirm(r, w, prompt) {
			fmt.Fprintln(w, "Aborted.")
			return nil
		}
	}

	if err := m.DeleteFolder(ctx, f.ID); err != nil {
		return err
	}
	fmt.Fprintf(w, "Folder deleted: %s\n", f.Name)
	return nil
}
