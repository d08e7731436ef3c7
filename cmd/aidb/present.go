package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sion-neko/AI-DB/pkg/core"
)

const (
	timeLayout     = "2006-01-02 15:04"
	previewRunes   = 60
	untitledFolder = "(deleted folder)"
)

var (
	errEmptyName     = errors.New("folder name must not be empty")
	errEmptyQuestion = errors.New("question must not be empty")
	errEmptyAnswer   = errors.New("answer must not be empty")
	errNoFolder      = errors.New("no such folder")
	errNoConv        = errors.New("no such conversation")
	errAmbiguous     = errors.New("ambiguous folder name, use the id")
	errNotSaved      = errors.New("changes were not saved")
)

// requireText trims s and rejects blank input.
func requireText(s string, empty error) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", empty
	}
	return s, nil
}

// resolveFolder accepts a folder id or an exact, unique folder name.
func resolveFolder(m *core.Manager, ref string) (core.Folder, error) {
	ref = strings.TrimSpace(ref)
	if f, ok := m.Folder(ref); ok {
		return f, nil
	}
	var found []core.Folder
	for _, f := range m.Folders() {
		if f.Name == ref {
			found = append(found, f)
		}
	}
	switch len(found) {
	case 0:
		return core.Folder{}, fmt.Errorf("%w: %s", errNoFolder, ref)
	case 1:
		return found[0], nil
	default:
		return core.Folder{}, fmt.Errorf("%w: %s", errAmbiguous, ref)
	}
}

func formatTime(ms int64) string {
	return time.UnixMilli(ms).Local().Format(timeLayout)
}

// preview flattens s to one line of at most previewRunes runes.
func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= previewRunes {
		return s
	}
	r := []rune(s)
	return string(r[:previewRunes-1]) + "…"
}

func folderName(m *core.Manager, id string) string {
	if f, ok := m.Folder(id); ok {
		return f.Name
	}
	return untitledFolder
}

// writeConversations prints one line per conversation, most recent first as given.
func writeConversations(w io.Writer, m *core.Manager, convs []core.Conversation, withFolder bool) {
	for _, c := range convs {
		if withFolder {
			fmt.Fprintf(w, "%s  %s  [%s] %s\n", c.ID, formatTime(c.UpdatedAt), folderName(m, c.FolderID), preview(c.Question))
			continue
		}
		fmt.Fprintf(w, "%s  %s  %s\n", c.ID, formatTime(c.UpdatedAt), preview(c.Question))
	}
}

// confirm asks a yes/no question on w and reads the answer from r.
func confirm(r io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
