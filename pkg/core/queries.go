package core

import (
	"sort"
	"strings"
)

// Folders returns all folders in insertion order.
func (m *Manager) Folders() []Folder {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Folder, len(m.data.Folders))
	copy(out, m.data.Folders)
	return out
}

// Conversations returns all conversations in insertion order.
func (m *Manager) Conversations() []Conversation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Conversation, len(m.data.Conversations))
	copy(out, m.data.Conversations)
	return out
}

// Folder looks up a folder by id.
func (m *Manager) Folder(id string) (Folder, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, f := range m.data.Folders {
		if f.ID == id {
			return f, true
		}
	}
	return Folder{}, false
}

// Conversation looks up a conversation by id.
func (m *Manager) Conversation(id string) (Conversation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.data.Conversations {
		if c.ID == id {
			return c, true
		}
	}
	return Conversation{}, false
}

// CountByFolder returns how many conversations are filed under folderID.
func (m *Manager) CountByFolder(folderID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, c := range m.data.Conversations {
		if c.FolderID == folderID {
			n++
		}
	}
	return n
}

// ConversationsByFolder returns the conversations of a folder, most recently updated first.
func (m *Manager) ConversationsByFolder(folderID string) []Conversation {
	return m.filter(func(c Conversation) bool {
		return c.FolderID == folderID
	})
}

// SearchConversations returns the conversations whose question or answer
// contains query, ignoring case, most recently updated first.
// An empty query matches every conversation.
func (m *Manager) SearchConversations(query string) []Conversation {
	q := strings.ToLower(query)
	return m.filter(func(c Conversation) bool {
		return strings.Contains(strings.ToLower(c.Question), q) ||
			strings.Contains(strings.ToLower(c.Answer), q)
	})
}

func (m *Manager) filter(match func(Conversation) bool) []Conversation {
	m.mu.RLock()
	result := []Conversation{}
	for _, c := range m.data.Conversations {
		if match(c) {
			result = append(result, c)
		}
	}
	m.mu.RUnlock()

	// Stable, so equal timestamps keep insertion order.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].UpdatedAt > result[j].UpdatedAt
	})
	return result
}
