// Package core holds the domain model of aidb and the Data Manager that owns it.
package core

import "fmt"

// Folder is a named grouping container for conversations.
type Folder struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	CreatedAt int64  `json:"createdAt" yaml:"createdAt"` // Unix milliseconds
}

// Conversation is one saved question/answer pair. It belongs to exactly one Folder.
// Answer is opaque to the core and may contain markup.
type Conversation struct {
	ID        string `json:"id" yaml:"id"`
	FolderID  string `json:"folderId" yaml:"folderId"`
	Question  string `json:"question" yaml:"question"`
	Answer    string `json:"answer" yaml:"answer"`
	CreatedAt int64  `json:"createdAt" yaml:"createdAt"`
	UpdatedAt int64  `json:"updatedAt" yaml:"updatedAt"`
}

// AppData is the persisted aggregate. Slices keep insertion order.
type AppData struct {
	Folders       []Folder       `json:"folders" yaml:"folders"`
	Conversations []Conversation `json:"conversations" yaml:"conversations"`
}

// DefaultAppData returns the empty dataset used for fresh installs and unreadable stores.
func DefaultAppData() AppData {
	return AppData{
		Folders:       []Folder{},
		Conversations: []Conversation{},
	}
}

// Clone returns a copy whose slices do not alias d.
func (d AppData) Clone() AppData {
	out := AppData{
		Folders:       make([]Folder, len(d.Folders)),
		Conversations: make([]Conversation, len(d.Conversations)),
	}
	copy(out.Folders, d.Folders)
	copy(out.Conversations, d.Conversations)
	return out
}

// normalize replaces nil slices so encoders emit [] instead of null.
func (d *AppData) normalize() {
	if d.Folders == nil {
		d.Folders = []Folder{}
	}
	if d.Conversations == nil {
		d.Conversations = []Conversation{}
	}
}

// EventType represents the kind of change applied to the dataset.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Entity names what an Event refers to.
type Entity string

const (
	EntityFolder       Entity = "folder"
	EntityConversation Entity = "conversation"
	// EntityStore marks changes observed on the underlying storage key itself.
	EntityStore Entity = "store"
)

// Event represents a change in the dataset or in its backing store.
type Event struct {
	Type      EventType
	Entity    Entity
	ID        string
	Timestamp int64 // Unix milliseconds
}

// String implements lifecycle.Event.
func (e Event) String() string {
	return fmt.Sprintf("%s %s %s", e.Type, e.Entity, e.ID)
}
