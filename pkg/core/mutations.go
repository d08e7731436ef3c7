package core

import "context"

// AddFolder creates a folder named name. The name is stored as given.
func (m *Manager) AddFolder(ctx context.Context, name string) (Folder, error) {
	var created Folder
	err := m.submit(ctx, &mutation{
		name: "add_folder",
		apply: func(data *AppData, now int64) ([]Event, error) {
			created = Folder{
				ID:        m.ids.NewID(),
				Name:      name,
				CreatedAt: now,
			}
			data.Folders = append(data.Folders, created)
			return []Event{{Type: EventCreate, Entity: EntityFolder, ID: created.ID, Timestamp: now}}, nil
		},
	})
	if err != nil {
		return Folder{}, err
	}
	return created, nil
}

// UpdateFolder renames the folder with the given id. Unknown ids are ignored.
func (m *Manager) UpdateFolder(ctx context.Context, id, name string) error {
	return m.submit(ctx, &mutation{
		name: "update_folder",
		apply: func(data *AppData, now int64) ([]Event, error) {
			for i := range data.Folders {
				if data.Folders[i].ID == id {
					data.Folders[i].Name = name
					return []Event{{Type: EventModify, Entity: EntityFolder, ID: id, Timestamp: now}}, nil
				}
			}
			return nil, nil
		},
	})
}

// DeleteFolder removes the folder and every conversation filed under it.
// Both removals are persisted by the same write.
func (m *Manager) DeleteFolder(ctx context.Context, id string) error {
	return m.submit(ctx, &mutation{
		name: "delete_folder",
		apply: func(data *AppData, now int64) ([]Event, error) {
			var events []Event

			folders := make([]Folder, 0, len(data.Folders))
			for _, f := range data.Folders {
				if f.ID == id {
					events = append(events, Event{Type: EventDelete, Entity: EntityFolder, ID: id, Timestamp: now})
					continue
				}
				folders = append(folders, f)
			}

			conversations := make([]Conversation, 0, len(data.Conversations))
			for _, c := range data.Conversations {
				if c.FolderID == id {
					events = append(events, Event{Type: EventDelete, Entity: EntityConversation, ID: c.ID, Timestamp: now})
					continue
				}
				conversations = append(conversations, c)
			}

			data.Folders = folders
			data.Conversations = conversations
			return events, nil
		},
	})
}

// AddConversation files a new question/answer pair under folderID.
// It returns ErrFolderNotFound without writing anything if the folder does not exist.
func (m *Manager) AddConversation(ctx context.Context, folderID, question, answer string) (Conversation, error) {
	var created Conversation
	err := m.submit(ctx, &mutation{
		name: "add_conversation",
		apply: func(data *AppData, now int64) ([]Event, error) {
			if !hasFolder(data, folderID) {
				return nil, ErrFolderNotFound
			}
			created = Conversation{
				ID:        m.ids.NewID(),
				FolderID:  folderID,
				Question:  question,
				Answer:    answer,
				CreatedAt: now,
				UpdatedAt: now,
			}
			data.Conversations = append(data.Conversations, created)
			return []Event{{Type: EventCreate, Entity: EntityConversation, ID: created.ID, Timestamp: now}}, nil
		},
	})
	if err != nil {
		return Conversation{}, err
	}
	return created, nil
}

// UpdateConversation replaces question and answer and refreshes UpdatedAt.
// UpdatedAt never moves backwards, even if the clock does. Unknown ids are ignored.
func (m *Manager) UpdateConversation(ctx context.Context, id, question, answer string) error {
	return m.submit(ctx, &mutation{
		name: "update_conversation",
		apply: func(data *AppData, now int64) ([]Event, error) {
			for i := range data.Conversations {
				c := &data.Conversations[i]
				if c.ID != id {
					continue
				}
				c.Question = question
				c.Answer = answer
				c.UpdatedAt = max(now, c.UpdatedAt, c.CreatedAt)
				return []Event{{Type: EventModify, Entity: EntityConversation, ID: id, Timestamp: now}}, nil
			}
			return nil, nil
		},
	})
}

// DeleteConversation removes the conversation with the given id. Unknown ids are ignored.
func (m *Manager) DeleteConversation(ctx context.Context, id string) error {
	return m.submit(ctx, &mutation{
		name: "delete_conversation",
		apply: func(data *AppData, now int64) ([]Event, error) {
			for i, c := range data.Conversations {
				if c.ID == id {
					data.Conversations = append(data.Conversations[:i:i], data.Conversations[i+1:]...)
					return []Event{{Type: EventDelete, Entity: EntityConversation, ID: id, Timestamp: now}}, nil
				}
			}
			return nil, nil
		},
	})
}

func hasFolder(data *AppData, id string) bool {
	for _, f := range data.Folders {
		if f.ID == id {
			return true
		}
	}
	return false
}
