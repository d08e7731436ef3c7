// Package aidb is the Composition Root for aidb, a local organizer for
// questions and answers saved from AI assistants.
//
// It connects the core data manager (pkg/core) with the storage adapters
// (pkg/adapters) using the Hexagonal Architecture pattern.
//
// The whole dataset, folders and the conversations filed under them, lives
// in memory and is written back as a single document under one key after
// every change. Mutations are applied one at a time in arrival order; reads
// never touch storage.
//
// Storage adapters:
//
//   - **fs** (default): one file per key, atomic replace, cross-process lock file, change watching.
//   - **sqlite**: a single key/value table in a WAL-mode database file.
//   - **memory**: nothing persists; for tests and throwaway sessions.
//
// Usage:
//
//	m, err := aidb.New(ctx, "./.aidb", aidb.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer m.Close()
//
//	if err := m.WaitReady(ctx); err != nil {
//		return err
//	}
//	work, _ := m.AddFolder(ctx, "Work")
//	_, _ = m.AddConversation(ctx, work.ID, "How do I rebase?", "git rebase -i ...")
//	hits := m.SearchConversations("rebase")
package aidb
