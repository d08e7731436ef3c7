package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	aidb "github.com/sion-neko/AI-DB"
)

func main() {
	count := flag.Int("count", 1000, "Number of conversations to generate")
	folders := flag.Int("folders", 20, "Number of folders to spread them over")
	adapter := flag.String("adapter", "fs", "Storage adapter: fs or sqlite")
	format := flag.String("format", "json", "Dataset encoding: json or yaml")
	keep := flag.Bool("keep", false, "Keep the benchmark data directory after running")
	flag.Parse()
	if *folders < 1 {
		*folders = 1
	}

	// 1. Setup Namespace
	benchDir, err := os.MkdirTemp("", "aidb_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	opts := []aidb.Option{
		aidb.WithAdapter(*adapter),
		aidb.WithFormat(*format),
		aidb.WithLogger(logger),
	}
	ctx := context.Background()

	// 2. Generate through the manager: every mutation rewrites the whole dataset.
	m, err := aidb.New(ctx, benchDir, opts...)
	if err != nil {
		panic(err)
	}
	if err := m.WaitReady(ctx); err != nil {
		panic(err)
	}

	fmt.Printf("Generating %d conversations in %d folders (%s/%s) in %s...\n", *count, *folders, *adapter, *format, benchDir)
	startGen := time.Now()
	folderIDs := make([]string, 0, *folders)
	for i := 0; i < *folders; i++ {
		f, err := m.AddFolder(ctx, fmt.Sprintf("Folder %d", i))
		if err != nil {
			panic(err)
		}
		folderIDs = append(folderIDs, f.ID)
	}
	for i := 0; i < *count; i++ {
		q := fmt.Sprintf("Question %d about goroutines and channels", i)
		a := fmt.Sprintf("Answer %d: use a select with a context to stop the worker.", i)
		if _, err := m.AddConversation(ctx, folderIDs[i%len(folderIDs)], q, a); err != nil {
			panic(err)
		}
	}
	genDuration := time.Since(startGen)
	if err := m.Close(); err != nil {
		panic(err)
	}

	// 3. Cold load in a fresh manager, as a new CLI invocation would.
	startLoad := time.Now()
	m2, err := aidb.New(ctx, benchDir, opts...)
	if err != nil {
		panic(err)
	}
	defer m2.Close()
	if err := m2.WaitReady(ctx); err != nil {
		panic(err)
	}
	loadDuration := time.Since(startLoad)

	// 4. Linear search over everything.
	startSearch := time.Now()
	hits := m2.SearchConversations("CONTEXT")
	searchDuration := time.Since(startSearch)

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d conversations):\n", *count)
	fmt.Printf("  Writes:  %v total, %v per mutation\n", genDuration, genDuration/time.Duration(*count+*folders))
	fmt.Printf("  Load:    %v (folders: %d, conversations: %d)\n", loadDuration, len(m2.Folders()), len(m2.Conversations()))
	fmt.Printf("  Search:  %v (hits: %d)\n", searchDuration, len(hits))
	fmt.Printf("--------------------------------------------------\n")
}
