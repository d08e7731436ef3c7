package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const lockRetryInterval = 10 * time.Millisecond

// lock acquires the directory lock file. It blocks until the lock is acquired
// or ctx is done. Lock files older than StaleLockAfter are treated as left over
// by a crashed writer and removed.
func (s *Store) lock(ctx context.Context) (func(), error) {
	fullLockPath := filepath.Join(s.Path, s.config.LockName)

	for {
		f, err := os.OpenFile(fullLockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			f.Close()
			return func() {
				os.Remove(fullLockPath)
			}, nil
		}

		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}

		if info, statErr := os.Stat(fullLockPath); statErr == nil && time.Since(info.ModTime()) > s.config.StaleLockAfter {
			if s.config.Logger != nil {
				s.config.Logger.Warn("removing stale lock file", "path", fullLockPath, "age", time.Since(info.ModTime()))
			}
			os.Remove(fullLockPath)
			continue
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to acquire lock: %w", ctx.Err())
		case <-time.After(lockRetryInterval):
		}
	}
}
