package platform_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sion-neko/AI-DB/internal/platform"
)

func TestFindRoot(t *testing.T) {
	// /tmp/
	//   repo/ (.aidb)
	//     subdir/
	//       nested/
	//   empty/
	baseDir := t.TempDir()
	repoDir := filepath.Join(baseDir, "repo")
	subDir := filepath.Join(repoDir, "subdir")
	nestedDir := filepath.Join(subDir, "nested")
	emptyDir := filepath.Join(baseDir, "empty")

	if err := os.MkdirAll(nestedDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(emptyDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(repoDir, platform.RootMarker), 0755); err != nil {
		t.Fatal(err)
	}
	// A file named like the marker does not count.
	if err := os.WriteFile(filepath.Join(emptyDir, platform.RootMarker), nil, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		startPath string
		wantRoot  string
		wantErr   bool
	}{
		{
			name:      "Start at Root",
			startPath: repoDir,
			wantRoot:  repoDir,
		},
		{
			name:      "Start in Subdir",
			startPath: subDir,
			wantRoot:  repoDir,
		},
		{
			name:      "Start Nested Deeply",
			startPath: nestedDir,
			wantRoot:  repoDir,
		},
		{
			name:      "No Root Found",
			startPath: emptyDir,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := platform.FindRoot(tt.startPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("FindRoot() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && !errors.Is(err, platform.ErrRootNotFound) {
				t.Errorf("FindRoot() error = %v, want ErrRootNotFound", err)
			}
			if got != "" && filepath.Clean(got) != filepath.Clean(tt.wantRoot) {
				t.Errorf("FindRoot() = %v, want %v", got, tt.wantRoot)
			}
		})
	}
}

func TestDataDir(t *testing.T) {
	baseDir := t.TempDir()
	projectDir := filepath.Join(baseDir, "project", "src")
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		t.Fatal(err)
	}
	marker := filepath.Join(baseDir, "project", platform.RootMarker)
	if err := os.Mkdir(marker, 0755); err != nil {
		t.Fatal(err)
	}

	t.Run("Explicit Wins", func(t *testing.T) {
		got, err := platform.DataDir("/explicit", projectDir)
		if err != nil || got != "/explicit" {
			t.Errorf("DataDir() = %q, %v", got, err)
		}
	})

	t.Run("Nearest Marker", func(t *testing.T) {
		got, err := platform.DataDir("", projectDir)
		if err != nil {
			t.Fatal(err)
		}
		if filepath.Clean(got) != filepath.Clean(marker) {
			t.Errorf("DataDir() = %q, want %q", got, marker)
		}
	})

	t.Run("Home Fallback", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		t.Setenv("USERPROFILE", home)

		got, err := platform.DataDir("", t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		if got != filepath.Join(home, platform.RootMarker) {
			t.Errorf("DataDir() = %q, want home marker", got)
		}
	})
}
