package testutil

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// CreateTaggedRepo creates a git repository at path whose history
// carries one empty commit per tag, tagged in order. Returns a map of
// tag name to the full commit SHA it points at.
func CreateTaggedRepo(t *testing.T, path string, tags ...string) map[string]string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	run(t, filepath.Dir(path), "git", "init", "-b", "main", path)
	run(t, path, "git", "config", "user.email", "test@example.com")
	run(t, path, "git", "config", "user.name", "Test")

	commits := make(map[string]string, len(tags))
	for _, tag := range tags {
		run(t, path, "git", "commit", "--allow-empty", "-m", "release "+tag)
		run(t, path, "git", "tag", tag)
		commits[tag] = HeadCommit(t, path)
	}
	return commits
}

// HeadCommit returns the full SHA of HEAD in the repository at path.
func HeadCommit(t *testing.T, path string) string {
	t.Helper()
	return strings.TrimSpace(output(t, path, "git", "rev-parse", "HEAD"))
}

func run(t *testing.T, dir string, name string, args ...string) {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("command %s %v failed: %v: %s", name, args, err, stderr.String())
	}
}

func output(t *testing.T, dir string, name string, args ...string) string {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("command %s %v failed: %v: %s", name, args, err, stderr.String())
	}
	return stdout.String()
}
