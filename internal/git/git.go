package git

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// remoteName is the name under which resolver mirrors register the
// repository they query.
const remoteName = "origin"

// InitBare initializes an empty bare repository in dir. The directory
// must already exist.
func InitBare(dir string) error {
	return run(dir, "init", "--bare")
}

// AddRemote registers url as the origin remote of the repository in dir.
func AddRemote(dir, url string) error {
	return run(dir, "remote", "add", remoteName, url)
}

// FetchTags fetches tag references matching the given refspec from
// origin into the repository's local tag namespace. Only the refspec is
// fetched (no --tags), keeping the transfer to candidate tags only.
func FetchTags(dir, refspec string) error {
	return run(dir, "fetch", remoteName, refspec)
}

// TryResolveTag resolves a tag name to the commit it points at,
// peeling annotated tags. A tag that does not exist is not an error:
// ok is false and err is nil.
func TryResolveTag(dir, tag string) (commit string, ok bool, err error) {
	out, err := output(dir, "rev-parse", "--verify", "refs/tags/"+tag+"^{commit}")
	if err != nil {
		if isExitError(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return strings.TrimSpace(out), true, nil
}

// TagsByVersionDesc lists local tag names matching pattern, highest
// version first. Ordering is git's own -version:refname sort, including
// its handling of pre-release suffixes.
func TagsByVersionDesc(dir, pattern string) ([]string, error) {
	out, err := output(dir, "tag", "--list", "--sort=-version:refname", pattern)
	if err != nil {
		return nil, err
	}
	out = strings.TrimRight(out, "\n")
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// IsInstalled returns true if git is available on the system PATH.
func IsInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// Version returns the version string reported by the git binary.
func Version() (string, error) {
	out, err := output(".", "version")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// LsRemoteOK verifies that a repository URL is reachable.
func LsRemoteOK(url string) bool {
	cmd := exec.Command("git", "ls-remote", "--exit-code", "--quiet", url, "HEAD")
	return cmd.Run() == nil
}

// run executes a git command in the given directory, discarding stdout.
// Stderr is captured and included in the error message on failure.
func run(dir string, args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, stderr.String())
	}
	return nil
}

// output executes a git command and returns its stdout.
func output(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, stderr.String())
	}
	return stdout.String(), nil
}

func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}
