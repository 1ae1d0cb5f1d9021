package resolve

import (
	"fmt"
	"os"

	"github.com/matthewhughes934/gha-enforce-sha/internal/errs"
	"github.com/matthewhughes934/gha-enforce-sha/internal/git"
)

// ResolvedTag pairs a full tag name with the commit it points at.
type ResolvedTag struct {
	Tag    string
	Commit string
}

// Mirror is a transient bare repository used to query one remote's tag
// namespace. It lives in a temporary directory and must be closed when
// resolution for its remote is finished.
type Mirror struct {
	remote  string
	dir     string
	fetched map[string]bool
}

// NewMirror creates an empty bare repository with remoteURL registered
// as origin.
func NewMirror(remoteURL string) (*Mirror, error) {
	dir, err := os.MkdirTemp("", "gha-enforce-sha-*")
	if err != nil {
		return nil, fmt.Errorf("creating mirror directory: %w", err)
	}
	if err := git.InitBare(dir); err != nil {
		_ = os.RemoveAll(dir)
		return nil, errs.Userf("initializing mirror for %s: %v", remoteURL, err)
	}
	if err := git.AddRemote(dir, remoteURL); err != nil {
		_ = os.RemoveAll(dir)
		return nil, errs.Userf("registering remote %s: %v", remoteURL, err)
	}
	return &Mirror{remote: remoteURL, dir: dir, fetched: make(map[string]bool)}, nil
}

// Close removes the mirror's temporary directory.
func (m *Mirror) Close() error {
	return os.RemoveAll(m.dir)
}

// Resolve maps a requested version to the tag it should be pinned to.
// An exact existing tag wins outright, so a user-chosen v4.2.2 is never
// silently promoted to a higher release. Otherwise the version is a
// prefix (v1, v1.1, or empty for "latest") and the highest matching tag
// by git's version sort is chosen.
func (m *Mirror) Resolve(version string) (ResolvedTag, error) {
	if err := m.fetchTags(version); err != nil {
		return ResolvedTag{}, errs.Userf("fetching tags from %s: %v", m.remote, err)
	}

	if version != "" {
		commit, ok, err := git.TryResolveTag(m.dir, version)
		if err != nil {
			return ResolvedTag{}, errs.Userf("resolving tag %s in %s: %v", version, m.remote, err)
		}
		if ok {
			return ResolvedTag{Tag: version, Commit: commit}, nil
		}
	}

	tags, err := git.TagsByVersionDesc(m.dir, version+"*")
	if err != nil {
		return ResolvedTag{}, errs.Userf("listing tags of %s: %v", m.remote, err)
	}
	if len(tags) == 0 {
		return ResolvedTag{}, &errs.Resolution{Requested: version}
	}

	commit, ok, err := git.TryResolveTag(m.dir, tags[0])
	if err != nil {
		return ResolvedTag{}, errs.Userf("resolving tag %s in %s: %v", tags[0], m.remote, err)
	}
	if !ok {
		return ResolvedTag{}, errs.Internalf("tag %s listed but not resolvable in mirror of %s", tags[0], m.remote)
	}
	return ResolvedTag{Tag: tags[0], Commit: commit}, nil
}

// fetchTags fetches tag refs matching prefix into the mirror. Each
// distinct prefix is fetched at most once per mirror, and nothing is
// fetched again after an unrestricted fetch.
func (m *Mirror) fetchTags(prefix string) error {
	if m.fetched[""] || m.fetched[prefix] {
		return nil
	}
	refspec := fmt.Sprintf("refs/tags/%s*:refs/tags/%s*", prefix, prefix)
	if err := git.FetchTags(m.dir, refspec); err != nil {
		return err
	}
	m.fetched[prefix] = true
	return nil
}
