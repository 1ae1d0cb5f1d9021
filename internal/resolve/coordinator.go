package resolve

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/matthewhughes934/gha-enforce-sha/internal/ui"
	"github.com/matthewhughes934/gha-enforce-sha/internal/workflow"
)

// Request identifies one distinct resolution: a repository plus the
// version asked for. HasVersion distinguishes "no version at all"
// (resolve to the highest tag) from an explicitly empty version string.
type Request struct {
	Repo       string // owner/name
	Version    string
	HasVersion bool
}

func requestFor(ref workflow.Reference) Request {
	req := Request{Repo: ref.RepoPath()}
	if ref.Version != nil {
		req.Version = *ref.Version
		req.HasVersion = true
	}
	return req
}

func (r Request) String() string {
	if !r.HasVersion {
		return r.Repo
	}
	return r.Repo + "@" + r.Version
}

// Cache holds every resolution produced during a run. ResolveAll builds
// it completely before any rewriting begins; it is read-only afterwards.
type Cache map[Request]ResolvedTag

// Lookup returns the resolution for a reference's (repository, version)
// pair.
func (c Cache) Lookup(ref workflow.Reference) (ResolvedTag, bool) {
	rt, ok := c[requestFor(ref)]
	return rt, ok
}

// Options configure a batch resolution.
type Options struct {
	// RemoteBase is joined with the owner/name repository path to form
	// the remote address.
	RemoteBase string
	// Jobs bounds how many repositories are resolved in parallel.
	Jobs int
	// Progress, when non-nil, receives one completion line per resolved
	// request.
	Progress *ui.Progress
}

// RemoteURL joins a remote base with an owner/name repository path.
func RemoteURL(base, repo string) string {
	return strings.TrimRight(base, "/") + "/" + repo
}

// GroupRequests deduplicates occurrences into per-repository request
// lists. Five occurrences of the same (repository, version) pair across
// any number of files yield a single request.
func GroupRequests(occs []workflow.Occurrence) map[string][]Request {
	seen := make(map[Request]bool)
	groups := make(map[string][]Request)
	for _, o := range occs {
		req := requestFor(o.Ref)
		if seen[req] {
			continue
		}
		seen[req] = true
		groups[req.Repo] = append(groups[req.Repo], req)
	}
	return groups
}

// DistinctRequests returns the number of unique (repository, version)
// pairs in occs.
func DistinctRequests(occs []workflow.Occurrence) int {
	n := 0
	for _, reqs := range GroupRequests(occs) {
		n += len(reqs)
	}
	return n
}

// ResolveAll resolves every distinct (repository, version) request in
// occs. Distinct repositories are resolved in parallel; each gets one
// transient mirror reused across all its version queries. Any failure
// cancels the outstanding work and fails the whole batch: callers must
// not rewrite anything unless every resolution succeeded.
func ResolveAll(ctx context.Context, occs []workflow.Occurrence, opts Options) (Cache, error) {
	groups := GroupRequests(occs)
	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cache := make(Cache, len(groups))
	var mu sync.Mutex
	sem := make(chan struct{}, jobs)
	var wg sync.WaitGroup
	errCh := make(chan error, len(groups))

	for repo, reqs := range groups {
		wg.Add(1)
		go func(repo string, reqs []Request) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}

			resolved, err := resolveRepo(repo, reqs, opts)
			if err != nil {
				errCh <- err
				cancel()
				return
			}

			mu.Lock()
			for req, rt := range resolved {
				cache[req] = rt
			}
			mu.Unlock()
		}(repo, reqs)
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		return nil, err
	}
	return cache, nil
}

// resolveRepo materializes one mirror for a repository and resolves
// every version requested against it.
func resolveRepo(repo string, reqs []Request, opts Options) (map[Request]ResolvedTag, error) {
	m, err := NewMirror(RemoteURL(opts.RemoteBase, repo))
	if err != nil {
		return nil, err
	}
	defer func() { _ = m.Close() }()

	resolved := make(map[Request]ResolvedTag, len(reqs))
	for _, req := range reqs {
		rt, err := m.Resolve(req.Version)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", req, err)
		}
		resolved[req] = rt
		if opts.Progress != nil {
			opts.Progress.Done(fmt.Sprintf("%s -> %s (%s)", req, rt.Tag, rt.Commit))
		}
	}
	return resolved, nil
}
