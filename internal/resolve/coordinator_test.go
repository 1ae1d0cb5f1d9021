package resolve

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matthewhughes934/gha-enforce-sha/internal/testutil"
	"github.com/matthewhughes934/gha-enforce-sha/internal/workflow"
)

func occurrenceFor(path, raw string) workflow.Occurrence {
	return workflow.Occurrence{
		Path: path,
		Job:  "build",
		Ref:  workflow.ParseReference(raw),
	}
}

func TestGroupRequests_deduplicates(t *testing.T) {
	// Five occurrences of the same pair across three files collapse to
	// one request.
	occs := []workflow.Occurrence{
		occurrenceFor("a.yaml", "octo/tool@v1"),
		occurrenceFor("a.yaml", "octo/tool@v1"),
		occurrenceFor("b.yaml", "octo/tool@v1"),
		occurrenceFor("b.yaml", "octo/tool@v1"),
		occurrenceFor("c.yaml", "octo/tool@v1"),
	}
	groups := GroupRequests(occs)
	if len(groups) != 1 {
		t.Fatalf("expected 1 repository group, got %d", len(groups))
	}
	reqs := groups["octo/tool"]
	if len(reqs) != 1 {
		t.Fatalf("expected 1 distinct request, got %v", reqs)
	}
	if reqs[0] != (Request{Repo: "octo/tool", Version: "v1", HasVersion: true}) {
		t.Errorf("request = %+v", reqs[0])
	}
}

func TestGroupRequests_distinguishesVersions(t *testing.T) {
	occs := []workflow.Occurrence{
		occurrenceFor("a.yaml", "octo/tool@v1"),
		occurrenceFor("a.yaml", "octo/tool@v2"),
		occurrenceFor("a.yaml", "octo/tool"),
		occurrenceFor("a.yaml", "other/tool@v1"),
	}
	groups := GroupRequests(occs)
	if len(groups) != 2 {
		t.Fatalf("expected 2 repository groups, got %d", len(groups))
	}
	if len(groups["octo/tool"]) != 3 {
		t.Errorf("octo/tool requests = %v, want 3 (v1, v2, none)", groups["octo/tool"])
	}
	if DistinctRequests(occs) != 4 {
		t.Errorf("DistinctRequests = %d, want 4", DistinctRequests(occs))
	}
}

func TestGroupRequests_nestedActionPath(t *testing.T) {
	occs := []workflow.Occurrence{
		occurrenceFor("a.yaml", "octo/monorepo/actions/setup@v1"),
	}
	groups := GroupRequests(occs)
	if _, ok := groups["octo/monorepo"]; !ok {
		t.Errorf("expected grouping by hosting repository, got %v", groups)
	}
}

func TestResolveAll(t *testing.T) {
	base := t.TempDir()
	toolCommits := testutil.CreateTaggedRepo(t, filepath.Join(base, "octo", "tool"), "v1.0.0", "v1.1.0")
	otherCommits := testutil.CreateTaggedRepo(t, filepath.Join(base, "octo", "other"), "v2.0.0")

	occs := []workflow.Occurrence{
		occurrenceFor("a.yaml", "octo/tool@v1"),
		occurrenceFor("b.yaml", "octo/tool@v1"),
		occurrenceFor("a.yaml", "octo/other@v2"),
	}

	cache, err := ResolveAll(context.Background(), occs, Options{RemoteBase: base, Jobs: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(cache) != 2 {
		t.Fatalf("expected 2 cache entries, got %d", len(cache))
	}

	rt, ok := cache.Lookup(workflow.ParseReference("octo/tool@v1"))
	if !ok {
		t.Fatal("missing cache entry for octo/tool@v1")
	}
	if rt.Tag != "v1.1.0" || rt.Commit != toolCommits["v1.1.0"] {
		t.Errorf("octo/tool@v1 = %+v", rt)
	}

	rt, ok = cache.Lookup(workflow.ParseReference("octo/other@v2"))
	if !ok {
		t.Fatal("missing cache entry for octo/other@v2")
	}
	if rt.Tag != "v2.0.0" || rt.Commit != otherCommits["v2.0.0"] {
		t.Errorf("octo/other@v2 = %+v", rt)
	}
}

func TestResolveAll_failureAbortsBatch(t *testing.T) {
	base := t.TempDir()
	testutil.CreateTaggedRepo(t, filepath.Join(base, "octo", "tool"), "v1.0.0")

	occs := []workflow.Occurrence{
		occurrenceFor("a.yaml", "octo/tool@v1"),
		occurrenceFor("a.yaml", "octo/tool@v9"),
	}

	cache, err := ResolveAll(context.Background(), occs, Options{RemoteBase: base, Jobs: 2})
	if err == nil {
		t.Fatal("expected error for unmatched version")
	}
	if cache != nil {
		t.Errorf("expected no cache on failure, got %v", cache)
	}
}

func TestResolveAll_mirrorsCleanedUp(t *testing.T) {
	base := t.TempDir()
	testutil.CreateTaggedRepo(t, filepath.Join(base, "octo", "tool"), "v1.0.0")

	tmpBefore := countTempMirrors(t)
	_, err := ResolveAll(context.Background(),
		[]workflow.Occurrence{occurrenceFor("a.yaml", "octo/tool@v1")},
		Options{RemoteBase: base, Jobs: 1})
	if err != nil {
		t.Fatal(err)
	}
	if got := countTempMirrors(t); got != tmpBefore {
		t.Errorf("temp mirrors leaked: %d before, %d after", tmpBefore, got)
	}
}

func countTempMirrors(t *testing.T) int {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(os.TempDir(), "gha-enforce-sha-*"))
	if err != nil {
		t.Fatal(err)
	}
	return len(matches)
}

func TestRemoteURL(t *testing.T) {
	if got := RemoteURL("https://github.com", "actions/checkout"); got != "https://github.com/actions/checkout" {
		t.Errorf("RemoteURL = %q", got)
	}
	if got := RemoteURL("https://github.com/", "actions/checkout"); got != "https://github.com/actions/checkout" {
		t.Errorf("RemoteURL with trailing slash = %q", got)
	}
}
