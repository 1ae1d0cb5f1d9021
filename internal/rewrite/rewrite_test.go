package rewrite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matthewhughes934/gha-enforce-sha/internal/errs"
	"github.com/matthewhughes934/gha-enforce-sha/internal/resolve"
	"github.com/matthewhughes934/gha-enforce-sha/internal/workflow"
)

const testSHA = "11bd71901bbe5b1630ceea73d27597364c9af683"

func writeTestFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func scanTestFile(t *testing.T, path string) []workflow.Occurrence {
	t.Helper()
	occs, err := workflow.ScanFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return occs
}

func cacheWith(raw, tag, commit string) resolve.Cache {
	cache := make(resolve.Cache)
	ref := workflow.ParseReference(raw)
	cache[requestKey(ref)] = resolve.ResolvedTag{Tag: tag, Commit: commit}
	return cache
}

// requestKey mirrors resolve's internal request construction via the
// public Lookup contract.
func requestKey(ref workflow.Reference) resolve.Request {
	req := resolve.Request{Repo: ref.RepoPath()}
	if ref.Version != nil {
		req.Version = *ref.Version
		req.HasVersion = true
	}
	return req
}

func TestFile_preservesIndentation(t *testing.T) {
	content := "jobs:\n" +
		"    just-checkout:\n" +
		"        steps:\n" +
		"            - uses: actions/checkout@v4\n"
	path := writeTestFile(t, content)
	occs := scanTestFile(t, path)

	cache := cacheWith("actions/checkout@v4", "v4.2.2", testSHA)
	if err := File(path, occs, cache); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "jobs:\n" +
		"    just-checkout:\n" +
		"        steps:\n" +
		"            - uses: actions/checkout@" + testSHA + "  # v4.2.2\n"
	if string(got) != want {
		t.Errorf("rewritten content:\n%q\nwant:\n%q", got, want)
	}
}

func TestFile_preservesCRLF(t *testing.T) {
	content := "jobs:\r\n" +
		"  build:\r\n" +
		"    steps:\r\n" +
		"      - uses: actions/checkout@v4\r\n"
	path := writeTestFile(t, content)
	occs := scanTestFile(t, path)

	cache := cacheWith("actions/checkout@v4", "v4.2.2", testSHA)
	if err := File(path, occs, cache); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(got), "actions/checkout@"+testSHA+"  # v4.2.2\r\n") {
		t.Errorf("CRLF terminator not preserved:\n%q", got)
	}
	if strings.Count(string(got), "\r\n") != 4 {
		t.Errorf("expected 4 CRLF terminators:\n%q", got)
	}
}

func TestFile_noTrailingNewline(t *testing.T) {
	content := "jobs:\n" +
		"  build:\n" +
		"    steps:\n" +
		"      - uses: actions/checkout@v4"
	path := writeTestFile(t, content)
	occs := scanTestFile(t, path)

	cache := cacheWith("actions/checkout@v4", "v4.2.2", testSHA)
	if err := File(path, occs, cache); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.HasSuffix(string(got), "\n") {
		t.Errorf("trailing newline appeared where the original had none:\n%q", got)
	}
}

func TestFile_multipleOccurrences(t *testing.T) {
	content := "jobs:\n" +
		"  build:\n" +
		"    steps:\n" +
		"      - uses: actions/checkout@v4\n" +
		"      - run: make test\n" +
		"      - uses: actions/setup-go@v5\n"
	path := writeTestFile(t, content)
	occs := scanTestFile(t, path)
	if len(occs) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(occs))
	}

	otherSHA := strings.Repeat("ab", 20)
	cache := cacheWith("actions/checkout@v4", "v4.2.2", testSHA)
	for k, v := range cacheWith("actions/setup-go@v5", "v5.3.0", otherSHA) {
		cache[k] = v
	}

	if err := File(path, occs, cache); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(got)
	if !strings.Contains(text, "actions/checkout@"+testSHA+"  # v4.2.2") {
		t.Errorf("checkout not rewritten:\n%s", text)
	}
	if !strings.Contains(text, "actions/setup-go@"+otherSHA+"  # v5.3.0") {
		t.Errorf("setup-go not rewritten:\n%s", text)
	}
	if !strings.Contains(text, "- run: make test\n") {
		t.Errorf("unrelated step modified:\n%s", text)
	}
}

func TestFile_nestedActionPathKeptInReplacement(t *testing.T) {
	content := "jobs:\n" +
		"  build:\n" +
		"    steps:\n" +
		"      - uses: octo/monorepo/actions/setup@v1\n"
	path := writeTestFile(t, content)
	occs := scanTestFile(t, path)

	cache := cacheWith("octo/monorepo/actions/setup@v1", "v1.4.0", testSHA)
	if err := File(path, occs, cache); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), "uses: octo/monorepo/actions/setup@"+testSHA+"  # v1.4.0") {
		t.Errorf("full action path not preserved:\n%s", got)
	}
}

func TestFile_noOccurrencesLeavesFileAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	// The file does not even exist; with no occurrences it must not be
	// opened.
	if err := File(path, nil, make(resolve.Cache)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFile_missingCacheEntryIsInternal(t *testing.T) {
	content := "jobs:\n" +
		"  build:\n" +
		"    steps:\n" +
		"      - uses: actions/checkout@v4\n"
	path := writeTestFile(t, content)
	occs := scanTestFile(t, path)
	before, _ := os.ReadFile(path)

	err := File(path, occs, make(resolve.Cache))
	if err == nil {
		t.Fatal("expected error for missing cache entry")
	}
	if !errs.IsInternal(err) {
		t.Errorf("expected internal error, got %T: %v", err, err)
	}

	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Error("file modified despite error")
	}
}
