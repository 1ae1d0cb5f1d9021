package workflow

import "strings"

// Kind classifies a raw `uses:` reference string.
type Kind int

const (
	// KindLocal is an action in the same repository, referenced by a
	// path beginning with "." or "/". Never checked or rewritten.
	KindLocal Kind = iota
	// KindContainer is a docker:// image reference. Never checked or
	// rewritten.
	KindContainer
	// KindRemote is an action hosted in another repository.
	KindRemote
)

const containerPrefix = "docker://"

// CommitHexLength is the expected length of a full commit identifier.
// GitHub actions repositories use the SHA-1 object format; a SHA-256
// repository would report 64 here.
const CommitHexLength = 40

// Classify tags a raw reference string as local, container or remote.
func Classify(raw string) Kind {
	switch {
	case strings.HasPrefix(raw, ".") || strings.HasPrefix(raw, "/"):
		return KindLocal
	case strings.HasPrefix(raw, containerPrefix):
		return KindContainer
	default:
		return KindRemote
	}
}

// Reference is a remote dependency reference split into repository path
// and optional version. A nil Version means no "@" suffix was present,
// which is distinct from an empty version string.
type Reference struct {
	Path    string
	Version *string
}

// ParseReference splits a raw remote reference on the first "@".
func ParseReference(raw string) Reference {
	path, version, found := strings.Cut(raw, "@")
	if !found {
		return Reference{Path: path}
	}
	return Reference{Path: path, Version: &version}
}

func (r Reference) String() string {
	if r.Version == nil {
		return r.Path
	}
	return r.Path + "@" + *r.Version
}

// Pinned reports whether the version is a full-length lowercase
// hexadecimal commit identifier. Uppercase hex does not count: commit
// identifiers are rendered lowercase everywhere.
func (r Reference) Pinned() bool {
	if r.Version == nil {
		return false
	}
	v := *r.Version
	if len(v) != CommitHexLength {
		return false
	}
	for i := 0; i < len(v); i++ {
		c := v[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// RepoPath returns the hosting repository: the first two /-delimited
// segments of the path. Actions living in a subdirectory of a larger
// repository carry extra segments that play no part in resolution.
func (r Reference) RepoPath() string {
	parts := strings.SplitN(r.Path, "/", 3)
	if len(parts) < 2 {
		return r.Path
	}
	return parts[0] + "/" + parts[1]
}
