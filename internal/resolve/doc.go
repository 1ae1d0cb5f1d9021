// Package resolve turns partial or symbolic version references into
// exact commit identifiers by querying the referenced remote through a
// transient local mirror, deduplicating requests across a whole run.
package resolve
