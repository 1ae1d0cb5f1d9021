// Package git wraps the git binary for the handful of plumbing
// operations tag resolution needs: initializing a bare mirror,
// fetching tag refs from a remote, resolving tag names to commits and
// listing tags in descending version order.
package git
