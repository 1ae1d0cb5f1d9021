// Package ui contains small terminal output helpers: an aligned
// summary writer and a thread-safe progress counter.
package ui
