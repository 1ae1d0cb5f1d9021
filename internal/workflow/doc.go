// Package workflow parses GitHub workflow and action documents,
// classifies the dependency references their steps use, and reports
// the ones not pinned to a full commit identifier together with their
// exact source position.
package workflow
