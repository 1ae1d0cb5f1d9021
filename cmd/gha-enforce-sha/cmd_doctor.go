package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matthewhughes934/gha-enforce-sha/internal/errs"
	"github.com/matthewhughes934/gha-enforce-sha/internal/git"
	"github.com/matthewhughes934/gha-enforce-sha/internal/resolve"
	"github.com/matthewhughes934/gha-enforce-sha/internal/workflow"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose environment for common issues",
		RunE:  runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	ok := true

	fmt.Fprint(out, "Checking git... ")
	if !git.IsInstalled() {
		fmt.Fprintln(out, "NOT FOUND")
		fmt.Fprintln(out, "  git is required. Install it from https://git-scm.com/")
		ok = false
	} else {
		fmt.Fprintln(out, "found")

		fmt.Fprint(out, "Checking git version... ")
		if ver, err := git.Version(); err != nil {
			fmt.Fprintln(out, "ERROR")
			ok = false
		} else {
			fmt.Fprintln(out, ver)
		}
	}

	workDir, _ := cmd.Flags().GetString("workdir")
	fmt.Fprintf(out, "Checking %s... ", filepath.Join(workDir, workflow.DefaultDir))
	if paths, err := workflow.Discover(workDir); err != nil {
		fmt.Fprintln(out, "NOT FOUND (pass file paths explicitly)")
	} else {
		fmt.Fprintf(out, "%d workflow file(s)\n", len(paths))
	}

	// A known-stable repository makes a reasonable connectivity probe.
	remoteBase, _ := cmd.Flags().GetString("remote-base")
	probe := resolve.RemoteURL(remoteBase, "actions/checkout")
	fmt.Fprintf(out, "Checking remote access (%s)... ", probe)
	if git.LsRemoteOK(probe) {
		fmt.Fprintln(out, "OK")
	} else {
		fmt.Fprintln(out, "FAILED (cannot access)")
		ok = false
	}

	if ok {
		fmt.Fprintln(out, "\nAll checks passed.")
		return nil
	}
	fmt.Fprintln(out, "\nSome checks failed. See above for details.")
	return errs.Userf("doctor checks failed")
}
