package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matthewhughes934/gha-enforce-sha/internal/errs"
	"github.com/matthewhughes934/gha-enforce-sha/internal/ui"
	"github.com/matthewhughes934/gha-enforce-sha/internal/workflow"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [file...]",
		Short: "Report action references not pinned to a full commit SHA",
		RunE:  runCheck,
	}
	cmd.Flags().Bool("summary", false, "Print a per-file violation count table")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	paths, err := targetPaths(cmd, args)
	if err != nil {
		return err
	}

	occs, err := scanAll(paths)
	if err != nil {
		return err
	}
	if len(occs) == 0 {
		return nil
	}

	errOut := cmd.ErrOrStderr()
	for _, o := range occs {
		fmt.Fprintln(errOut, o)
	}

	if summary, _ := cmd.Flags().GetBool("summary"); summary {
		printSummary(cmd.OutOrStdout(), paths, occs)
	}

	return errs.ErrViolationsFound
}

// targetPaths returns the files to scan: the positional arguments, or
// every YAML file under <workdir>/.github/workflows when none are given.
func targetPaths(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	workDir, _ := cmd.Flags().GetString("workdir")
	return workflow.Discover(workDir)
}

// scanAll scans every file, failing the whole run on the first scan
// error so malformed documents are never silently skipped.
func scanAll(paths []string) ([]workflow.Occurrence, error) {
	var occs []workflow.Occurrence
	for _, p := range paths {
		found, err := workflow.ScanFile(p)
		if err != nil {
			return nil, err
		}
		occs = append(occs, found...)
	}
	return occs, nil
}

func printSummary(out io.Writer, paths []string, occs []workflow.Occurrence) {
	counts := make(map[string]int)
	for _, o := range occs {
		counts[o.Path]++
	}

	summary := ui.NewSummary(out)
	for _, p := range paths {
		if counts[p] > 0 {
			summary.Add(p, counts[p])
		}
	}
	_ = summary.Flush()
}
