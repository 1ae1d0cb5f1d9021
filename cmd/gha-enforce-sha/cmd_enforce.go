package main

import (
	"github.com/spf13/cobra"

	"github.com/matthewhughes934/gha-enforce-sha/internal/errs"
	"github.com/matthewhughes934/gha-enforce-sha/internal/resolve"
	"github.com/matthewhughes934/gha-enforce-sha/internal/rewrite"
	"github.com/matthewhughes934/gha-enforce-sha/internal/ui"
	"github.com/matthewhughes934/gha-enforce-sha/internal/workflow"
)

func newEnforceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enforce [file...]",
		Short: "Rewrite unpinned action references to full commit SHAs",
		RunE:  runEnforce,
	}
	cmd.Flags().Int("jobs", 4, "Number of repositories resolved in parallel")
	cmd.Flags().Bool("verbose", false, "Print resolution progress")
	cmd.Flags().Bool("interactive", false, "Confirm the pending fixes before rewriting")
	return cmd
}

func runEnforce(cmd *cobra.Command, args []string) error {
	jobs, _ := cmd.Flags().GetInt("jobs")
	if jobs < 1 {
		return errs.Userf("--jobs must be >= 1 (got %d)", jobs)
	}

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

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		ok, err := confirmFixes(cmd.OutOrStdout(), occs)
		if err != nil {
			return err
		}
		if !ok {
			return errs.Userf("aborted by user")
		}
	}

	var progress *ui.Progress
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		progress = ui.NewProgress(cmd.OutOrStdout(), resolve.DistinctRequests(occs))
	}

	remoteBase, _ := cmd.Flags().GetString("remote-base")
	cache, err := resolve.ResolveAll(cmd.Context(), occs, resolve.Options{
		RemoteBase: remoteBase,
		Jobs:       jobs,
		Progress:   progress,
	})
	if err != nil {
		return err
	}

	// Every resolution succeeded; only now may any file change.
	byFile := make(map[string][]workflow.Occurrence)
	for _, o := range occs {
		byFile[o.Path] = append(byFile[o.Path], o)
	}
	for _, p := range paths {
		if err := rewrite.File(p, byFile[p], cache); err != nil {
			return err
		}
	}

	// The files are fixed, but the run still signals that violations
	// existed when it started.
	return errs.ErrViolationsFound
}
