package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "gha-enforce-sha",
		Short:   "Pin GitHub Actions dependencies to full commit SHAs",
		Version: version,
		// main owns error printing and exit codes.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("workdir", ".", "Directory searched for .github/workflows when no paths are given")
	cmd.PersistentFlags().String("remote-base", "https://github.com", "Base URL actions are fetched from")

	cmd.AddCommand(
		newCheckCmd(),
		newEnforceCmd(),
		newDoctorCmd(),
	)

	return cmd
}
