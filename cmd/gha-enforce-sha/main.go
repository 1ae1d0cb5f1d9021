package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"

	"github.com/matthewhughes934/gha-enforce-sha/internal/errs"
)

// Set via -ldflags at build time.
var version = "dev"

func main() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "Interrupted (^C)")
		os.Exit(errs.ExitInterrupt)
	}()

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the root command and maps the outcome to a process exit
// code: 0 clean, 1 for user errors or violations found, 2 for anything
// unexpected.
func run(args []string, stdout, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			reportInternal(stderr, fmt.Sprintf("%v", r))
			code = errs.ExitInternal
		}
	}()

	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	switch {
	case err == nil:
		return errs.ExitOK
	case errors.Is(err, errs.ErrViolationsFound):
		// Already reported (or fixed); the exit code is the signal.
		return errs.ExitUser
	case errs.IsInternal(err):
		reportInternal(stderr, err.Error())
		return errs.ExitInternal
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return errs.ExitUser
	}
}

func reportInternal(stderr io.Writer, msg string) {
	fmt.Fprintf(stderr, "Fatal: unexpected error: '%s'\n", msg)
	fmt.Fprintf(stderr, "Please report this bug with the following traceback:\n%s", debug.Stack())
}
