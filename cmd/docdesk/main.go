package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(newCLI(os.Stdout, os.Stderr))
	if err := root.ExecuteContext(ctx); err != nil {
		var reported *reportedError
		if errors.As(err, &reported) {
			printError(os.Stderr, noColorEnv(), "%s", reported.message)
		} else {
			printError(os.Stderr, noColorEnv(), "%v", err)
		}
		return 1
	}
	return 0
}

// reportedError carries the user-facing message shown in place of err.
type reportedError struct {
	message string
	err     error
}

func (e *reportedError) Error() string {
	return fmt.Sprintf("%s: %v", e.message, e.err)
}

func (e *reportedError) Unwrap() error { return e.err }

func noColorEnv() bool {
	_, set := os.LookupEnv("NO_COLOR")
	return set
}
