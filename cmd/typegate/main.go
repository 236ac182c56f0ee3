package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"

	"typegate/internal/cli"
	"typegate/internal/interp"
)

// main is a deterministic boundary: it canonicalizes the invocation before
// any resolution logic runs, and the process exit code is either the
// generator's own code or a launcher-owned failure code.
func main() {
	inv, err := cli.ParseInvocation(os.Args[1:])
	if err != nil {
		var invErr *cli.InvocationError
		if errors.As(err, &invErr) {
			fmt.Fprintln(os.Stderr, invErr.Message)
			os.Exit(invErr.ExitCode)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitInternalError)
	}

	result, execErr := cli.Execute(context.Background(), inv)
	if execErr != nil {
		if errors.Is(execErr, interp.ErrNoQualifying) {
			color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, execErr)
		} else {
			fmt.Fprintln(os.Stderr, execErr)
		}
	}
	os.Exit(result.ExitCode)
}
