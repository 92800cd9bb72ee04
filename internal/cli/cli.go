// Package cli implements the arbridge command line: serve runs the HTTP
// service, call sends one method call to a running server, assets lists the
// asset catalog.
//
// Files:
//   - cli.go:    Options, MainWithArgs and exit codes.
//   - root.go:   cobra command tree.
//   - logging.go: zerolog construction from config.
//   - serve.go:  App wiring (config → manager → dispatcher → HTTP) and runServe.
//   - call.go:   HTTP client for one call, JSON or CBOR.
//   - assets.go: catalog listing.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

// Options carries global flags shared by every subcommand.
type Options struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

// Test seams: subcommands call through these so tests can stub them.
var (
	fnServe  = runServe
	fnCall   = runCall
	fnAssets = runAssets
)

// MainWithArgs runs the CLI with explicit args and returns an exit code
// (0 for success, 1 on error, 2 on usage error).
func MainWithArgs(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, args, os.Stdout, os.Stderr)
}

// Main returns an exit code for use by cmd/arbridge.
func Main() int { return MainWithArgs(os.Args[1:]) }

func execute(ctx context.Context, args []string, out, errOut io.Writer) int {
	root := buildRootCmd(&Options{}, out)
	if len(args) == 0 {
		_ = root.Usage()
		return 2
	}
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(errOut, err.Error())
		if isUsageError(err) {
			return 2
		}
		return 1
	}
	return 0
}

// usageError marks a bad command line: an unknown flag or a wrong argument count.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// usageArgs wraps a cobra argument validator so its failures exit with 2.
func usageArgs(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func isUsageError(err error) bool {
	var ue usageError
	if errors.As(err, &ue) {
		return true
	}
	// cobra reports unknown subcommands as a plain error.
	return strings.HasPrefix(err.Error(), "unknown command ")
}
