// cmd/sitequery/main.go
//
// sitequery – compares two ways of reading sites with their URL slugs.
//
// Command life-cycle
// ------------------
//
//  1. Parse flags (cobra).
//
//  2. PersistentPreRunE: load config, start the daily rotating logger,
//     open the database, and build the site repository.
//
//  3. Subcommand: run | seed | migrate up|down.  `sql` skips step 2
//     entirely and only prints the generated SQL.
//
//  4. PersistentPostRunE: close the database and flush the logger.  Cobra
//     skips it when the subcommand fails, so execute closes instead.
//
// SIGINT and SIGTERM cancel the command context.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yanizio/sitequery/internal/logger"
)

const programName = "sitequery"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, &app{}, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the command tree once and returns the process exit code.
// Errors are reported exactly once: through the logger's console tee when
// one is attached, on stderr otherwise.
func execute(ctx context.Context, a *app, args []string, stderr io.Writer) int {
	root := newRootCommand(a)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	if a.log != nil {
		a.log.Errorw("command failed", "err", err)
	}
	if a.log == nil || !a.tee {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	if cerr := a.close(); cerr != nil {
		fmt.Fprintf(stderr, "Error: close: %v\n", cerr)
	}
	return 1
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           programName,
		Short:         "Fetch sites and their URL slugs with a flat join and with JSON aggregation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.tee = logger.IsTTY()
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVar(&a.flags.root, "root", "", "directory holding conf/global.yaml (default: discovered from the working directory)")
	root.PersistentFlags().BoolVarP(&a.flags.debug, "debug", "D", false, "enable debug logging")

	root.AddCommand(runCommand(a))
	root.AddCommand(seedCommand(a))
	root.AddCommand(migrateCommand(a))
	root.AddCommand(sqlCommand())
	return root
}
