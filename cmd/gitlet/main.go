package main

import (
	"fmt"
	"io"
	"os"

	"github.com/odvcencio/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

const version = "0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, userMessage(err))
		return exitCode(err)
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gitlet",
		Short:         "A small local version-control system",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newAddCmd())
	root.AddCommand(newCommitCmd())
	root.AddCommand(newRmCmd())
	root.AddCommand(newLogCmd())
	root.AddCommand(newGlobalLogCmd())
	root.AddCommand(newFindCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newBranchCmd())
	root.AddCommand(newRmBranchCmd())
	root.AddCommand(newCheckoutCmd())
	root.AddCommand(newResetCmd())
	root.AddCommand(newMergeCmd())
	root.AddCommand(newReflogCmd())
	root.AddCommand(newGcCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gitlet %s\n", version)
		},
	}
}

// withRepo opens the repository containing the working directory, runs fn
// and closes the repository.
func withRepo(fn func(r *repo.Repo) error) (err error) {
	r, err := repo.Open(".")
	if err != nil {
		return err
	}
	defer func() {
		if cerr := r.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(r)
}
