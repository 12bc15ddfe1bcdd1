package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/odvcencio/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show branches, staged files and working tree changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(func(r *repo.Repo) error {
				st, err := r.Status()
				if err != nil {
					return err
				}
				printStatus(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}
}

func printStatus(out io.Writer, st *repo.StatusReport) {
	header := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	fmt.Fprintln(out, header("=== Branches ==="))
	for _, b := range st.Branches {
		if b == st.Current {
			fmt.Fprintf(out, "*%s\n", green(b))
		} else {
			fmt.Fprintln(out, b)
		}
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, header("=== Staged Files ==="))
	for _, p := range st.Staged {
		fmt.Fprintln(out, p)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, header("=== Removed Files ==="))
	for _, p := range st.Removed {
		fmt.Fprintln(out, p)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, header("=== Modifications Not Staged For Commit ==="))
	for _, c := range st.Unstaged {
		fmt.Fprintf(out, "%s (%s)\n", c.Path, c.Kind)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, header("=== Untracked Files ==="))
	for _, p := range st.Untracked {
		fmt.Fprintln(out, p)
	}
	fmt.Fprintln(out)
}
