package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/odvcencio/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

func newBranchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "branch [name]",
		Short: "Create a branch at the current commit, or list branches",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(func(r *repo.Repo) error {
				if len(args) == 1 {
					return r.CreateBranch(args[0])
				}

				branches, err := r.ListBranches()
				if err != nil {
					return err
				}
				current, err := r.CurrentBranch()
				if err != nil {
					return err
				}

				green := color.New(color.FgGreen).SprintFunc()
				out := cmd.OutOrStdout()
				for _, b := range branches {
					if b == current {
						fmt.Fprintf(out, "* %s\n", green(b))
					} else {
						fmt.Fprintf(out, "  %s\n", b)
					}
				}
				return nil
			})
		},
	}
}

func newRmBranchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm-branch <name>",
		Short: "Delete a branch pointer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(func(r *repo.Repo) error {
				return r.DeleteBranch(args[0])
			})
		},
	}
}
