package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/odvcencio/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

func newMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <branch>",
		Short: "Merge a branch into the current branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(func(r *repo.Repo) error {
				out := cmd.OutOrStdout()

				report, err := r.Merge(args[0])
				var ff *repo.FastForwardError
				if errors.As(err, &ff) {
					if ff.Direction == repo.CurrentBehind {
						fmt.Fprintln(out, "Current branch fast-forwarded.")
					} else {
						fmt.Fprintln(out, "Given branch is an ancestor of the current branch.")
					}
					return nil
				}
				if err != nil {
					return err
				}

				if report.HasConflicts {
					red := color.New(color.FgRed).SprintFunc()
					for _, f := range report.Files {
						if f.Status == repo.MergeConflict {
							fmt.Fprintf(out, "%s %s\n", red("CONFLICT"), f.Path)
						}
					}
					fmt.Fprintln(out, sentence(repo.ErrMergeConflict.Error()))
				}
				return nil
			})
		},
	}
}
