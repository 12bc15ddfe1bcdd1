package main

import (
	"github.com/odvcencio/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <branch> | checkout -- <file> | checkout <commit> -- <file>",
		Short: "Switch branches or restore a file from a commit",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dash := cmd.ArgsLenAtDash()

			return withRepo(func(r *repo.Repo) error {
				switch {
				case dash == -1 && len(args) == 1:
					return r.CheckoutBranch(args[0])
				case dash == 0 && len(args) == 1:
					return r.CheckoutFile(args[0], "")
				case dash == 1 && len(args) == 2:
					return r.CheckoutFile(args[1], args[0])
				default:
					return errIncorrectOperands
				}
			})
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <commit>",
		Short: "Move the current branch to a commit and check out its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(func(r *repo.Repo) error {
				return r.Reset(args[0])
			})
		},
	}
}
