package main

import (
	"github.com/odvcencio/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <file>...",
		Short: "Stage files for the next commit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(func(r *repo.Repo) error {
				return r.Add(args)
			})
		},
	}
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <file>",
		Short: "Unstage a file, or stage its removal and delete it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(func(r *repo.Repo) error {
				return r.Remove(args[0])
			})
		},
	}
}
