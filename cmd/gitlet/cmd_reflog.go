package main

import (
	"fmt"
	"time"

	"github.com/odvcencio/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

func newReflogCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "reflog [branch]",
		Short: "Show the update history of a branch ref",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			branch := ""
			if len(args) == 1 {
				branch = args[0]
			}

			return withRepo(func(r *repo.Repo) error {
				entries, err := r.ReadReflog(branch, limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, e := range entries {
					when := time.Unix(e.Timestamp, 0).Format(time.RFC3339)
					fmt.Fprintf(out, "%s %s %s\n", e.NewHash.Short(7), when, e.Reason)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most this many entries (0 for all)")
	return cmd
}

func newGcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gc",
		Short: "Delete blobs no commit or staged file references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(func(r *repo.Repo) error {
				sum, err := r.GC()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d reachable objects, %d pruned\n", sum.ReachableObjects, sum.PrunedObjects)
				return nil
			})
		},
	}
}
