package main

import (
	"fmt"
	"strings"

	"github.com/odvcencio/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

func newCommitCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "commit [message]",
		Short: "Record staged changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if message != "" {
					return errIncorrectOperands
				}
				message = args[0]
			}

			return withRepo(func(r *repo.Repo) error {
				h, err := r.Commit(message)
				if err != nil {
					return err
				}
				branch, err := r.CurrentBranch()
				if err != nil {
					return err
				}
				subject, _, _ := strings.Cut(message, "\n")
				fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", branch, h.Short(7), subject)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	return cmd
}
