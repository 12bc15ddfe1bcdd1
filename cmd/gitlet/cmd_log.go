package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/odvcencio/gitlet/pkg/object"
	"github.com/odvcencio/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

const logDateLayout = "Mon Jan 2 15:04:05 2006 -0700"

func newLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Show the current branch history along first parents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(func(r *repo.Repo) error {
				entries, err := r.Log()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, e := range entries {
					printLogEntry(out, e.Hash, e.Commit.Parents, e.Commit.Timestamp, e.Commit.Message)
				}
				return nil
			})
		},
	}
}

func newGlobalLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "global-log",
		Short: "Show every commit ever made",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(func(r *repo.Repo) error {
				commits, err := r.GlobalLog()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, c := range commits {
					printLogEntry(out, c.Hash, c.Parents, c.Timestamp, c.Message)
				}
				return nil
			})
		},
	}
}

func newFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <message>",
		Short: "Print the ids of all commits with the given message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(func(r *repo.Repo) error {
				hashes, err := r.Find(args[0])
				if err != nil {
					return err
				}
				for _, h := range hashes {
					fmt.Fprintln(cmd.OutOrStdout(), h)
				}
				return nil
			})
		},
	}
}

func printLogEntry(out io.Writer, h object.Hash, parents []object.Hash, ts int64, message string) {
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintln(out, "===")
	fmt.Fprintln(out, yellow("commit "+string(h)))
	if len(parents) == 2 {
		fmt.Fprintf(out, "Merge: %s %s\n", parents[0].Short(7), parents[1].Short(7))
	}
	fmt.Fprintf(out, "Date: %s\n", time.Unix(ts, 0).Format(logDateLayout))
	fmt.Fprintln(out, message)
	fmt.Fprintln(out)
}
