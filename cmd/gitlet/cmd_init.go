package main

import (
	"fmt"

	"github.com/odvcencio/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an empty repository in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Init(".")
			if err != nil {
				return err
			}
			defer r.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized empty gitlet repository in %s\n", r.MetaDir)
			return nil
		},
	}
}
