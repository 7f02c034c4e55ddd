package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"renamer/internal/rename"
)

func newCheckNameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-name <name>",
		Short: "Check that a name is a valid identifier",
		Long:  "Print the name in normalized form if it can be used as a new name, fail otherwise.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := rename.ValidateName(args[0])
			if err != nil {
				return fmt.Errorf("%q: %w", args[0], err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), name)
			return err
		},
	}
}
