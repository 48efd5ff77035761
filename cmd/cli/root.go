package main

import "github.com/spf13/cobra"

// NewRootCmd creates the root command for the dmnfeel CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dmnfeel",
		Short:         "dmnfeel - evaluate DMN decision models expressed in FEEL",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(NewRunCmd())
	return cmd
}
