package main

import (
	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "threadevent",
		Short: "In-process event dispatch engine",
		Long: `threadevent dispatches typed events to the listeners registered for
their exact type, in registration order, tracking processing time and
routing listener failures to a pluggable exception handler.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP("config", "c", "", "config file (.yaml, .yml or .json)")

	root.AddCommand(newDemoCmd())
	return root
}
