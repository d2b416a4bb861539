package main

import (
	"github.com/spf13/cobra"
)

// NewRoot builds the layout-proxy command tree.
func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "layout-proxy",
		Short:         "Layout service proxy that patches component fields",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		ServeCmd(),
		PatchCmd(),
	)
	return root
}
