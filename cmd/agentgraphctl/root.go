package main

import (
	"github.com/spf13/cobra"
)

var configPath string

// NewRootCmd wires the cobra tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "agentgraphctl",
		Short:         "Validate, upgrade, canonicalize, and run agent graph configs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "file", "f", "", "Path to a graph config file (JSON or YAML)")

	root.AddCommand(
		newValidateCmd(),
		newUpgradeCmd(),
		newCanonicalizeCmd(),
		newRunCmd(),
	)
	return root
}
