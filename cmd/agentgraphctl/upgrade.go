package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xyzen-dev/agentgraph/canon"
	"github.com/xyzen-dev/agentgraph/upgrader"
)

// newUpgradeCmd migrates a v1/v2/v3 payload to canonical v3 and prints the
// result along with every warning collected along the way.
func newUpgradeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade a graph config to the canonical v3 shape",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := loadConfigBytes(configPath)
			if err != nil {
				return err
			}
			result, err := upgrader.Upgrade(raw)
			if err != nil {
				return err
			}
			for _, w := range result.Warnings {
				fmt.Fprintf(os.Stderr, "warning: %s (%s): %s\n", w.Code, w.Path, w.Message)
			}
			out, err := canon.CanonicalJSON(result.Config)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
