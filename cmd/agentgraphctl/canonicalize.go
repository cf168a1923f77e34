package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xyzen-dev/agentgraph/canon"
	"github.com/xyzen-dev/agentgraph/parser"
)

// newCanonicalizeCmd prints a v3 config's canonical JSON form and its
// content hash, the same value the compiler and marketplace snapshot diff
// would see.
func newCanonicalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "canonicalize",
		Short: "Print the canonical JSON form and content hash of a v3 graph config",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := loadConfigBytes(configPath)
			if err != nil {
				return err
			}
			cfg, err := parser.Parse(raw)
			if err != nil {
				return err
			}
			canonical := canon.Canonicalize(*cfg)

			out, err := canon.CanonicalJSON(canonical)
			if err != nil {
				return err
			}
			hash, err := canon.Hash(canonical)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			fmt.Fprintf(cmd.OutOrStdout(), "hash: %s\n", hash)
			return nil
		},
	}
}
