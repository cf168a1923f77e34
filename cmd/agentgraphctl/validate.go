package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xyzen-dev/agentgraph/canon"
	"github.com/xyzen-dev/agentgraph/parser"
	"github.com/xyzen-dev/agentgraph/validate"
)

// newValidateCmd parses and validates a v3 graph config, printing every
// error found. It does not upgrade legacy payloads; use `upgrade` first.
func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a v3 graph config",
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
			errs := validate.Validate(canonical)
			if len(errs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "valid")
				return nil
			}
			for _, e := range errs {
				fmt.Fprintln(cmd.OutOrStdout(), e.String())
			}
			return fmt.Errorf("%d validation error(s)", len(errs))
		},
	}
}
