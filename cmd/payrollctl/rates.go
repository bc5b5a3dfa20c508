package main

import (
	"fmt"

	"github.com/Philgatex/huashang-hais-app/internal/payroll/rates"

	"github.com/spf13/cobra"
)

func newRatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Inspect statutory rate files",
	}

	var file string
	cmd.PersistentFlags().StringVarP(&file, "file", "f", "", "rate file (yaml, json or toml); built-in defaults when empty")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective rate configuration",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := rates.Load(file)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), cfg)
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Check a rate file without running payroll",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := rates.Load(file)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "rate config %s is valid\n", cfg.Version)
				return err
			},
		},
	)
	return cmd
}
