package main

import (
	"errors"
	"fmt"

	"github.com/Philgatex/huashang-hais-app/internal/app"
	"github.com/Philgatex/huashang-hais-app/internal/config"
	"github.com/Philgatex/huashang-hais-app/internal/employee"
	"github.com/Philgatex/huashang-hais-app/internal/messaging/kafka"
	"github.com/Philgatex/huashang-hais-app/internal/payroll"
	"github.com/Philgatex/huashang-hais-app/internal/payroll/rates"
	"github.com/Philgatex/huashang-hais-app/internal/shared/clock"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const cliActor = "payrollctl"

func newRunCmd() *cobra.Command {
	var req payroll.RunPayrollRequest
	var actor string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process payroll for a period and print the run summary",
		Example: `  payrollctl run --period "June 2024" --employee emp-1 --employee emp-2
  payrollctl run --period "June 2024" --client client-acme --employee emp-9`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(req.EmployeeIDs) == 0 {
				return errors.New("at least one --employee is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			rateCfg, err := rates.Load(cfg.RatesFile)
			if err != nil {
				return err
			}

			logger := zap.L().Named("payrollctl")
			stores, err := app.OpenStores(cfg, logger)
			if err != nil {
				return err
			}
			defer stores.Close()

			svc := payroll.NewService(
				stores.SQL,
				payroll.NewRepository(stores.GORM),
				employee.NewRepository(stores.GORM),
				kafka.NewOutboxRepository(stores.SQL),
				rateCfg, clock.System(), cfg.PayrollWorkers, logger,
			)

			summary, err := svc.Run(cmd.Context(), actor, req)
			if err != nil {
				return fmt.Errorf("payroll run failed: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().StringVar(&req.Period, "period", "", `pay period label, e.g. "June 2024"`)
	cmd.Flags().StringSliceVar(&req.EmployeeIDs, "employee", nil, "employee id to include (repeatable)")
	cmd.Flags().StringVar(&req.ClientID, "client", "", "client the run is executed for")
	cmd.Flags().StringVar(&actor, "actor", cliActor, "identity recorded on the audit")
	_ = cmd.MarkFlagRequired("period")

	return cmd
}
