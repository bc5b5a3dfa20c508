package payroll

import (
	"github.com/Philgatex/huashang-hais-app/internal/employee"
	"github.com/Philgatex/huashang-hais-app/internal/payroll/rates"

	"github.com/shopspring/decimal"
)

type Calculation struct {
	Income     Income
	Deductions Deductions
	// NetPay is not clamped; a negative value is reported as is.
	NetPay decimal.Decimal
}

func Calculate(e employee.Employee, cfg rates.Config, pipeline []DeductionRule) Calculation {
	income := AssembleIncome(e)
	deductions := ApplyDeductions(pipeline, DeductionInput{
		Income:           income,
		CustomDeductions: e.CustomDeductions,
	}, cfg)

	return Calculation{
		Income:     income,
		Deductions: deductions,
		NetPay:     income.Taxable.Sub(deductions.TotalEmployee),
	}
}
