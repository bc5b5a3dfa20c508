package payroll

import (
	"github.com/Philgatex/huashang-hais-app/internal/employee"

	"github.com/shopspring/decimal"
)

type Income struct {
	Gross           decimal.Decimal
	Housing         decimal.Decimal
	Transport       decimal.Decimal
	Other           decimal.Decimal
	TotalAllowances decimal.Decimal
	Taxable         decimal.Decimal
}

// AssembleIncome adds the allowances to gross salary. Unset amounts are zero.
func AssembleIncome(e employee.Employee) Income {
	in := Income{
		Gross:     e.GrossSalary,
		Housing:   e.HousingAllowance,
		Transport: e.TransportAllowance,
		Other:     e.OtherAllowance,
	}
	in.TotalAllowances = in.Housing.Add(in.Transport).Add(in.Other)
	in.Taxable = in.Gross.Add(in.TotalAllowances)
	return in
}
