package payroll

import (
	"strings"

	"github.com/Philgatex/huashang-hais-app/internal/employee"
	"github.com/Philgatex/huashang-hais-app/internal/payroll/rates"

	"github.com/shopspring/decimal"
)

const (
	RulePAYE   = "paye"
	RuleNSSF   = "nssf"
	RuleSHIF   = "shif"
	RuleAHL    = "ahl"
	RuleNHIF   = "nhif"
	RuleHELB   = "helb"
	RuleCustom = "custom"
)

type DeductionInput struct {
	Income           Income
	CustomDeductions []employee.CustomDeduction
}

// DeductionRule computes one employee-side deduction. Apply must be pure.
type DeductionRule struct {
	Name  string
	Apply func(DeductionInput, rates.Config) decimal.Decimal
}

// DefaultPipeline is the statutory rule set followed by the employee's own
// deductions. Order only affects the order of Deductions.Lines.
func DefaultPipeline() []DeductionRule {
	return []DeductionRule{
		{Name: RulePAYE, Apply: func(in DeductionInput, cfg rates.Config) decimal.Decimal {
			return PAYE(in.Income.Taxable, cfg.PAYEBands)
		}},
		{Name: RuleNSSF, Apply: func(_ DeductionInput, cfg rates.Config) decimal.Decimal {
			return cfg.NSSF.Employee
		}},
		{Name: RuleSHIF, Apply: func(in DeductionInput, cfg rates.Config) decimal.Decimal {
			return cfg.SHIFRate.Mul(contributionBase(in.Income))
		}},
		{Name: RuleAHL, Apply: func(in DeductionInput, cfg rates.Config) decimal.Decimal {
			return cfg.AHL.Employee.Mul(contributionBase(in.Income))
		}},
		{Name: RuleNHIF, Apply: func(in DeductionInput, cfg rates.Config) decimal.Decimal {
			return cfg.NHIFAmount(in.Income.Taxable)
		}},
		{Name: RuleHELB, Apply: func(in DeductionInput, _ rates.Config) decimal.Decimal {
			helb, _ := splitCustom(in.CustomDeductions)
			return helb
		}},
		{Name: RuleCustom, Apply: func(in DeductionInput, _ rates.Config) decimal.Decimal {
			_, rest := splitCustom(in.CustomDeductions)
			return rest
		}},
	}
}

// PAYE sums rate × (taxable − floor) over every band whose floor the income
// exceeds. See rates.PAYEBand for why the bands stack.
func PAYE(taxable decimal.Decimal, bands []rates.PAYEBand) decimal.Decimal {
	total := decimal.Zero
	for _, b := range bands {
		if taxable.GreaterThan(b.Floor) {
			total = total.Add(b.Rate.Mul(taxable.Sub(b.Floor)))
		}
	}
	return total
}

func IsHELB(name string) bool {
	return strings.Contains(strings.ToLower(name), "helb")
}

// splitCustom returns the HELB amount and the total of everything else.
// Several HELB entries are summed so the result does not depend on order.
func splitCustom(items []employee.CustomDeduction) (helb, rest decimal.Decimal) {
	helb, rest = decimal.Zero, decimal.Zero
	for _, d := range items {
		if IsHELB(d.Name) {
			helb = helb.Add(d.Amount)
			continue
		}
		rest = rest.Add(d.Amount)
	}
	return helb, rest
}

func contributionBase(in Income) decimal.Decimal {
	return in.Gross.Add(in.TotalAllowances)
}

type Contribution struct {
	Employee decimal.Decimal `json:"employee"`
	Employer decimal.Decimal `json:"employer"`
}

type EmployerContribution struct {
	Employer decimal.Decimal `json:"employer"`
}

type DeductionLine struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type Deductions struct {
	PAYE          decimal.Decimal            `json:"paye"`
	NSSF          Contribution               `json:"nssf"`
	SHIF          decimal.Decimal            `json:"shif"`
	AHL           Contribution               `json:"ahl"`
	NITA          EmployerContribution       `json:"nita"`
	HELB          decimal.Decimal            `json:"helb"`
	NHIF          decimal.Decimal            `json:"nhif"`
	Custom        []employee.CustomDeduction `json:"custom"`
	CustomTotal   decimal.Decimal            `json:"custom_total"`
	Lines         []DeductionLine            `json:"lines"`
	TotalEmployee decimal.Decimal            `json:"total_employee"`
}

// ApplyDeductions runs every rule once and totals the employee side. Employer
// contributions are filled in alongside and never enter TotalEmployee.
func ApplyDeductions(pipeline []DeductionRule, in DeductionInput, cfg rates.Config) Deductions {
	d := Deductions{
		NSSF: Contribution{Employer: cfg.NSSF.Employer},
		AHL:  Contribution{Employer: cfg.AHL.Employer.Mul(contributionBase(in.Income))},
		NITA: EmployerContribution{Employer: cfg.NITAEmployer},
		// copied so the breakdown does not alias the employee record
		Custom:        append([]employee.CustomDeduction{}, in.CustomDeductions...),
		Lines:         make([]DeductionLine, 0, len(pipeline)),
		TotalEmployee: decimal.Zero,
	}

	for _, rule := range pipeline {
		amount := rule.Apply(in, cfg)
		d.Lines = append(d.Lines, DeductionLine{Name: rule.Name, Amount: amount})
		d.TotalEmployee = d.TotalEmployee.Add(amount)

		switch rule.Name {
		case RulePAYE:
			d.PAYE = amount
		case RuleNSSF:
			d.NSSF.Employee = amount
		case RuleSHIF:
			d.SHIF = amount
		case RuleAHL:
			d.AHL.Employee = amount
		case RuleNHIF:
			d.NHIF = amount
		case RuleHELB:
			d.HELB = amount
		case RuleCustom:
			d.CustomTotal = amount
		}
	}

	return d
}
