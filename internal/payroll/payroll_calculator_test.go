package payroll_test

import (
	"testing"

	"github.com/Philgatex/huashang-hais-app/internal/employee"
	"github.com/Philgatex/huashang-hais-app/internal/payroll"
	"github.com/Philgatex/huashang-hais-app/internal/payroll/rates"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func assertDec(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "%s: want %s, got %s", field, want, got.String())
}

func TestCalculate_GoldenGross75000(t *testing.T) {
	e := employee.Employee{ID: "e1", Name: "Golden", GrossSalary: dec("75000")}

	calc := payroll.Calculate(e, rates.Default(), payroll.DefaultPipeline())

	assertDec(t, "75000", calc.Income.Taxable, "taxable")
	assertDec(t, "11500.05", calc.Deductions.PAYE, "paye")
	assertDec(t, "1080", calc.Deductions.NSSF.Employee, "nssf employee")
	assertDec(t, "1080", calc.Deductions.NSSF.Employer, "nssf employer")
	assertDec(t, "2062.5", calc.Deductions.SHIF, "shif")
	assertDec(t, "1125", calc.Deductions.AHL.Employee, "ahl employee")
	assertDec(t, "1125", calc.Deductions.AHL.Employer, "ahl employer")
	assertDec(t, "50", calc.Deductions.NITA.Employer, "nita")
	assertDec(t, "1400", calc.Deductions.NHIF, "nhif")
	assertDec(t, "0", calc.Deductions.HELB, "helb")
	assertDec(t, "0", calc.Deductions.CustomTotal, "custom")
	assertDec(t, "17167.55", calc.Deductions.TotalEmployee, "total")
	assertDec(t, "57832.45", calc.NetPay, "net pay")
}

func TestCalculate_ZeroAllowancesFormula(t *testing.T) {
	cfg := rates.Default()
	for _, gross := range []string{"0", "15000", "24000", "24000.01", "32333", "50000", "100000", "250000.75"} {
		e := employee.Employee{GrossSalary: dec(gross)}

		calc := payroll.Calculate(e, cfg, payroll.DefaultPipeline())

		d := calc.Deductions
		want := dec(gross).Sub(d.PAYE.Add(d.NSSF.Employee).Add(d.SHIF).Add(d.AHL.Employee).Add(d.NHIF))
		assert.True(t, want.Equal(calc.NetPay), "gross %s", gross)
	}
}

func TestCalculate_AllowancesAndCustomDeductions(t *testing.T) {
	e := employee.Employee{
		GrossSalary:        dec("50000"),
		HousingAllowance:   dec("10000"),
		TransportAllowance: dec("5000"),
		OtherAllowance:     dec("2500"),
		CustomDeductions: []employee.CustomDeduction{
			{Name: "Sacco", Amount: dec("3000")},
			{Name: "HELB Loan Repayment", Amount: dec("1500")},
			{Name: "Welfare", Amount: dec("200")},
		},
	}

	calc := payroll.Calculate(e, rates.Default(), payroll.DefaultPipeline())

	assertDec(t, "17500", calc.Income.TotalAllowances, "allowances")
	assertDec(t, "67500", calc.Income.Taxable, "taxable")
	assertDec(t, "1856.25", calc.Deductions.SHIF, "shif on gross plus allowances")
	assertDec(t, "1300", calc.Deductions.NHIF, "nhif")
	assertDec(t, "1500", calc.Deductions.HELB, "helb")
	assertDec(t, "3200", calc.Deductions.CustomTotal, "custom")
	assert.Len(t, calc.Deductions.Custom, 3)

	// paye = 0.10*(67500-24000) + 0.15*(67500-32333)
	assertDec(t, "9625.05", calc.Deductions.PAYE, "paye")
	total := dec("9625.05").Add(dec("1080")).Add(dec("1856.25")).Add(dec("1012.5")).
		Add(dec("1300")).Add(dec("1500")).Add(dec("3200"))
	assert.True(t, total.Equal(calc.Deductions.TotalEmployee))
	assert.True(t, dec("67500").Sub(total).Equal(calc.NetPay))
}

func TestCalculate_NegativeNetPayIsNotClamped(t *testing.T) {
	e := employee.Employee{
		GrossSalary:      dec("5000"),
		CustomDeductions: []employee.CustomDeduction{{Name: "Advance", Amount: dec("10000")}},
	}

	calc := payroll.Calculate(e, rates.Default(), payroll.DefaultPipeline())

	assert.True(t, calc.NetPay.IsNegative())
	assert.True(t, dec("5000").Sub(calc.Deductions.TotalEmployee).Equal(calc.NetPay))
}

func TestCalculate_EmployerContributionsStayOutOfTotal(t *testing.T) {
	cfg := rates.Default()
	cfg.NSSF.Employer = dec("99999")
	cfg.NITAEmployer = dec("99999")
	cfg.AHL.Employer = dec("0.5")

	e := employee.Employee{GrossSalary: dec("75000")}

	calc := payroll.Calculate(e, cfg, payroll.DefaultPipeline())

	assertDec(t, "17167.55", calc.Deductions.TotalEmployee, "total")
	assertDec(t, "37500", calc.Deductions.AHL.Employer, "ahl employer")
}

func TestPAYE_AdditiveBands(t *testing.T) {
	bands := []rates.PAYEBand{
		{Floor: dec("10000"), Rate: dec("0.1")},
		{Floor: dec("20000"), Rate: dec("0.2")},
		{Floor: dec("30000"), Rate: dec("0.3")},
	}

	assertDec(t, "0", payroll.PAYE(dec("10000"), bands), "at first floor")
	assertDec(t, "500", payroll.PAYE(dec("15000"), bands), "first band only")
	// every exceeded band charges the full excess over its own floor
	assertDec(t, "7000", payroll.PAYE(dec("35000"), bands), "three bands")
}

func TestPAYE_MonotonicInTaxable(t *testing.T) {
	bands := rates.Default().PAYEBands
	prev := payroll.PAYE(decimal.Zero, bands)
	for i := int64(0); i <= 200000; i += 250 {
		cur := payroll.PAYE(decimal.NewFromInt(i), bands)
		assert.True(t, cur.GreaterThanOrEqual(prev), "taxable %d", i)
		prev = cur
	}
}

func TestHELB_OrderIndependent(t *testing.T) {
	items := []employee.CustomDeduction{
		{Name: "helb", Amount: dec("1000")},
		{Name: "Sacco", Amount: dec("2500")},
		{Name: "Old HELB arrears", Amount: dec("400")},
		{Name: "Union dues", Amount: dec("150.50")},
	}

	base := employee.Employee{GrossSalary: dec("60000")}
	var helb, custom []decimal.Decimal
	permute(items, func(p []employee.CustomDeduction) {
		e := base
		e.CustomDeductions = p
		calc := payroll.Calculate(e, rates.Default(), payroll.DefaultPipeline())
		helb = append(helb, calc.Deductions.HELB)
		custom = append(custom, calc.Deductions.CustomTotal)
	})

	assert.Len(t, helb, 24)
	for i := range helb {
		assertDec(t, "1400", helb[i], "helb")
		assertDec(t, "2650.5", custom[i], "custom")
	}
}

func TestIsHELB(t *testing.T) {
	assert.True(t, payroll.IsHELB("HELB"))
	assert.True(t, payroll.IsHELB("monthly Helb loan"))
	assert.False(t, payroll.IsHELB("Sacco"))
	assert.False(t, payroll.IsHELB(""))
}

func TestApplyDeductions_CustomRuleExtendsPipeline(t *testing.T) {
	pipeline := append(payroll.DefaultPipeline(), payroll.DeductionRule{
		Name: "pension",
		Apply: func(in payroll.DeductionInput, _ rates.Config) decimal.Decimal {
			return in.Income.Gross.Mul(dec("0.05"))
		},
	})

	d := payroll.ApplyDeductions(pipeline, payroll.DeductionInput{
		Income: payroll.AssembleIncome(employee.Employee{GrossSalary: dec("75000")}),
	}, rates.Default())

	names := make([]string, len(d.Lines))
	for i, l := range d.Lines {
		names[i] = l.Name
	}
	assert.Equal(t, []string{"paye", "nssf", "shif", "ahl", "nhif", "helb", "custom", "pension"}, names)
	assertDec(t, "20917.55", d.TotalEmployee, "total with pension")
}

func TestAssembleIncome_MissingValuesAreZero(t *testing.T) {
	in := payroll.AssembleIncome(employee.Employee{})

	assert.True(t, in.Taxable.IsZero())
	assert.True(t, in.TotalAllowances.IsZero())
}

func permute(items []employee.CustomDeduction, fn func([]employee.CustomDeduction)) {
	var rec func(int)
	rec = func(k int) {
		if k == len(items) {
			cp := append([]employee.CustomDeduction(nil), items...)
			fn(cp)
			return
		}
		for i := k; i < len(items); i++ {
			items[k], items[i] = items[i], items[k]
			rec(k + 1)
			items[k], items[i] = items[i], items[k]
		}
	}
	rec(0)
}
