package payroll

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

func renderPayslipPDF(p Payslip) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payslip "+p.Period, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	header := []string{
		fmt.Sprintf("Employee: %s (%s)", p.EmployeeName, p.EmployeeNumber),
		"Period: " + p.Period,
		"Generated: " + p.GeneratedAt.Format("2006-01-02 15:04 MST"),
		"Rates: " + p.RateVersion,
	}
	for _, line := range header {
		pdf.Cell(0, 7, line)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	section(pdf, "Earnings")
	row(pdf, "Gross salary", p.GrossSalary)
	row(pdf, "Housing allowance", p.HousingAllowance)
	row(pdf, "Transport allowance", p.TransportAllowance)
	row(pdf, "Other allowance", p.OtherAllowance)
	row(pdf, "Taxable pay", p.TaxablePay)

	section(pdf, "Deductions")
	row(pdf, "PAYE", p.PAYE)
	row(pdf, "NSSF", p.NSSFEmployee)
	row(pdf, "SHIF", p.SHIF)
	row(pdf, "AHL", p.AHLEmployee)
	row(pdf, "NHIF", p.NHIF)
	row(pdf, "HELB", p.HELB)
	for _, d := range p.CustomDeductions {
		if IsHELB(d.Name) {
			continue
		}
		row(pdf, d.Name, d.Amount)
	}
	row(pdf, "Total deductions", p.TotalDeductions)

	section(pdf, "Employer contributions")
	row(pdf, "NSSF", p.NSSFEmployer)
	row(pdf, "AHL", p.AHLEmployer)
	row(pdf, "NITA", p.NITAEmployer)

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(120, 9, "Net pay", "T", 0, "L", false, 0, "")
	pdf.CellFormat(60, 9, p.NetPay.StringFixed(2), "T", 1, "R", false, 0, "")

	if p.PaymentMethod != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.Ln(2)
		pdf.Cell(0, 6, "Paid via "+paymentRoute(p))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
}

func row(pdf *gofpdf.Fpdf, label string, amount decimal.Decimal) {
	pdf.CellFormat(120, 6, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(60, 6, amount.StringFixed(2), "", 1, "R", false, 0, "")
}

func paymentRoute(p Payslip) string {
	switch {
	case p.BankName != "" && p.AccountNumber != "":
		return fmt.Sprintf("%s, %s %s", p.PaymentMethod, p.BankName, p.AccountNumber)
	case p.Phone != "":
		return fmt.Sprintf("%s, %s", p.PaymentMethod, p.Phone)
	default:
		return p.PaymentMethod
	}
}
