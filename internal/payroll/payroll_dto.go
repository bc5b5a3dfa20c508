package payroll

import (
	"time"

	"github.com/Philgatex/huashang-hais-app/internal/employee"

	"github.com/shopspring/decimal"
)

type RunPayrollRequest struct {
	EmployeeIDs []string `json:"employee_ids" binding:"required,min=1,dive,required"`
	Period      string   `json:"period" binding:"required"`
	ClientID    string   `json:"client_id"`
	// ScopeToClient treats employees of other clients as not found.
	ScopeToClient bool `json:"-"`
}

type RunSummary struct {
	Success            bool            `json:"success"`
	Message            string          `json:"message"`
	PayslipsGenerated  int             `json:"payslips_generated"`
	TotalNetPay        decimal.Decimal `json:"total_net_pay"`
	TotalDeductions    decimal.Decimal `json:"total_deductions"`
	AuditID            string          `json:"audit_id"`
	Reference          string          `json:"reference"`
	PayslipIDs         []string        `json:"payslip_ids"`
	SkippedEmployeeIDs []string        `json:"skipped_employee_ids"`
}

// PayslipFilter narrows payslip listings; empty fields match everything.
type PayslipFilter struct {
	Period     string
	ClientID   string
	EmployeeID string
	AuditID    string
}

type AllowanceResponse struct {
	Housing   decimal.Decimal `json:"housing"`
	Transport decimal.Decimal `json:"transport"`
	Other     decimal.Decimal `json:"other"`
}

type DeductionResponse struct {
	PAYE        decimal.Decimal            `json:"paye"`
	NSSF        Contribution               `json:"nssf"`
	SHIF        decimal.Decimal            `json:"shif"`
	AHL         Contribution               `json:"ahl"`
	NITA        EmployerContribution       `json:"nita"`
	HELB        decimal.Decimal            `json:"helb"`
	NHIF        decimal.Decimal            `json:"nhif"`
	Custom      []employee.CustomDeduction `json:"custom"`
	CustomTotal decimal.Decimal            `json:"custom_total"`
	Total       decimal.Decimal            `json:"total"`
}

type PayslipResponse struct {
	ID             string            `json:"id"`
	AuditID        string            `json:"audit_id"`
	EmployeeID     string            `json:"employee_id"`
	EmployeeNumber string            `json:"employee_number"`
	EmployeeName   string            `json:"employee_name"`
	Period         string            `json:"period"`
	ClientID       *string           `json:"client_id,omitempty"`
	GrossSalary    decimal.Decimal   `json:"gross_salary"`
	Allowances     AllowanceResponse `json:"allowances"`
	TaxablePay     decimal.Decimal   `json:"taxable_pay"`
	Deductions     DeductionResponse `json:"deductions"`
	NetPay         decimal.Decimal   `json:"net_pay"`
	PaymentMethod  string            `json:"payment_method,omitempty"`
	BankName       string            `json:"bank_name,omitempty"`
	AccountNumber  string            `json:"account_number,omitempty"`
	Phone          string            `json:"phone,omitempty"`
	RateVersion    string            `json:"rate_version"`
	GeneratedAt    time.Time         `json:"generated_at"`
}

type AuditResponse struct {
	ID                 string          `json:"id"`
	Reference          string          `json:"reference"`
	Period             string          `json:"period"`
	ClientID           *string         `json:"client_id,omitempty"`
	Status             string          `json:"status"`
	TotalNetPay        decimal.Decimal `json:"total_net_pay"`
	TotalDeductions    decimal.Decimal `json:"total_deductions"`
	PayslipIDs         []string        `json:"payslip_ids"`
	SkippedEmployeeIDs []string        `json:"skipped_employee_ids"`
	RateVersion        string          `json:"rate_version"`
	ExecutedBy         string          `json:"executed_by"`
	ExecutedAt         time.Time       `json:"executed_at"`
}

// PaymentExportRow is one line of the bank / M-Pesa disbursement file.
type PaymentExportRow struct {
	PayslipID      string `csv:"payslip_id"`
	EmployeeNumber string `csv:"employee_number"`
	EmployeeName   string `csv:"employee_name"`
	Period         string `csv:"period"`
	PaymentMethod  string `csv:"payment_method"`
	BankName       string `csv:"bank_name"`
	AccountNumber  string `csv:"account_number"`
	Phone          string `csv:"phone"`
	NetPay         string `csv:"net_pay"`
}
