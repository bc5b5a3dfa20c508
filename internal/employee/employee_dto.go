package employee

import "github.com/shopspring/decimal"

type CustomDeductionRequest struct {
	Name   string          `json:"name" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

type SalaryRequest struct {
	Gross     decimal.Decimal `json:"gross"`
	Housing   decimal.Decimal `json:"housing"`
	Transport decimal.Decimal `json:"transport"`
	Other     decimal.Decimal `json:"other"`
}

type PaymentDetailsRequest struct {
	Method        string `json:"method" binding:"omitempty,oneof=Bank M-Pesa Cash Cheque"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	Phone         string `json:"phone"`
}

type CreateEmployeeRequest struct {
	ID               string                   `json:"id"`
	EmployeeNumber   string                   `json:"employee_number"`
	Name             string                   `json:"name" binding:"required"`
	Email            string                   `json:"email" binding:"required,email"`
	Role             string                   `json:"role"`
	Department       string                   `json:"department"`
	ClientID         *string                  `json:"client_id"`
	ManagerID        *string                  `json:"manager_id"`
	Salary           SalaryRequest            `json:"salary"`
	CustomDeductions []CustomDeductionRequest `json:"custom_deductions" binding:"omitempty,dive"`
	PaymentDetails   PaymentDetailsRequest    `json:"payment_details"`
}

type UpdateEmployeeRequest struct {
	EmployeeNumber   string                   `json:"employee_number" binding:"required"`
	Name             string                   `json:"name" binding:"required"`
	Email            string                   `json:"email" binding:"required,email"`
	Role             string                   `json:"role"`
	Department       string                   `json:"department"`
	ClientID         *string                  `json:"client_id"`
	ManagerID        *string                  `json:"manager_id"`
	Salary           SalaryRequest            `json:"salary"`
	CustomDeductions []CustomDeductionRequest `json:"custom_deductions" binding:"omitempty,dive"`
	PaymentDetails   PaymentDetailsRequest    `json:"payment_details"`
}

type SalaryResponse struct {
	Gross      decimal.Decimal   `json:"gross"`
	Allowances AllowanceResponse `json:"allowances"`
}

type AllowanceResponse struct {
	Housing   decimal.Decimal `json:"housing"`
	Transport decimal.Decimal `json:"transport"`
	Other     decimal.Decimal `json:"other"`
}

type PaymentDetailsResponse struct {
	Method        string `json:"method,omitempty"`
	BankName      string `json:"bank_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	Phone         string `json:"phone,omitempty"`
}

type EmployeeResponse struct {
	ID               string                 `json:"id"`
	EmployeeNumber   string                 `json:"employee_number"`
	Name             string                 `json:"name"`
	Email            string                 `json:"email"`
	Role             string                 `json:"role,omitempty"`
	Department       string                 `json:"department,omitempty"`
	ClientID         *string                `json:"client_id,omitempty"`
	ManagerID        *string                `json:"manager_id,omitempty"`
	Salary           SalaryResponse         `json:"salary"`
	CustomDeductions []CustomDeduction      `json:"custom_deductions"`
	PaymentDetails   PaymentDetailsResponse `json:"payment_details"`
}

// EmployeeOptionResponse is the light projection used by pickers on the payroll run form.
type EmployeeOptionResponse struct {
	ID             string `json:"id"`
	EmployeeNumber string `json:"employee_number"`
	Name           string `json:"name"`
}
