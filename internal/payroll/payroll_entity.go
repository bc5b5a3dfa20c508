package payroll

import (
	"time"

	"github.com/Philgatex/huashang-hais-app/internal/employee"

	"github.com/shopspring/decimal"
)

const (
	AuditStatusOpen   = "Open"
	AuditStatusClosed = "Closed"
)

// Payslip is written once per employee per run and never updated.
type Payslip struct {
	ID             string  `gorm:"type:varchar(64);primaryKey"`
	AuditID        string  `gorm:"type:varchar(64);not null;index"`
	EmployeeID     string  `gorm:"type:varchar(64);not null;index:idx_payslip_employee_period"`
	EmployeeNumber string  `gorm:"type:varchar(32)"`
	EmployeeName   string  `gorm:"type:varchar(160)"`
	Period         string  `gorm:"type:varchar(40);not null;index:idx_payslip_employee_period"`
	ClientID       *string `gorm:"type:varchar(64);index"`

	GrossSalary        decimal.Decimal `gorm:"type:numeric;not null"`
	HousingAllowance   decimal.Decimal `gorm:"type:numeric;not null"`
	TransportAllowance decimal.Decimal `gorm:"type:numeric;not null"`
	OtherAllowance     decimal.Decimal `gorm:"type:numeric;not null"`
	TaxablePay         decimal.Decimal `gorm:"type:numeric;not null"`

	PAYE                  decimal.Decimal            `gorm:"column:paye;type:numeric;not null"`
	NSSFEmployee          decimal.Decimal            `gorm:"column:nssf_employee;type:numeric;not null"`
	NSSFEmployer          decimal.Decimal            `gorm:"column:nssf_employer;type:numeric;not null"`
	SHIF                  decimal.Decimal            `gorm:"column:shif;type:numeric;not null"`
	AHLEmployee           decimal.Decimal            `gorm:"column:ahl_employee;type:numeric;not null"`
	AHLEmployer           decimal.Decimal            `gorm:"column:ahl_employer;type:numeric;not null"`
	NITAEmployer          decimal.Decimal            `gorm:"column:nita_employer;type:numeric;not null"`
	HELB                  decimal.Decimal            `gorm:"column:helb;type:numeric;not null"`
	NHIF                  decimal.Decimal            `gorm:"column:nhif;type:numeric;not null"`
	CustomDeductions      []employee.CustomDeduction `gorm:"type:jsonb;serializer:json"`
	CustomDeductionsTotal decimal.Decimal            `gorm:"type:numeric;not null"`
	TotalDeductions       decimal.Decimal            `gorm:"type:numeric;not null"`
	NetPay                decimal.Decimal            `gorm:"type:numeric;not null"`

	PaymentMethod string `gorm:"type:varchar(40)"`
	BankName      string `gorm:"type:varchar(120)"`
	AccountNumber string `gorm:"type:varchar(64)"`
	Phone         string `gorm:"type:varchar(32)"`

	RateVersion string    `gorm:"type:varchar(40)"`
	GeneratedAt time.Time `gorm:"not null"`
}

// PayrollAudit summarises one committed run. Only an external close step moves
// it from Open to Closed.
type PayrollAudit struct {
	ID                 string          `gorm:"type:varchar(64);primaryKey"`
	Reference          string          `gorm:"type:varchar(200);index"`
	Period             string          `gorm:"type:varchar(40);not null;index"`
	ClientID           *string         `gorm:"type:varchar(64);index"`
	Status             string          `gorm:"type:varchar(20);not null;default:'Open'"`
	TotalNetPay        decimal.Decimal `gorm:"type:numeric;not null"`
	TotalDeductions    decimal.Decimal `gorm:"type:numeric;not null"`
	PayslipIDs         []string        `gorm:"type:jsonb;serializer:json"`
	SkippedEmployeeIDs []string        `gorm:"type:jsonb;serializer:json"`
	RateVersion        string          `gorm:"type:varchar(40)"`
	ExecutedBy         string          `gorm:"type:varchar(64)"`
	ExecutedAt         time.Time       `gorm:"not null"`
}
