package employee

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CustomDeduction struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// Employee is the roster record the payroll engine reads. Salary figures are
// monthly amounts; a zero allowance means the allowance is absent.
type Employee struct {
	ID             string  `gorm:"type:varchar(64);primaryKey"`
	EmployeeNumber string  `gorm:"type:varchar(32);uniqueIndex:uq_employee_number"`
	Name           string  `gorm:"type:varchar(160);not null"`
	Email          string  `gorm:"type:varchar(160);uniqueIndex:uq_employee_email"`
	Role           string  `gorm:"type:varchar(40)"`
	Department     string  `gorm:"type:varchar(120)"`
	ClientID       *string `gorm:"type:varchar(64);index"`

	// ManagerID is the supervisor's employee id; it decides whose requests
	// show up in that supervisor's approval queue.
	ManagerID *string `gorm:"type:varchar(64);index"`

	GrossSalary        decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	HousingAllowance   decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	TransportAllowance decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	OtherAllowance     decimal.Decimal `gorm:"type:numeric;not null;default:0"`

	CustomDeductions []CustomDeduction `gorm:"type:jsonb;serializer:json"`

	PaymentMethod string `gorm:"type:varchar(40)"`
	BankName      string `gorm:"type:varchar(120)"`
	AccountNumber string `gorm:"type:varchar(64)"`
	Phone         string `gorm:"type:varchar(32)"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
