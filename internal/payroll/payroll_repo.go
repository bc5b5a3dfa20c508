package payroll

import (
	"context"
	"database/sql"

	"github.com/Philgatex/huashang-hais-app/internal/tenant"

	"gorm.io/gorm"
)

const payslipBatchSize = 200

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	CreatePayslips(ctx context.Context, payslips []Payslip) error
	CreateAudit(ctx context.Context, audit *PayrollAudit) error
	FindPayslipByID(ctx context.Context, id string) (*Payslip, error)
	ListPayslips(ctx context.Context, filter PayslipFilter) ([]Payslip, error)
	FindAuditByID(ctx context.Context, id string) (*PayrollAudit, error)
	ListAudits(ctx context.Context, clientID string) ([]PayrollAudit, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: tenant.OnTx(r.db, tx)}
}

func (r *repository) CreatePayslips(ctx context.Context, payslips []Payslip) error {
	if len(payslips) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(payslips, payslipBatchSize).Error
}

func (r *repository) CreateAudit(ctx context.Context, audit *PayrollAudit) error {
	return r.db.WithContext(ctx).Create(audit).Error
}

func (r *repository) FindPayslipByID(ctx context.Context, id string) (*Payslip, error) {
	var p Payslip
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) ListPayslips(ctx context.Context, filter PayslipFilter) ([]Payslip, error) {
	q := r.db.WithContext(ctx).Scopes(tenant.Scope(filter.ClientID))
	if filter.Period != "" {
		q = q.Where("period = ?", filter.Period)
	}
	if filter.EmployeeID != "" {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.AuditID != "" {
		q = q.Where("audit_id = ?", filter.AuditID)
	}

	var payslips []Payslip
	err := q.Order("generated_at DESC").Order("employee_number ASC").Find(&payslips).Error
	return payslips, err
}

func (r *repository) FindAuditByID(ctx context.Context, id string) (*PayrollAudit, error) {
	var a PayrollAudit
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) ListAudits(ctx context.Context, clientID string) ([]PayrollAudit, error) {
	var audits []PayrollAudit
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(clientID)).
		Order("executed_at DESC").
		Find(&audits).Error
	return audits, err
}
