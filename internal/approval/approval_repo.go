package approval

import (
	"context"
	"database/sql"
	"time"

	"github.com/Philgatex/huashang-hais-app/internal/tenant"

	"gorm.io/gorm"
)

type ListFilter struct {
	Pending bool
	// SubmitterIDs limits the result to these requesters; nil means everyone.
	SubmitterIDs []string
}

type Decision struct {
	Status    string
	DecidedBy string
	Note      *string
	DecidedAt time.Time
}

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *ApprovalRequest) error
	FindByID(ctx context.Context, id string) (*ApprovalRequest, error)
	List(ctx context.Context, filter ListFilter) ([]ApprovalRequest, error)
	// Decide moves a pending request to its final status. It reports false
	// when the request was no longer pending.
	Decide(ctx context.Context, id string, d Decision) (bool, error)
	// DirectReports lists the employee ids whose manager is managerID.
	DirectReports(ctx context.Context, managerID string) ([]string, error)
	// EmployeeName returns "" for unknown employees.
	EmployeeName(ctx context.Context, id string) (string, error)
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

func (r *repository) Create(ctx context.Context, a *ApprovalRequest) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*ApprovalRequest, error) {
	var a ApprovalRequest
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]ApprovalRequest, error) {
	q := r.db.WithContext(ctx).Model(&ApprovalRequest{})
	if filter.Pending {
		q = q.Where("status = ?", StatusPending).Order("submitted_at ASC")
	} else {
		q = q.Where("status <> ?", StatusPending).Order("decided_at DESC")
	}
	if filter.SubmitterIDs != nil {
		q = q.Where("submitter_id IN ?", filter.SubmitterIDs)
	}

	var items []ApprovalRequest
	err := q.Find(&items).Error
	return items, err
}

func (r *repository) Decide(ctx context.Context, id string, d Decision) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&ApprovalRequest{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]any{
			"status":        d.Status,
			"decided_by":    d.DecidedBy,
			"decision_note": d.Note,
			"decided_at":    d.DecidedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) DirectReports(ctx context.Context, managerID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).
		Table("employees").
		Where("manager_id = ?", managerID).
		Where("deleted_at IS NULL").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *repository) EmployeeName(ctx context.Context, id string) (string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Table("employees").
		Where("id = ?", id).
		Where("deleted_at IS NULL").
		Limit(1).
		Pluck("name", &names).Error
	if err != nil || len(names) == 0 {
		return "", err
	}
	return names[0], nil
}
