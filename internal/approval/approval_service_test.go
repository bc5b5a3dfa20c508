package approval_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/Philgatex/huashang-hais-app/internal/approval"
	approvalerrors "github.com/Philgatex/huashang-hais-app/internal/approval/errors"
	"github.com/Philgatex/huashang-hais-app/internal/domain"
	"github.com/Philgatex/huashang-hais-app/internal/shared/apperror"
	"github.com/Philgatex/huashang-hais-app/internal/shared/clock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2024, 6, 28, 9, 30, 0, 0, time.UTC)

type fakeApprovalRepository struct {
	items   map[string]*approval.ApprovalRequest
	reports map[string][]string
	names   map[string]string
	created []approval.ApprovalRequest
	lists   []approval.ListFilter

	createFn func(ctx context.Context, a *approval.ApprovalRequest) error
	decideFn func(ctx context.Context, id string, d approval.Decision) (bool, error)
}

func (f *fakeApprovalRepository) WithTx(tx *sql.Tx) approval.Repository {
	return f
}

func (f *fakeApprovalRepository) Create(ctx context.Context, a *approval.ApprovalRequest) error {
	if f.createFn != nil {
		return f.createFn(ctx, a)
	}
	f.created = append(f.created, *a)
	return nil
}

func (f *fakeApprovalRepository) FindByID(ctx context.Context, id string) (*approval.ApprovalRequest, error) {
	a, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeApprovalRepository) List(ctx context.Context, filter approval.ListFilter) ([]approval.ApprovalRequest, error) {
	f.lists = append(f.lists, filter)
	var out []approval.ApprovalRequest
	for _, a := range f.items {
		if filter.Pending != (a.Status == approval.StatusPending) {
			continue
		}
		if filter.SubmitterIDs != nil && !contains(filter.SubmitterIDs, a.SubmitterID) {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeApprovalRepository) Decide(ctx context.Context, id string, d approval.Decision) (bool, error) {
	if f.decideFn != nil {
		return f.decideFn(ctx, id, d)
	}
	a := f.items[id]
	if a == nil || a.Status != approval.StatusPending {
		return false, nil
	}
	a.Status = d.Status
	return true, nil
}

func (f *fakeApprovalRepository) DirectReports(ctx context.Context, managerID string) ([]string, error) {
	return f.reports[managerID], nil
}

func (f *fakeApprovalRepository) EmployeeName(ctx context.Context, id string) (string, error) {
	return f.names[id], nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type approvalServiceDeps struct {
	sqlMock sqlmock.Sqlmock
	repo    *fakeApprovalRepository
	service approval.Service
}

func setupApprovalServiceTest(t *testing.T) *approvalServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := &fakeApprovalRepository{
		items: map[string]*approval.ApprovalRequest{
			"ap-leave":   {ID: "ap-leave", Type: approval.TypeLeaveRequest, SubmitterID: "emp-1", SubmitterName: "Alice Wanjiku", Details: "3 days annual leave", Status: approval.StatusPending, SubmittedAt: fixedNow},
			"ap-expense": {ID: "ap-expense", Type: approval.TypeExpenseClaim, SubmitterID: "emp-9", SubmitterName: "Peter Kamau", Details: "Client lunch", Status: approval.StatusPending, SubmittedAt: fixedNow},
			"ap-batch":   {ID: "ap-batch", Type: approval.TypePayrollBatch, SubmitterID: "hr-1", Details: "June 2024 run", Status: approval.StatusApproved, SubmittedAt: fixedNow},
		},
		reports: map[string][]string{"sup-1": {"emp-1", "emp-2"}},
		names:   map[string]string{"emp-1": "Alice Wanjiku"},
	}
	svc := approval.NewService(db, repo, clock.Fixed(fixedNow))

	return &approvalServiceDeps{sqlMock: sqlMock, repo: repo, service: svc}
}

func expectTx(mock sqlmock.Sqlmock, commit bool) {
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

var (
	hrViewer         = approval.Viewer{Role: domain.RoleHR, UserID: "hr-1"}
	supervisorViewer = approval.Viewer{Role: domain.RoleSupervisor, UserID: "u-sup", EmployeeID: "sup-1"}
)

func TestApprovalService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("employee submits a leave request", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		expectTx(deps.sqlMock, true)

		resp, err := deps.service.Submit(ctx,
			approval.Viewer{Role: domain.RoleEmployee, UserID: "u-1", EmployeeID: "emp-1"},
			approval.SubmitApprovalRequest{Type: approval.TypeLeaveRequest, Details: "  2 days sick leave  "},
		)

		assert.NoError(t, err)
		assert.Equal(t, approval.StatusPending, resp.Status)
		assert.Equal(t, "emp-1", resp.SubmittedBy)
		assert.Equal(t, "Alice Wanjiku", resp.SubmittedByName)
		assert.Equal(t, "2 days sick leave", resp.Details)
		assert.Equal(t, "2024-06-28T09:30:00Z", resp.DateSubmitted)
		assert.Len(t, deps.repo.created, 1)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("account without profile is named by user id", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		expectTx(deps.sqlMock, true)
		ref := "audit-1"

		resp, err := deps.service.Submit(ctx, hrViewer,
			approval.SubmitApprovalRequest{Type: approval.TypePayrollBatch, Details: "June 2024", ReferenceID: &ref},
		)

		assert.NoError(t, err)
		assert.Equal(t, "hr-1", resp.SubmittedBy)
		assert.Equal(t, "hr-1", resp.SubmittedByName)
		assert.Equal(t, &ref, resp.ReferenceID)
	})

	t.Run("validation writes nothing", func(t *testing.T) {
		cases := []struct {
			name string
			req  approval.SubmitApprovalRequest
			want error
		}{
			{"unknown type", approval.SubmitApprovalRequest{Type: "Overtime", Details: "x"}, approvalerrors.ErrInvalidType},
			{"blank details", approval.SubmitApprovalRequest{Type: approval.TypeExpenseClaim, Details: "   "}, approvalerrors.ErrEmptyDetails},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				deps := setupApprovalServiceTest(t)

				_, err := deps.service.Submit(ctx, hrViewer, tc.req)

				assert.ErrorIs(t, err, tc.want)
				assert.Empty(t, deps.repo.created)
				assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
			})
		}
	})

	t.Run("persist failure rolls back", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		expectTx(deps.sqlMock, false)
		deps.repo.createFn = func(ctx context.Context, a *approval.ApprovalRequest) error {
			return errors.New("insert failed")
		}

		_, err := deps.service.Submit(ctx, hrViewer, approval.SubmitApprovalRequest{Type: approval.TypeExpenseClaim, Details: "taxi"})

		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestApprovalService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("hr sees every pending item", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)

		resp, err := deps.service.ListPending(ctx, hrViewer)

		assert.NoError(t, err)
		assert.Len(t, resp, 2)
		assert.Nil(t, deps.repo.lists[0].SubmitterIDs)
	})

	t.Run("supervisor only sees direct reports", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)

		resp, err := deps.service.ListPending(ctx, supervisorViewer)

		assert.NoError(t, err)
		if assert.Len(t, resp, 1) {
			assert.Equal(t, "ap-leave", resp[0].ID)
		}
		assert.Equal(t, []string{"emp-1", "emp-2"}, deps.repo.lists[0].SubmitterIDs)
	})

	t.Run("supervisor without reports gets nothing", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)

		resp, err := deps.service.ListPending(ctx, approval.Viewer{Role: domain.RoleSupervisor, EmployeeID: "sup-2"})

		assert.NoError(t, err)
		assert.Empty(t, resp)
		assert.Empty(t, deps.repo.lists)
	})

	t.Run("supervisor without profile", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)

		_, err := deps.service.ListPending(ctx, approval.Viewer{Role: domain.RoleSupervisor, UserID: "u-sup"})

		assert.ErrorIs(t, err, approvalerrors.ErrNoEmployeeProfile)
	})

	t.Run("history holds decided items", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)

		resp, err := deps.service.ListHistory(ctx, hrViewer)

		assert.NoError(t, err)
		if assert.Len(t, resp, 1) {
			assert.Equal(t, approval.StatusApproved, resp[0].Status)
		}
		assert.False(t, deps.repo.lists[0].Pending)
	})

	t.Run("other roles are refused", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)

		_, err := deps.service.ListPending(ctx, approval.Viewer{Role: domain.RolePayrollPartner, UserID: "p-1"})

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})
}

func TestApprovalService_Decide(t *testing.T) {
	ctx := context.Background()

	t.Run("supervisor approves a direct report", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		expectTx(deps.sqlMock, true)

		resp, err := deps.service.Approve(ctx, supervisorViewer, "ap-leave", "")

		assert.NoError(t, err)
		assert.Equal(t, approval.StatusApproved, resp.Status)
		assert.Equal(t, "sup-1", *resp.DecidedBy)
		assert.Equal(t, "2024-06-28T09:30:00Z", *resp.DecidedAt)
		assert.Nil(t, resp.DecisionNote)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("supervisor cannot decide outside their team", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		expectTx(deps.sqlMock, false)

		_, err := deps.service.Approve(ctx, supervisorViewer, "ap-expense", "")

		assert.ErrorIs(t, err, approvalerrors.ErrApprovalNotFound)
		assert.Equal(t, approval.StatusPending, deps.repo.items["ap-expense"].Status)
	})

	t.Run("hr rejects with a note", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		expectTx(deps.sqlMock, true)
		var got approval.Decision
		deps.repo.decideFn = func(ctx context.Context, id string, d approval.Decision) (bool, error) {
			got = d
			return true, nil
		}

		resp, err := deps.service.Reject(ctx, hrViewer, "ap-expense", "receipt missing")

		assert.NoError(t, err)
		assert.Equal(t, approval.StatusRejected, resp.Status)
		assert.Equal(t, "receipt missing", *resp.DecisionNote)
		assert.Equal(t, "hr-1", got.DecidedBy)
		assert.Equal(t, fixedNow, got.DecidedAt)
	})

	t.Run("reject needs a note", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)

		_, err := deps.service.Reject(ctx, hrViewer, "ap-expense", "  ")

		assert.ErrorIs(t, err, approvalerrors.ErrRejectionNoteRequired)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("decided item cannot be decided again", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		expectTx(deps.sqlMock, false)

		_, err := deps.service.Approve(ctx, approval.Viewer{Role: domain.RoleAdmin, UserID: "admin-1"}, "ap-batch", "")

		assert.ErrorIs(t, err, approvalerrors.ErrAlreadyDecided)
	})

	t.Run("concurrent decision wins", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		expectTx(deps.sqlMock, false)
		deps.repo.decideFn = func(ctx context.Context, id string, d approval.Decision) (bool, error) {
			return false, nil
		}

		_, err := deps.service.Approve(ctx, hrViewer, "ap-leave", "")

		assert.ErrorIs(t, err, approvalerrors.ErrAlreadyDecided)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("own request", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		expectTx(deps.sqlMock, false)

		_, err := deps.service.Approve(ctx, hrViewer, "ap-batch", "")

		assert.ErrorIs(t, err, approvalerrors.ErrSelfDecision)
	})

	t.Run("unknown id", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		expectTx(deps.sqlMock, false)

		_, err := deps.service.Approve(ctx, hrViewer, "nope", "")

		assert.ErrorIs(t, err, approvalerrors.ErrApprovalNotFound)
	})
}
