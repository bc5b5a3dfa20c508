package approval_test

import (
	"context"
	"testing"
	"time"

	"github.com/Philgatex/huashang-hais-app/internal/approval"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupRepoTest(t *testing.T) (approval.Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)
	return approval.NewRepository(gdb), mock
}

func TestApprovalRepository_Decide(t *testing.T) {
	d := approval.Decision{Status: approval.StatusApproved, DecidedBy: "hr-1", DecidedAt: time.Now()}

	t.Run("pending row is updated", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "approval_requests" SET .* WHERE \(?id = \$\d+ AND status = \$\d+\)?`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		ok, err := repo.Decide(context.Background(), "ap-1", d)

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("row decided elsewhere is reported", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "approval_requests"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		ok, err := repo.Decide(context.Background(), "ap-1", d)

		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestApprovalRepository_DirectReports(t *testing.T) {
	repo, mock := setupRepoTest(t)
	mock.ExpectQuery(`SELECT .*id.* FROM "employees" WHERE manager_id = \$1 AND deleted_at IS NULL`).
		WithArgs("sup-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("emp-1").AddRow("emp-2"))

	ids, err := repo.DirectReports(context.Background(), "sup-1")

	assert.NoError(t, err)
	assert.Equal(t, []string{"emp-1", "emp-2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
