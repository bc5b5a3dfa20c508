package tenant

import (
	"context"
	"database/sql"
	"net/http"
	"strings"

	"github.com/Philgatex/huashang-hais-app/internal/domain"
	"github.com/Philgatex/huashang-hais-app/internal/shared/apperror"

	"gorm.io/gorm"
)

var ErrClientUnbound = apperror.New(
	apperror.CodeForbidden,
	"No client is bound to this account",
	http.StatusForbidden,
)

// Scope restricts a query to one payroll-partner client. An empty clientID
// means the general organisation view and leaves the query untouched.
func Scope(clientID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if clientID == "" {
			return db
		}
		return db.Where("client_id = ?", clientID)
	}
}

// OnTx returns a session of db whose statements run on tx, so repositories can
// join a transaction opened by a service on the shared *sql.DB.
func OnTx(db *gorm.DB, tx *sql.Tx) *gorm.DB {
	if tx == nil {
		return db
	}
	// a Context forces gorm to clone the statement, so the pool swap stays local
	s := db.Session(&gorm.Session{NewDB: true, Context: context.Background()})
	s.Statement.ConnPool = tx
	return s
}

// Resolve picks the client a request operates on. Payroll partners are pinned
// to the client in their token and get ErrClientUnbound when it is missing,
// since an empty client would mean the unfiltered view. Everyone else may pick
// one or see all.
func Resolve(role, tokenClientID, requested string) (string, error) {
	if role == domain.RolePayrollPartner {
		clientID := strings.TrimSpace(tokenClientID)
		if clientID == "" {
			return "", ErrClientUnbound
		}
		return clientID, nil
	}
	return requested, nil
}
