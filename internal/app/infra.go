package app

import (
	"database/sql"
	"fmt"

	"github.com/Philgatex/huashang-hais-app/internal/approval"
	"github.com/Philgatex/huashang-hais-app/internal/config"
	"github.com/Philgatex/huashang-hais-app/internal/employee"
	"github.com/Philgatex/huashang-hais-app/internal/messaging/kafka"
	"github.com/Philgatex/huashang-hais-app/internal/payroll"
	"github.com/Philgatex/huashang-hais-app/internal/shared/connection"
	"github.com/Philgatex/huashang-hais-app/internal/shared/counter"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Stores are the database handles shared by every binary. The same pool
// backs gorm and the raw *sql.DB used for transactions.
type Stores struct {
	GORM *gorm.DB
	SQL  *sql.DB
}

func (s Stores) Close() error {
	return s.SQL.Close()
}

func OpenStores(cfg config.Config, logger *zap.Logger) (Stores, error) {
	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, cfg.DBRetries)
	if err != nil {
		return Stores{}, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return Stores{}, err
	}
	logger.Info("database connection established", zap.String("host", cfg.DB.Host))

	return Stores{GORM: gormDB, SQL: sqlDB}, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&employee.Employee{},
		&payroll.Payslip{},
		&payroll.PayrollAudit{},
		&counter.Sequence{},
		&kafka.OutboxRecord{},
		&approval.ApprovalRequest{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
