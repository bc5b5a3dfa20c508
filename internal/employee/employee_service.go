package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	employeeerrors "github.com/Philgatex/huashang-hais-app/internal/employee/errors"
	"github.com/Philgatex/huashang-hais-app/internal/shared/contextutil"
	"github.com/Philgatex/huashang-hais-app/internal/shared/counter"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	EmployeeOptionsKeyPrefix = "employees:options:"
	employeeNumberCounter    = "employee_number"
	generalOrgScope          = "general"
)

func GetEmployeeOptionsKey(clientID string) string {
	if clientID == "" {
		clientID = generalOrgScope
	}
	return EmployeeOptionsKeyPrefix + clientID
}

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context, clientID string) ([]EmployeeResponse, error)
	GetOptions(ctx context.Context, clientID string) ([]EmployeeOptionResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db      *sql.DB
	repo    Repository
	counter counter.Repository
	rdb     *redis.Client
	sf      *singleflight.Group
	logger  *zap.Logger
}

func NewService(db *sql.DB, repo Repository, counter counter.Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		counter: counter,
		rdb:     rdb,
		sf:      &singleflight.Group{},
		logger:  l,
	}
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("email", req.Email),
	)

	if err := validateAmounts(req.Salary, req.CustomDeductions); err != nil {
		return EmployeeResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create employee begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if req.EmployeeNumber == "" {
		nextVal, err := s.counter.GetNextValue(ctx, scopeOf(req.ClientID), employeeNumberCounter)
		if err != nil {
			s.logger.Error("create employee generate number failed", zap.Error(err))
			return EmployeeResponse{}, err
		}
		req.EmployeeNumber = fmt.Sprintf("EMP-%06d", nextVal)
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	empl := &Employee{
		ID:             id,
		EmployeeNumber: req.EmployeeNumber,
		Name:           req.Name,
		Email:          req.Email,
		Role:           req.Role,
		Department:     req.Department,
		ClientID:       req.ClientID,
		ManagerID:      req.ManagerID,
	}
	applySalary(empl, req.Salary, req.CustomDeductions, req.PaymentDetails)

	if err := qtx.Create(ctx, empl); err != nil {
		s.logger.Error("create employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateOptions(ctx, empl.ClientID)

	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.ID),
	)

	return mapToResponse(*empl), nil
}

func (s *service) GetAll(ctx context.Context, clientID string) ([]EmployeeResponse, error) {
	s.logger.Debug("get all employees requested", zap.String("client_id", clientID))
	empls, err := s.repo.FindAll(ctx, clientID)
	if err != nil {
		s.logger.Error("get all employees failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(empls), nil
}

func (s *service) GetOptions(ctx context.Context, clientID string) ([]EmployeeOptionResponse, error) {
	cacheKey := GetEmployeeOptionsKey(clientID)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp []EmployeeOptionResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// the payroll run form asks for this list on every open
	v, err, _ := s.sf.Do(cacheKey, func() (any, error) {
		empls, err := s.repo.FindAll(ctx, clientID)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := make([]EmployeeOptionResponse, len(empls))
		for i, e := range empls {
			resp[i] = EmployeeOptionResponse{ID: e.ID, EmployeeNumber: e.EmployeeNumber, Name: e.Name}
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, jsonData, time.Hour).Err(); err != nil {
					s.logger.Warn("cache employee options failed", zap.String("key", cacheKey), zap.Error(err))
				}
			}
		}

		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]EmployeeOptionResponse), nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	s.logger.Debug("get employee by id requested", zap.String("employee_id", id))
	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("get employee by id failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*empl), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	s.logger.Debug("update employee requested", zap.String("employee_id", id))

	if err := validateAmounts(req.Salary, req.CustomDeductions); err != nil {
		return EmployeeResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update employee begin tx failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	empl, err := qtx.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("update employee fetch existing failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	previousClient := empl.ClientID

	empl.EmployeeNumber = req.EmployeeNumber
	empl.Name = req.Name
	empl.Email = req.Email
	empl.Role = req.Role
	empl.Department = req.Department
	empl.ClientID = req.ClientID
	empl.ManagerID = req.ManagerID
	applySalary(empl, req.Salary, req.CustomDeductions, req.PaymentDetails)

	if err := qtx.Update(ctx, empl); err != nil {
		s.logger.Error("update employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update employee commit failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateOptions(ctx, previousClient, empl.ClientID)

	s.logger.Info("update employee success", zap.String("employee_id", id))

	return mapToResponse(*empl), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	s.logger.Debug("delete employee requested", zap.String("employee_id", id))

	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("delete employee fetch existing failed", zap.Error(err))
		return mapRepositoryError(err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("delete employee failed", zap.Error(err))
		return mapRepositoryError(err)
	}

	s.invalidateOptions(ctx, empl.ClientID)

	s.logger.Info("delete employee success", zap.String("employee_id", id))
	return nil
}

// invalidateOptions drops the general list and every client list touched.
func (s *service) invalidateOptions(ctx context.Context, clientIDs ...*string) {
	if s.rdb == nil {
		return
	}

	keys := []string{GetEmployeeOptionsKey("")}
	for _, c := range clientIDs {
		if c != nil && *c != "" {
			keys = append(keys, GetEmployeeOptionsKey(*c))
		}
	}

	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.logger.Error("failed to invalidate employee options cache",
			zap.Error(err),
			zap.Strings("keys", keys),
		)
	}
}

func validateAmounts(salary SalaryRequest, deductions []CustomDeductionRequest) error {
	for _, v := range []decimal.Decimal{salary.Gross, salary.Housing, salary.Transport, salary.Other} {
		if v.IsNegative() {
			return employeeerrors.ErrNegativeAmount
		}
	}
	for _, d := range deductions {
		if d.Amount.IsNegative() {
			return employeeerrors.ErrNegativeAmount
		}
	}
	return nil
}

func applySalary(empl *Employee, salary SalaryRequest, deductions []CustomDeductionRequest, payment PaymentDetailsRequest) {
	empl.GrossSalary = salary.Gross
	empl.HousingAllowance = salary.Housing
	empl.TransportAllowance = salary.Transport
	empl.OtherAllowance = salary.Other

	empl.CustomDeductions = make([]CustomDeduction, len(deductions))
	for i, d := range deductions {
		empl.CustomDeductions[i] = CustomDeduction{Name: d.Name, Amount: d.Amount}
	}

	empl.PaymentMethod = payment.Method
	empl.BankName = payment.BankName
	empl.AccountNumber = payment.AccountNumber
	empl.Phone = payment.Phone
}

func scopeOf(clientID *string) string {
	if clientID == nil || *clientID == "" {
		return generalOrgScope
	}
	return *clientID
}

func mapToResponse(empl Employee) EmployeeResponse {
	deductions := empl.CustomDeductions
	if deductions == nil {
		deductions = []CustomDeduction{}
	}
	return EmployeeResponse{
		ID:             empl.ID,
		EmployeeNumber: empl.EmployeeNumber,
		Name:           empl.Name,
		Email:          empl.Email,
		Role:           empl.Role,
		Department:     empl.Department,
		ClientID:       empl.ClientID,
		ManagerID:      empl.ManagerID,
		Salary: SalaryResponse{
			Gross: empl.GrossSalary,
			Allowances: AllowanceResponse{
				Housing:   empl.HousingAllowance,
				Transport: empl.TransportAllowance,
				Other:     empl.OtherAllowance,
			},
		},
		CustomDeductions: deductions,
		PaymentDetails: PaymentDetailsResponse{
			Method:        empl.PaymentMethod,
			BankName:      empl.BankName,
			AccountNumber: empl.AccountNumber,
			Phone:         empl.Phone,
		},
	}
}

func mapToListResponse(empls []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(empls))
	for i, e := range empls {
		res[i] = mapToResponse(e)
	}
	return res
}
