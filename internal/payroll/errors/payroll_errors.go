package payrollerrors

import (
	"net/http"

	"github.com/Philgatex/huashang-hais-app/internal/shared/apperror"
)

var (
	ErrEmptyEmployeeIDs = apperror.New(
		apperror.CodeInvalidInput,
		"at least one employee id is required",
		http.StatusBadRequest,
	)
	ErrBlankEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"employee ids cannot be blank",
		http.StatusBadRequest,
	)
	ErrEmptyPeriod = apperror.New(
		apperror.CodeInvalidInput,
		"period is required",
		http.StatusBadRequest,
	)
	ErrInvalidRateConfig = apperror.New(
		apperror.CodeConfiguration,
		"payroll rate configuration is invalid",
		http.StatusInternalServerError,
	)
	ErrRosterUnavailable = apperror.New(
		apperror.CodeServiceUnavailable,
		"employee records could not be loaded",
		http.StatusServiceUnavailable,
	)
	ErrPersistFailed = apperror.New(
		apperror.CodePersistence,
		"payroll run could not be saved, nothing was committed",
		http.StatusInternalServerError,
	)
	ErrPayslipNotFound = apperror.New(
		apperror.CodeNotFound,
		"payslip not found",
		http.StatusNotFound,
	)
	ErrAuditNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll run not found",
		http.StatusNotFound,
	)
	ErrNoEmployeeProfile = apperror.New(
		apperror.CodeForbidden,
		"no employee profile is linked to this account",
		http.StatusForbidden,
	)
	ErrRenderPayslip = apperror.New(
		apperror.CodeInternalError,
		"payslip document could not be generated",
		http.StatusInternalServerError,
	)
)
