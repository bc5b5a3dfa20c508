package approvalerrors

import (
	"net/http"

	"github.com/Philgatex/huashang-hais-app/internal/shared/apperror"
)

var (
	ErrApprovalNotFound = apperror.New(
		apperror.CodeNotFound,
		"approval not found",
		http.StatusNotFound,
	)
	ErrInvalidType = apperror.New(
		apperror.CodeInvalidInput,
		"type must be one of Leave Request, Payroll Batch, Expense Claim",
		http.StatusBadRequest,
	)
	ErrEmptyDetails = apperror.New(
		apperror.CodeInvalidInput,
		"details are required",
		http.StatusBadRequest,
	)
	ErrAlreadyDecided = apperror.New(
		apperror.CodeConflict,
		"approval has already been decided",
		http.StatusConflict,
	)
	ErrSelfDecision = apperror.New(
		apperror.CodeForbidden,
		"you cannot decide your own request",
		http.StatusForbidden,
	)
	ErrRejectionNoteRequired = apperror.New(
		apperror.CodeInvalidInput,
		"note is required when rejecting",
		http.StatusBadRequest,
	)
	ErrNoEmployeeProfile = apperror.New(
		apperror.CodeForbidden,
		"no employee profile is linked to this account",
		http.StatusForbidden,
	)
)
