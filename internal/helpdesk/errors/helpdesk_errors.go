package helpdeskerrors

import (
	"net/http"

	"github.com/Philgatex/huashang-hais-app/internal/shared/apperror"
)

var (
	ErrEmptyQuestion = apperror.New(
		apperror.CodeInvalidInput,
		"question is required",
		http.StatusBadRequest,
	)
	ErrQuestionTooLong = apperror.New(
		apperror.CodeInvalidInput,
		"question is too long",
		http.StatusBadRequest,
	)
	ErrNotConfigured = apperror.New(
		apperror.CodeConfiguration,
		"helpdesk assistant is not configured",
		http.StatusServiceUnavailable,
	)
	ErrCompletionFailed = apperror.New(
		apperror.CodeUpstream,
		"helpdesk assistant failed to respond",
		http.StatusBadGateway,
	)
)
