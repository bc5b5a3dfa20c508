package helpdesk

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	helpdeskerrors "github.com/Philgatex/huashang-hais-app/internal/helpdesk/errors"
	"github.com/Philgatex/huashang-hais-app/internal/shared/contextutil"

	"go.uber.org/zap"
)

const maxQuestionRunes = 2000

const promptTemplate = `You are the HR assistant of an HR and payroll portal. Answer the employee's question clearly and briefly.
If the question needs a decision from HR or concerns a specific payslip, say so and suggest contacting HR directly.

Question: %s`

type Service interface {
	Ask(ctx context.Context, question string) (AskResponse, error)
}

type service struct {
	completer Completer
	logger    *zap.Logger
}

// NewService accepts a nil completer; Ask then reports the assistant as not
// configured.
func NewService(completer Completer, logger ...*zap.Logger) Service {
	l := zap.L().Named("helpdesk.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("helpdesk.service")
	}
	return &service{completer: completer, logger: l}
}

func (s *service) Ask(ctx context.Context, question string) (AskResponse, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return AskResponse{}, helpdeskerrors.ErrEmptyQuestion
	}
	if utf8.RuneCountInString(question) > maxQuestionRunes {
		return AskResponse{}, helpdeskerrors.ErrQuestionTooLong
	}
	if s.completer == nil {
		return AskResponse{}, helpdeskerrors.ErrNotConfigured
	}

	answer, err := s.completer.Complete(ctx, fmt.Sprintf(promptTemplate, question))
	if err != nil {
		s.logger.Error("helpdesk completion failed",
			zap.String("request_id", contextutil.GetRequestID(ctx)),
			zap.Error(err),
		)
		return AskResponse{}, helpdeskerrors.ErrCompletionFailed.WithErr(err)
	}

	return AskResponse{Answer: strings.TrimSpace(answer)}, nil
}
