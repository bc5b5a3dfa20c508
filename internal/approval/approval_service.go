package approval

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"strings"
	"time"

	approvalerrors "github.com/Philgatex/huashang-hais-app/internal/approval/errors"
	"github.com/Philgatex/huashang-hais-app/internal/domain"
	"github.com/Philgatex/huashang-hais-app/internal/shared/apperror"
	"github.com/Philgatex/huashang-hais-app/internal/shared/clock"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var requestTypes = []string{TypeLeaveRequest, TypePayrollBatch, TypeExpenseClaim}

type Service interface {
	Submit(ctx context.Context, viewer Viewer, req SubmitApprovalRequest) (ApprovalResponse, error)
	ListPending(ctx context.Context, viewer Viewer) ([]ApprovalResponse, error)
	ListHistory(ctx context.Context, viewer Viewer) ([]ApprovalResponse, error)
	GetByID(ctx context.Context, viewer Viewer, id string) (ApprovalResponse, error)
	Approve(ctx context.Context, viewer Viewer, id, note string) (ApprovalResponse, error)
	Reject(ctx context.Context, viewer Viewer, id, note string) (ApprovalResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	clock  clock.Clock
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, clk clock.Clock, logger ...*zap.Logger) Service {
	l := zap.L().Named("approval.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approval.service")
	}
	if clk == nil {
		clk = clock.System()
	}
	return &service{db: db, repo: repo, clock: clk, logger: l}
}

func (s *service) Submit(ctx context.Context, viewer Viewer, req SubmitApprovalRequest) (ApprovalResponse, error) {
	s.logger.Debug("submit approval requested",
		zap.String("actor_id", viewer.ActorID()),
		zap.String("type", req.Type),
	)

	if !slices.Contains(requestTypes, req.Type) {
		return ApprovalResponse{}, approvalerrors.ErrInvalidType
	}
	details := strings.TrimSpace(req.Details)
	if details == "" {
		return ApprovalResponse{}, approvalerrors.ErrEmptyDetails
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("submit approval begin tx failed", zap.Error(err))
		return ApprovalResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	name := ""
	if viewer.EmployeeID != "" {
		name, err = qtx.EmployeeName(ctx, viewer.EmployeeID)
		if err != nil {
			s.logger.Error("submit approval submitter lookup failed", zap.Error(err))
			return ApprovalResponse{}, err
		}
	}
	if name == "" {
		name = viewer.UserID
	}

	a := &ApprovalRequest{
		ID:            uuid.NewString(),
		Type:          req.Type,
		SubmitterID:   viewer.ActorID(),
		SubmitterName: name,
		ReferenceID:   req.ReferenceID,
		Details:       details,
		Status:        StatusPending,
		SubmittedAt:   s.clock.Now(),
	}
	if err := qtx.Create(ctx, a); err != nil {
		s.logger.Error("submit approval persist failed", zap.Error(err))
		return ApprovalResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("submit approval commit failed", zap.Error(err))
		return ApprovalResponse{}, err
	}
	s.logger.Info("submit approval success",
		zap.String("approval_id", a.ID),
		zap.String("type", a.Type),
		zap.String("submitter_id", a.SubmitterID),
	)

	return mapToResponse(*a), nil
}

func (s *service) ListPending(ctx context.Context, viewer Viewer) ([]ApprovalResponse, error) {
	return s.list(ctx, viewer, true)
}

func (s *service) ListHistory(ctx context.Context, viewer Viewer) ([]ApprovalResponse, error) {
	return s.list(ctx, viewer, false)
}

func (s *service) list(ctx context.Context, viewer Viewer, pending bool) ([]ApprovalResponse, error) {
	submitters, err := s.submittersFor(ctx, s.repo, viewer)
	if err != nil {
		return nil, err
	}
	if submitters != nil && len(submitters) == 0 {
		return []ApprovalResponse{}, nil
	}

	items, err := s.repo.List(ctx, ListFilter{Pending: pending, SubmitterIDs: submitters})
	if err != nil {
		return nil, err
	}
	return mapToListResponse(items), nil
}

func (s *service) GetByID(ctx context.Context, viewer Viewer, id string) (ApprovalResponse, error) {
	a, err := s.visible(ctx, s.repo, viewer, id)
	if err != nil {
		return ApprovalResponse{}, err
	}
	return mapToResponse(*a), nil
}

func (s *service) Approve(ctx context.Context, viewer Viewer, id, note string) (ApprovalResponse, error) {
	return s.decide(ctx, viewer, id, StatusApproved, note)
}

func (s *service) Reject(ctx context.Context, viewer Viewer, id, note string) (ApprovalResponse, error) {
	return s.decide(ctx, viewer, id, StatusRejected, note)
}

func (s *service) decide(ctx context.Context, viewer Viewer, id, target, note string) (ApprovalResponse, error) {
	s.logger.Debug("decide approval requested",
		zap.String("approval_id", id),
		zap.String("actor_id", viewer.ActorID()),
		zap.String("target_status", target),
	)

	note = strings.TrimSpace(note)
	if target == StatusRejected && note == "" {
		return ApprovalResponse{}, approvalerrors.ErrRejectionNoteRequired
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("decide approval begin tx failed", zap.Error(err))
		return ApprovalResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	a, err := s.visible(ctx, qtx, viewer, id)
	if err != nil {
		return ApprovalResponse{}, err
	}
	if a.SubmitterID == viewer.ActorID() || a.SubmitterID == viewer.UserID {
		return ApprovalResponse{}, approvalerrors.ErrSelfDecision
	}
	if a.Status != StatusPending {
		return ApprovalResponse{}, approvalerrors.ErrAlreadyDecided
	}

	d := Decision{
		Status:    target,
		DecidedBy: viewer.ActorID(),
		DecidedAt: s.clock.Now(),
	}
	if note != "" {
		d.Note = &note
	}

	ok, err := qtx.Decide(ctx, a.ID, d)
	if err != nil {
		s.logger.Error("decide approval persist failed",
			zap.String("approval_id", id),
			zap.Error(err),
		)
		return ApprovalResponse{}, err
	}
	if !ok {
		s.logger.Warn("decide approval lost a concurrent decision", zap.String("approval_id", id))
		return ApprovalResponse{}, approvalerrors.ErrAlreadyDecided
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("decide approval commit failed",
			zap.String("approval_id", id),
			zap.Error(err),
		)
		return ApprovalResponse{}, err
	}
	s.logger.Info("decide approval success",
		zap.String("approval_id", id),
		zap.String("status", target),
		zap.String("decided_by", d.DecidedBy),
	)

	a.Status = d.Status
	a.DecidedBy = &d.DecidedBy
	a.DecidedAt = &d.DecidedAt
	a.DecisionNote = d.Note
	return mapToResponse(*a), nil
}

// submittersFor returns nil when the viewer sees every request, otherwise the
// requesters whose items the viewer may see.
func (s *service) submittersFor(ctx context.Context, repo Repository, viewer Viewer) ([]string, error) {
	switch viewer.Role {
	case domain.RoleAdmin, domain.RoleHR:
		return nil, nil
	case domain.RoleSupervisor:
		if viewer.EmployeeID == "" {
			return nil, approvalerrors.ErrNoEmployeeProfile
		}
		reports, err := repo.DirectReports(ctx, viewer.EmployeeID)
		if err != nil {
			s.logger.Error("load direct reports failed",
				zap.String("supervisor_id", viewer.EmployeeID),
				zap.Error(err),
			)
			return nil, err
		}
		if reports == nil {
			reports = []string{}
		}
		return reports, nil
	default:
		return nil, apperror.ErrForbidden
	}
}

// visible loads a request and hides it from supervisors who do not manage
// its submitter.
func (s *service) visible(ctx context.Context, repo Repository, viewer Viewer, id string) (*ApprovalRequest, error) {
	submitters, err := s.submittersFor(ctx, repo, viewer)
	if err != nil {
		return nil, err
	}

	a, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, approvalerrors.ErrApprovalNotFound
		}
		return nil, err
	}
	if submitters != nil && !slices.Contains(submitters, a.SubmitterID) {
		return nil, approvalerrors.ErrApprovalNotFound
	}
	return a, nil
}

func mapToResponse(a ApprovalRequest) ApprovalResponse {
	resp := ApprovalResponse{
		ID:              a.ID,
		Type:            a.Type,
		SubmittedBy:     a.SubmitterID,
		SubmittedByName: a.SubmitterName,
		ReferenceID:     a.ReferenceID,
		Details:         a.Details,
		Status:          a.Status,
		DateSubmitted:   a.SubmittedAt.Format(time.RFC3339),
		DecidedBy:       a.DecidedBy,
		DecisionNote:    a.DecisionNote,
	}
	if a.DecidedAt != nil {
		v := a.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &v
	}
	return resp
}

func mapToListResponse(items []ApprovalRequest) []ApprovalResponse {
	resp := make([]ApprovalResponse, len(items))
	for i, a := range items {
		resp[i] = mapToResponse(a)
	}
	return resp
}
