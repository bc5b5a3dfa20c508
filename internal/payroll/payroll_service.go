package payroll

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Philgatex/huashang-hais-app/internal/employee"
	"github.com/Philgatex/huashang-hais-app/internal/events"
	"github.com/Philgatex/huashang-hais-app/internal/messaging/kafka"
	payrollerrors "github.com/Philgatex/huashang-hais-app/internal/payroll/errors"
	"github.com/Philgatex/huashang-hais-app/internal/payroll/rates"
	"github.com/Philgatex/huashang-hais-app/internal/shared/clock"
	"github.com/Philgatex/huashang-hais-app/internal/shared/contextutil"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	generalOrgReference = "GeneralOrg"
	defaultWorkers      = 8
	auditAggregateType  = "payroll_audit"
)

// Roster resolves employee ids. Unknown ids are absent from the result.
type Roster interface {
	FindByIDs(ctx context.Context, ids []string) ([]employee.Employee, error)
}

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	Run(ctx context.Context, actorID string, req RunPayrollRequest) (RunSummary, error)
	GetPayslip(ctx context.Context, id string) (PayslipResponse, error)
	ListPayslips(ctx context.Context, filter PayslipFilter) ([]PayslipResponse, error)
	GetAudit(ctx context.Context, id string) (AuditResponse, error)
	ListAudits(ctx context.Context, clientID string) ([]AuditResponse, error)
	RenderPayslipPDF(ctx context.Context, id string) ([]byte, error)
	ExportPayslipsCSV(ctx context.Context, filter PayslipFilter, w io.Writer) error
	Rates() rates.Config
}

type service struct {
	db       *sql.DB
	repo     Repository
	roster   Roster
	outbox   kafka.OutboxRepository
	rates    rates.Config
	pipeline []DeductionRule
	clock    clock.Clock
	workers  int
	logger   *zap.Logger
}

// NewService wires the payroll engine. workers bounds the parallel payslip
// computation; values below one use the default.
func NewService(
	db *sql.DB,
	repo Repository,
	roster Roster,
	outbox kafka.OutboxRepository,
	cfg rates.Config,
	clk clock.Clock,
	workers int,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	if clk == nil {
		clk = clock.System()
	}
	if workers < 1 {
		workers = defaultWorkers
	}
	return &service{
		db:       db,
		repo:     repo,
		roster:   roster,
		outbox:   outbox,
		rates:    cfg,
		pipeline: DefaultPipeline(),
		clock:    clk,
		workers:  workers,
		logger:   l,
	}
}

func (s *service) Rates() rates.Config {
	return s.rates
}

func (s *service) Run(ctx context.Context, actorID string, req RunPayrollRequest) (RunSummary, error) {
	rid := contextutil.GetRequestID(ctx)
	log := s.logger.With(zap.String("request_id", rid))

	ids, period, err := validateRunRequest(req)
	if err != nil {
		log.Warn("payroll run rejected", zap.Error(err))
		return RunSummary{}, err
	}
	log = log.With(
		zap.String("period", period),
		zap.String("client_id", clientLabel(req.ClientID)),
	)
	log.Info("payroll run started", zap.Int("requested", len(ids)))

	if err := s.rates.Validate(); err != nil {
		log.Error("payroll run aborted on rate config", zap.Error(err))
		return RunSummary{}, payrollerrors.ErrInvalidRateConfig.WithErr(err)
	}

	resolved, skipped, err := s.resolve(ctx, ids, req)
	if err != nil {
		log.Error("payroll run roster lookup failed", zap.Error(err))
		return RunSummary{}, payrollerrors.ErrRosterUnavailable.WithErr(err)
	}
	for _, id := range skipped {
		log.Warn("employee not found, skipping", zap.String("employee_id", id))
	}

	calcs, err := s.computeAll(ctx, resolved)
	if err != nil {
		log.Warn("payroll run cancelled before persisting", zap.Error(err))
		return RunSummary{}, err
	}

	now := s.clock.Now()
	auditID := uuid.NewString()

	payslips := make([]Payslip, len(resolved))
	notices := make([]events.PayslipNotice, len(resolved))
	payslipIDs := make([]string, len(resolved))
	totalNet, totalDeductions := decimal.Zero, decimal.Zero
	for i, e := range resolved {
		p := buildPayslip(e, calcs[i], period, req.ClientID, s.rates.Version, now)
		p.ID = uuid.NewString()
		p.AuditID = auditID

		payslips[i] = p
		payslipIDs[i] = p.ID
		notices[i] = events.PayslipNotice{
			PayslipID:     p.ID,
			EmployeeID:    e.ID,
			EmployeeName:  e.Name,
			Email:         e.Email,
			Phone:         e.Phone,
			PaymentMethod: e.PaymentMethod,
			NetPay:        p.NetPay,
		}
		totalNet = totalNet.Add(p.NetPay)
		totalDeductions = totalDeductions.Add(p.TotalDeductions)
	}

	audit := &PayrollAudit{
		ID:                 auditID,
		Reference:          auditReference(period, req.ClientID, now.UnixMilli()),
		Period:             period,
		ClientID:           optional(req.ClientID),
		Status:             AuditStatusOpen,
		TotalNetPay:        totalNet,
		TotalDeductions:    totalDeductions,
		PayslipIDs:         payslipIDs,
		SkippedEmployeeIDs: skipped,
		RateVersion:        s.rates.Version,
		ExecutedBy:         actorID,
		ExecutedAt:         now,
	}

	event, err := kafka.NewOutboxEvent(rid, auditAggregateType, auditID,
		events.PayrollRunCompletedType, events.PayrollRunCompletedTopic,
		events.PayrollRunCompletedEvent{
			EventType:       events.PayrollRunCompletedType,
			AuditID:         auditID,
			Reference:       audit.Reference,
			Period:          period,
			ClientID:        req.ClientID,
			ExecutedBy:      actorID,
			TotalNetPay:     totalNet,
			TotalDeductions: totalDeductions,
			Payslips:        notices,
			OccurredAt:      now,
		},
	)
	if err != nil {
		return RunSummary{}, payrollerrors.ErrPersistFailed.WithErr(err)
	}

	if err := s.persist(ctx, payslips, audit, event); err != nil {
		log.Error("payroll run persist failed, rolled back", zap.Error(err))
		return RunSummary{}, payrollerrors.ErrPersistFailed.WithErr(err)
	}

	log.Info("payroll run committed",
		zap.String("audit_id", auditID),
		zap.Int("payslips", len(payslips)),
		zap.Int("skipped", len(skipped)),
		zap.String("total_net_pay", totalNet.String()),
	)

	return RunSummary{
		Success:            true,
		Message:            fmt.Sprintf("Payroll processed successfully for %s. %d payslips generated.", period, len(payslips)),
		PayslipsGenerated:  len(payslips),
		TotalNetPay:        totalNet,
		TotalDeductions:    totalDeductions,
		AuditID:            auditID,
		Reference:          audit.Reference,
		PayslipIDs:         payslipIDs,
		SkippedEmployeeIDs: skipped,
	}, nil
}

// persist writes payslips, then the audit, then the outbox row in one
// transaction. Any error rolls all three back.
func (s *service) persist(ctx context.Context, payslips []Payslip, audit *PayrollAudit, event kafka.OutboxEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.CreatePayslips(ctx, payslips); err != nil {
		return fmt.Errorf("write payslips: %w", err)
	}
	if err := qtx.CreateAudit(ctx, audit); err != nil {
		return fmt.Errorf("write audit: %w", err)
	}
	if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
		return fmt.Errorf("enqueue run completed event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// resolve keeps request order and reports unknown ids separately.
func (s *service) resolve(ctx context.Context, ids []string, req RunPayrollRequest) ([]employee.Employee, []string, error) {
	found, err := s.roster.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[string]employee.Employee, len(found))
	for _, e := range found {
		byID[e.ID] = e
	}

	resolved := make([]employee.Employee, 0, len(ids))
	skipped := make([]string, 0)
	for _, id := range ids {
		e, ok := byID[id]
		if ok && req.ScopeToClient && (e.ClientID == nil || *e.ClientID != req.ClientID) {
			ok = false
		}
		if !ok {
			skipped = append(skipped, id)
			continue
		}
		resolved = append(resolved, e)
	}
	return resolved, skipped, nil
}

func (s *service) computeAll(ctx context.Context, roster []employee.Employee) ([]Calculation, error) {
	calcs := make([]Calculation, len(roster))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range roster {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			calcs[i] = Calculate(roster[i], s.rates, s.pipeline)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return calcs, ctx.Err()
}

func (s *service) GetPayslip(ctx context.Context, id string) (PayslipResponse, error) {
	p, err := s.findPayslip(ctx, id)
	if err != nil {
		return PayslipResponse{}, err
	}
	return mapPayslipResponse(*p), nil
}

func (s *service) ListPayslips(ctx context.Context, filter PayslipFilter) ([]PayslipResponse, error) {
	payslips, err := s.repo.ListPayslips(ctx, filter)
	if err != nil {
		s.logger.Error("list payslips failed", zap.Error(err))
		return nil, err
	}

	resp := make([]PayslipResponse, len(payslips))
	for i, p := range payslips {
		resp[i] = mapPayslipResponse(p)
	}
	return resp, nil
}

func (s *service) GetAudit(ctx context.Context, id string) (AuditResponse, error) {
	a, err := s.repo.FindAuditByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AuditResponse{}, payrollerrors.ErrAuditNotFound
		}
		s.logger.Error("get payroll audit failed", zap.String("audit_id", id), zap.Error(err))
		return AuditResponse{}, err
	}
	return mapAuditResponse(*a), nil
}

func (s *service) ListAudits(ctx context.Context, clientID string) ([]AuditResponse, error) {
	audits, err := s.repo.ListAudits(ctx, clientID)
	if err != nil {
		s.logger.Error("list payroll audits failed", zap.Error(err))
		return nil, err
	}

	resp := make([]AuditResponse, len(audits))
	for i, a := range audits {
		resp[i] = mapAuditResponse(a)
	}
	return resp, nil
}

func (s *service) RenderPayslipPDF(ctx context.Context, id string) ([]byte, error) {
	p, err := s.findPayslip(ctx, id)
	if err != nil {
		return nil, err
	}

	doc, err := renderPayslipPDF(*p)
	if err != nil {
		s.logger.Error("render payslip pdf failed", zap.String("payslip_id", id), zap.Error(err))
		return nil, payrollerrors.ErrRenderPayslip.WithErr(err)
	}
	return doc, nil
}

func (s *service) ExportPayslipsCSV(ctx context.Context, filter PayslipFilter, w io.Writer) error {
	payslips, err := s.repo.ListPayslips(ctx, filter)
	if err != nil {
		s.logger.Error("export payslips failed", zap.Error(err))
		return err
	}

	rows := make([]PaymentExportRow, len(payslips))
	for i, p := range payslips {
		rows[i] = PaymentExportRow{
			PayslipID:      p.ID,
			EmployeeNumber: p.EmployeeNumber,
			EmployeeName:   p.EmployeeName,
			Period:         p.Period,
			PaymentMethod:  p.PaymentMethod,
			BankName:       p.BankName,
			AccountNumber:  p.AccountNumber,
			Phone:          p.Phone,
			NetPay:         p.NetPay.String(),
		}
	}
	return gocsv.Marshal(&rows, w)
}

func (s *service) findPayslip(ctx context.Context, id string) (*Payslip, error) {
	p, err := s.repo.FindPayslipByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payrollerrors.ErrPayslipNotFound
		}
		s.logger.Error("get payslip failed", zap.String("payslip_id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

// validateRunRequest trims the period and drops repeated ids, keeping the
// first occurrence so each employee gets one payslip per run.
func validateRunRequest(req RunPayrollRequest) ([]string, string, error) {
	if len(req.EmployeeIDs) == 0 {
		return nil, "", payrollerrors.ErrEmptyEmployeeIDs
	}
	period := strings.TrimSpace(req.Period)
	if period == "" {
		return nil, "", payrollerrors.ErrEmptyPeriod
	}

	seen := make(map[string]struct{}, len(req.EmployeeIDs))
	ids := make([]string, 0, len(req.EmployeeIDs))
	for _, raw := range req.EmployeeIDs {
		id := strings.TrimSpace(raw)
		if id == "" {
			return nil, "", payrollerrors.ErrBlankEmployeeID
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, period, nil
}

func buildPayslip(e employee.Employee, c Calculation, period, requestClientID, rateVersion string, now time.Time) Payslip {
	clientID := e.ClientID
	if clientID == nil || *clientID == "" {
		clientID = optional(requestClientID)
	}

	d := c.Deductions
	return Payslip{
		EmployeeID:            e.ID,
		EmployeeNumber:        e.EmployeeNumber,
		EmployeeName:          e.Name,
		Period:                period,
		ClientID:              clientID,
		GrossSalary:           c.Income.Gross,
		HousingAllowance:      c.Income.Housing,
		TransportAllowance:    c.Income.Transport,
		OtherAllowance:        c.Income.Other,
		TaxablePay:            c.Income.Taxable,
		PAYE:                  d.PAYE,
		NSSFEmployee:          d.NSSF.Employee,
		NSSFEmployer:          d.NSSF.Employer,
		SHIF:                  d.SHIF,
		AHLEmployee:           d.AHL.Employee,
		AHLEmployer:           d.AHL.Employer,
		NITAEmployer:          d.NITA.Employer,
		HELB:                  d.HELB,
		NHIF:                  d.NHIF,
		CustomDeductions:      d.Custom,
		CustomDeductionsTotal: d.CustomTotal,
		TotalDeductions:       d.TotalEmployee,
		NetPay:                c.NetPay,
		PaymentMethod:         e.PaymentMethod,
		BankName:              e.BankName,
		AccountNumber:         e.AccountNumber,
		Phone:                 e.Phone,
		RateVersion:           rateVersion,
		GeneratedAt:           now,
	}
}

func auditReference(period, clientID string, unixMilli int64) string {
	return fmt.Sprintf("%s_%s_%d", strings.Join(strings.Fields(period), "_"), clientLabel(clientID), unixMilli)
}

func clientLabel(clientID string) string {
	if clientID == "" {
		return generalOrgReference
	}
	return clientID
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func mapPayslipResponse(p Payslip) PayslipResponse {
	custom := p.CustomDeductions
	if custom == nil {
		custom = []employee.CustomDeduction{}
	}
	return PayslipResponse{
		ID:             p.ID,
		AuditID:        p.AuditID,
		EmployeeID:     p.EmployeeID,
		EmployeeNumber: p.EmployeeNumber,
		EmployeeName:   p.EmployeeName,
		Period:         p.Period,
		ClientID:       p.ClientID,
		GrossSalary:    p.GrossSalary,
		Allowances: AllowanceResponse{
			Housing:   p.HousingAllowance,
			Transport: p.TransportAllowance,
			Other:     p.OtherAllowance,
		},
		TaxablePay: p.TaxablePay,
		Deductions: DeductionResponse{
			PAYE:        p.PAYE,
			NSSF:        Contribution{Employee: p.NSSFEmployee, Employer: p.NSSFEmployer},
			SHIF:        p.SHIF,
			AHL:         Contribution{Employee: p.AHLEmployee, Employer: p.AHLEmployer},
			NITA:        EmployerContribution{Employer: p.NITAEmployer},
			HELB:        p.HELB,
			NHIF:        p.NHIF,
			Custom:      custom,
			CustomTotal: p.CustomDeductionsTotal,
			Total:       p.TotalDeductions,
		},
		NetPay:        p.NetPay,
		PaymentMethod: p.PaymentMethod,
		BankName:      p.BankName,
		AccountNumber: p.AccountNumber,
		Phone:         p.Phone,
		RateVersion:   p.RateVersion,
		GeneratedAt:   p.GeneratedAt,
	}
}

func mapAuditResponse(a PayrollAudit) AuditResponse {
	ids := a.PayslipIDs
	if ids == nil {
		ids = []string{}
	}
	skipped := a.SkippedEmployeeIDs
	if skipped == nil {
		skipped = []string{}
	}
	return AuditResponse{
		ID:                 a.ID,
		Reference:          a.Reference,
		Period:             a.Period,
		ClientID:           a.ClientID,
		Status:             a.Status,
		TotalNetPay:        a.TotalNetPay,
		TotalDeductions:    a.TotalDeductions,
		PayslipIDs:         ids,
		SkippedEmployeeIDs: skipped,
		RateVersion:        a.RateVersion,
		ExecutedBy:         a.ExecutedBy,
		ExecutedAt:         a.ExecutedAt,
	}
}
