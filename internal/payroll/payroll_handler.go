package payroll

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Philgatex/huashang-hais-app/internal/domain"
	payrollerrors "github.com/Philgatex/huashang-hais-app/internal/payroll/errors"
	"github.com/Philgatex/huashang-hais-app/internal/shared/apperror"
	"github.com/Philgatex/huashang-hais-app/internal/shared/response"
	"github.com/Philgatex/huashang-hais-app/internal/tenant"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("payroll.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.handler")
	}
	return &Handler{service: service, logger: l}
}

func getActorID(c *gin.Context) string {
	actorID := c.GetString("user_id_validated")
	if actorID == "" {
		actorID = c.GetString("user_id")
	}
	return actorID
}

func isPartner(c *gin.Context) bool {
	return c.GetString("role") == domain.RolePayrollPartner
}

// clientScope resolves the client filter of the request and writes the error
// response itself when the caller has none.
func (h *Handler) clientScope(c *gin.Context) (string, bool) {
	clientID, err := tenant.Resolve(c.GetString("role"), c.GetString("client_id"), c.Query("client_id"))
	if err != nil {
		h.writeServiceError(c, err)
		return "", false
	}
	return clientID, true
}

// ownedByCaller reports whether a partner may see a record of clientID.
func ownedByCaller(c *gin.Context, clientID *string) bool {
	if !isPartner(c) {
		return true
	}
	own := c.GetString("client_id")
	return own != "" && clientID != nil && *clientID == own
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("payroll request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Run(c *gin.Context) {
	var req RunPayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http run payroll validation failed", zap.Error(err))
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, err.Error())
		return
	}

	if isPartner(c) {
		clientID, ok := h.clientScope(c)
		if !ok {
			return
		}
		req.ClientID = clientID
		req.ScopeToClient = true
	}

	summary, err := h.service.Run(c.Request.Context(), getActorID(c), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, summary, nil)
}

func (h *Handler) ListRuns(c *gin.Context) {
	clientID, ok := h.clientScope(c)
	if !ok {
		return
	}

	resp, err := h.service.ListAudits(c.Request.Context(), clientID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, pageSize := pageParams(c)
	items, meta := response.Paginate(resp, page, pageSize)
	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) GetRun(c *gin.Context) {
	resp, err := h.service.GetAudit(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	if !ownedByCaller(c, resp.ClientID) {
		h.writeServiceError(c, payrollerrors.ErrAuditNotFound)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ListPayslips(c *gin.Context) {
	filter, ok := h.payslipFilter(c)
	if !ok {
		return
	}
	h.listPayslips(c, filter)
}

// ListMyPayslips lists the payslips of the employee in the token, whatever
// filter the query string asks for.
func (h *Handler) ListMyPayslips(c *gin.Context) {
	employeeID, ok := h.ownEmployee(c)
	if !ok {
		return
	}
	h.listPayslips(c, PayslipFilter{
		Period:     strings.TrimSpace(c.Query("period")),
		EmployeeID: employeeID,
	})
}

func (h *Handler) listPayslips(c *gin.Context, filter PayslipFilter) {
	resp, err := h.service.ListPayslips(c.Request.Context(), filter)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, pageSize := pageParams(c)
	items, meta := response.Paginate(resp, page, pageSize)
	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) GetPayslip(c *gin.Context) {
	resp, ok := h.visiblePayslip(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) DownloadPayslipPDF(c *gin.Context) {
	resp, ok := h.visiblePayslip(c)
	if !ok {
		return
	}
	h.writePayslipPDF(c, resp)
}

// DownloadMyPayslipPDF serves a payslip only to the employee it was issued to.
func (h *Handler) DownloadMyPayslipPDF(c *gin.Context) {
	employeeID, ok := h.ownEmployee(c)
	if !ok {
		return
	}

	resp, err := h.service.GetPayslip(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	if resp.EmployeeID != employeeID {
		h.writeServiceError(c, payrollerrors.ErrPayslipNotFound)
		return
	}
	h.writePayslipPDF(c, resp)
}

func (h *Handler) writePayslipPDF(c *gin.Context, resp PayslipResponse) {
	doc, err := h.service.RenderPayslipPDF(c.Request.Context(), resp.ID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("payslip_%s_%s.pdf", resp.EmployeeNumber, strings.Join(strings.Fields(resp.Period), "_"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", doc)
}

// ExportPayslips renders the disbursement CSV in memory so a failure can
// still be reported as JSON.
func (h *Handler) ExportPayslips(c *gin.Context) {
	filter, ok := h.payslipFilter(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.service.ExportPayslipsCSV(c.Request.Context(), filter, &buf); err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="payslips.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) GetRates(c *gin.Context) {
	response.Success(c, http.StatusOK, h.service.Rates(), nil)
}

func (h *Handler) visiblePayslip(c *gin.Context) (PayslipResponse, bool) {
	resp, err := h.service.GetPayslip(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return PayslipResponse{}, false
	}
	if !ownedByCaller(c, resp.ClientID) {
		h.writeServiceError(c, payrollerrors.ErrPayslipNotFound)
		return PayslipResponse{}, false
	}
	return resp, true
}

// ownEmployee returns the employee id bound to the token.
func (h *Handler) ownEmployee(c *gin.Context) (string, bool) {
	employeeID := c.GetString("employee_id")
	if employeeID == "" {
		h.writeServiceError(c, payrollerrors.ErrNoEmployeeProfile)
		return "", false
	}
	return employeeID, true
}

func (h *Handler) payslipFilter(c *gin.Context) (PayslipFilter, bool) {
	clientID, ok := h.clientScope(c)
	if !ok {
		return PayslipFilter{}, false
	}
	return PayslipFilter{
		Period:     strings.TrimSpace(c.Query("period")),
		ClientID:   clientID,
		EmployeeID: c.Query("employee_id"),
		AuditID:    c.Query("audit_id"),
	}, true
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, pageSize
}
