package employee

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/Philgatex/huashang-hais-app/internal/domain"
	employeeerrors "github.com/Philgatex/huashang-hais-app/internal/employee/errors"
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
	l := zap.L().Named("employee.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("employee request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) writeBindError(c *gin.Context, err error) {
	h.logger.Warn("http employee validation failed", zap.Error(err))
	httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, err.Error())
}

// clientScope writes the error response itself when the caller has no scope.
func (h *Handler) clientScope(c *gin.Context) (string, bool) {
	clientID, err := tenant.Resolve(c.GetString("role"), c.GetString("client_id"), c.Query("client_id"))
	if err != nil {
		h.writeServiceError(c, err)
		return "", false
	}
	return clientID, true
}

func isPartner(c *gin.Context) bool {
	return c.GetString("role") == domain.RolePayrollPartner
}

// visible hides employees of other clients from a payroll partner.
func (h *Handler) visible(c *gin.Context, id string) (EmployeeResponse, bool) {
	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return EmployeeResponse{}, false
	}
	if isPartner(c) && (c.GetString("client_id") == "" || resp.ClientID == nil || *resp.ClientID != c.GetString("client_id")) {
		h.writeServiceError(c, employeeerrors.ErrEmployeeNotFound)
		return EmployeeResponse{}, false
	}
	return resp, true
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	if isPartner(c) {
		clientID, ok := h.clientScope(c)
		if !ok {
			return
		}
		req.ClientID = &clientID
	}
	h.logger.Debug("http create employee", zap.String("email", req.Email))

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	clientID, ok := h.clientScope(c)
	if !ok {
		return
	}
	h.logger.Debug("http get all employees", zap.String("client_id", clientID))

	resp, err := h.service.GetAll(c.Request.Context(), clientID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	q := strings.TrimSpace(strings.ToLower(c.Query("q")))
	if q != "" {
		filtered := make([]EmployeeResponse, 0, len(resp))
		for _, e := range resp {
			if strings.Contains(strings.ToLower(e.Name), q) ||
				strings.Contains(strings.ToLower(e.Email), q) ||
				strings.Contains(strings.ToLower(e.EmployeeNumber), q) {
				filtered = append(filtered, e)
			}
		}
		resp = filtered
	}

	sortBy := strings.ToLower(strings.TrimSpace(c.DefaultQuery("sort_by", "employee_number")))
	desc := strings.EqualFold(c.Query("sort_dir"), "desc")
	sort.SliceStable(resp, func(i, j int) bool {
		var less bool
		switch sortBy {
		case "name":
			less = strings.ToLower(resp[i].Name) < strings.ToLower(resp[j].Name)
		case "department":
			less = strings.ToLower(resp[i].Department) < strings.ToLower(resp[j].Department)
		default:
			less = resp[i].EmployeeNumber < resp[j].EmployeeNumber
		}
		if desc {
			return !less
		}
		return less
	})

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	items, meta := response.Paginate(resp, page, pageSize)

	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) GetOptions(c *gin.Context) {
	clientID, ok := h.clientScope(c)
	if !ok {
		return
	}

	resp, err := h.service.GetOptions(c.Request.Context(), clientID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	id := c.Param("id")
	h.logger.Debug("http get employee by id", zap.String("employee_id", id))

	resp, ok := h.visible(c, id)
	if !ok {
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")
	h.logger.Debug("http update employee", zap.String("employee_id", id))

	var req UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	if _, ok := h.visible(c, id); !ok {
		return
	}
	if isPartner(c) {
		clientID, ok := h.clientScope(c)
		if !ok {
			return
		}
		req.ClientID = &clientID
	}

	resp, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	h.logger.Debug("http delete employee", zap.String("employee_id", id))

	if _, ok := h.visible(c, id); !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}
