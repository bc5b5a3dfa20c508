package employee_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Philgatex/huashang-hais-app/internal/domain"
	"github.com/Philgatex/huashang-hais-app/internal/employee"
	employeeerrors "github.com/Philgatex/huashang-hais-app/internal/employee/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeEmployeeService struct {
	CreateFn     func(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error)
	GetAllFn     func(ctx context.Context, clientID string) ([]employee.EmployeeResponse, error)
	GetOptionsFn func(ctx context.Context, clientID string) ([]employee.EmployeeOptionResponse, error)
	GetByIDFn    func(ctx context.Context, id string) (employee.EmployeeResponse, error)
	UpdateFn     func(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error)
	DeleteFn     func(ctx context.Context, id string) error
}

func (f *fakeEmployeeService) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	return f.CreateFn(ctx, req)
}
func (f *fakeEmployeeService) GetAll(ctx context.Context, clientID string) ([]employee.EmployeeResponse, error) {
	return f.GetAllFn(ctx, clientID)
}
func (f *fakeEmployeeService) GetOptions(ctx context.Context, clientID string) ([]employee.EmployeeOptionResponse, error) {
	return f.GetOptionsFn(ctx, clientID)
}
func (f *fakeEmployeeService) GetByID(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	return f.GetByIDFn(ctx, id)
}
func (f *fakeEmployeeService) Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	return f.UpdateFn(ctx, id, req)
}
func (f *fakeEmployeeService) Delete(ctx context.Context, id string) error {
	return f.DeleteFn(ctx, id)
}

func newTestContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	c.Request = req
	return c, w
}

func TestEmployeeHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeEmployeeService{
			CreateFn: func(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
				assert.Equal(t, "John Kamau", req.Name)
				assert.Equal(t, "75000", req.Salary.Gross.String())
				assert.Nil(t, req.ClientID)
				return employee.EmployeeResponse{ID: "e1", Name: req.Name, Email: req.Email}, nil
			},
		}
		h := employee.NewHandler(svc)

		body := `{"name":"John Kamau","email":"john@example.com","salary":{"gross":"75000"},"payment_details":{"method":"Bank","bank_name":"KCB"}}`
		c, w := newTestContext(http.MethodPost, "/api/v1/employees", body)
		c.Set("role", domain.RoleHR)

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "John Kamau")
	})

	t.Run("payroll partner is pinned to their client", func(t *testing.T) {
		svc := &fakeEmployeeService{
			CreateFn: func(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
				if assert.NotNil(t, req.ClientID) {
					assert.Equal(t, "client-acme", *req.ClientID)
				}
				return employee.EmployeeResponse{ID: "e1"}, nil
			},
		}
		h := employee.NewHandler(svc)

		body := `{"name":"John","email":"john@example.com","client_id":"client-other"}`
		c, w := newTestContext(http.MethodPost, "/api/v1/employees", body)
		c.Set("role", domain.RolePayrollPartner)
		c.Set("client_id", "client-acme")

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("validation error", func(t *testing.T) {
		h := employee.NewHandler(&fakeEmployeeService{})

		c, w := newTestContext(http.MethodPost, "/api/v1/employees", `{"email":"not-an-email"}`)

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_INPUT")
	})

	t.Run("unknown payment method", func(t *testing.T) {
		h := employee.NewHandler(&fakeEmployeeService{})

		body := `{"name":"John","email":"john@example.com","payment_details":{"method":"Barter"}}`
		c, w := newTestContext(http.MethodPost, "/api/v1/employees", body)

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("service conflict", func(t *testing.T) {
		svc := &fakeEmployeeService{
			CreateFn: func(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
				return employee.EmployeeResponse{}, employeeerrors.ErrEmployeeAlreadyExists
			},
		}
		h := employee.NewHandler(svc)

		c, w := newTestContext(http.MethodPost, "/api/v1/employees", `{"name":"John","email":"john@example.com"}`)

		h.Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestEmployeeHandler_GetAll(t *testing.T) {
	list := []employee.EmployeeResponse{
		{ID: "e2", EmployeeNumber: "EMP-000002", Name: "Budi", Email: "budi@comp.com"},
		{ID: "e1", EmployeeNumber: "EMP-000001", Name: "Andi", Email: "andi@comp.com"},
		{ID: "e3", EmployeeNumber: "EMP-000003", Name: "Citra", Email: "citra@comp.com"},
	}

	t.Run("filters, sorts and paginates", func(t *testing.T) {
		svc := &fakeEmployeeService{
			GetAllFn: func(ctx context.Context, clientID string) ([]employee.EmployeeResponse, error) {
				assert.Equal(t, "client-acme", clientID)
				return append([]employee.EmployeeResponse(nil), list...), nil
			},
		}
		h := employee.NewHandler(svc)

		c, w := newTestContext(http.MethodGet, "/api/v1/employees?client_id=client-acme&q=comp.com&page=1&page_size=2", "")
		c.Set("role", domain.RoleHR)

		h.GetAll(c)

		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "EMP-000001")
		assert.Contains(t, body, "EMP-000002")
		assert.NotContains(t, body, "EMP-000003")
		assert.Contains(t, body, `"total":3`)
		assert.Less(t, strings.Index(body, "EMP-000001"), strings.Index(body, "EMP-000002"))
	})

	t.Run("partner cannot widen the scope", func(t *testing.T) {
		svc := &fakeEmployeeService{
			GetAllFn: func(ctx context.Context, clientID string) ([]employee.EmployeeResponse, error) {
				assert.Equal(t, "client-acme", clientID)
				return nil, nil
			},
		}
		h := employee.NewHandler(svc)

		c, w := newTestContext(http.MethodGet, "/api/v1/employees?client_id=client-other", "")
		c.Set("role", domain.RolePayrollPartner)
		c.Set("client_id", "client-acme")

		h.GetAll(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("partner without client claim is refused", func(t *testing.T) {
		svc := &fakeEmployeeService{
			GetAllFn: func(ctx context.Context, clientID string) ([]employee.EmployeeResponse, error) {
				t.Fatal("service must not be called without a client scope")
				return nil, nil
			},
		}
		h := employee.NewHandler(svc)

		c, w := newTestContext(http.MethodGet, "/api/v1/employees", "")
		c.Set("role", domain.RolePayrollPartner)
		c.Set("client_id", "")

		h.GetAll(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"FORBIDDEN"`)
	})
}

func TestEmployeeHandler_GetByID(t *testing.T) {
	other := "client-other"
	svc := &fakeEmployeeService{
		GetByIDFn: func(ctx context.Context, id string) (employee.EmployeeResponse, error) {
			if id == "missing" {
				return employee.EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
			}
			return employee.EmployeeResponse{ID: id, Name: "Andi", ClientID: &other}, nil
		},
	}
	h := employee.NewHandler(svc)

	t.Run("hr sees any employee", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/api/v1/employees/e1", "")
		c.Params = gin.Params{{Key: "id", Value: "e1"}}
		c.Set("role", domain.RoleHR)

		h.GetByID(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Andi")
	})

	t.Run("partner gets not found for another client", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/api/v1/employees/e1", "")
		c.Params = gin.Params{{Key: "id", Value: "e1"}}
		c.Set("role", domain.RolePayrollPartner)
		c.Set("client_id", "client-acme")

		h.GetByID(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/api/v1/employees/missing", "")
		c.Params = gin.Params{{Key: "id", Value: "missing"}}

		h.GetByID(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestEmployeeHandler_Delete(t *testing.T) {
	deleted := ""
	svc := &fakeEmployeeService{
		GetByIDFn: func(ctx context.Context, id string) (employee.EmployeeResponse, error) {
			return employee.EmployeeResponse{ID: id}, nil
		},
		DeleteFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	h := employee.NewHandler(svc)

	c, w := newTestContext(http.MethodDelete, "/api/v1/employees/e1", "")
	c.Params = gin.Params{{Key: "id", Value: "e1"}}
	c.Set("role", domain.RoleHR)

	h.Delete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "e1", deleted)
}
