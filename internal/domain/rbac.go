package domain

// Portal roles as carried in the access token.
const (
	RoleAdmin          = "Admin"
	RoleHR             = "HR"
	RolePayrollPartner = "Payroll Partner"
	RoleSupervisor     = "Supervisor"
	RoleEmployee       = "Employee"
	RoleRecruiter      = "Recruiter"
)

type EnforceRequest struct {
	Role     string `json:"role" binding:"required"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}
