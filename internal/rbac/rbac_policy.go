package rbac

import "github.com/Philgatex/huashang-hais-app/internal/domain"

const (
	ResourcePayroll  = "payroll"
	ResourceEmployee = "employee"
	ResourceHelpdesk = "helpdesk"
	ResourceApproval = "approval"

	ActionRead  = "read"
	ActionWrite = "write"
	ActionRun   = "run"
	ActionAsk   = "ask"

	// ActionReadOwn covers records issued to the caller's own employee profile.
	ActionReadOwn = "read_own"
	// ActionDecide approves or rejects a pending approval.
	ActionDecide = "decide"
	ActionSubmit = "submit"
)

type Permission struct {
	Role     string
	Resource string
	Action   string
}

// Inheritance maps a role to the role whose permissions it also holds.
type Inheritance struct {
	Role   string
	Parent string
}

// DefaultPolicy mirrors the portal navigation. Payroll pages and the employee
// database belong to HR, Admin and payroll partners; the approval center to
// HR, Admin and supervisors. Employees only see their own payslips.
func DefaultPolicy() ([]Permission, []Inheritance) {
	perms := []Permission{
		{domain.RoleHR, ResourcePayroll, "*"},
		{domain.RoleHR, ResourceEmployee, "*"},
		{domain.RoleHR, ResourceHelpdesk, ActionAsk},
		{domain.RoleHR, ResourceApproval, "*"},

		{domain.RolePayrollPartner, ResourcePayroll, ActionRun},
		{domain.RolePayrollPartner, ResourcePayroll, ActionRead},
		{domain.RolePayrollPartner, ResourceEmployee, ActionRead},
		{domain.RolePayrollPartner, ResourceHelpdesk, ActionAsk},

		{domain.RoleSupervisor, ResourceApproval, ActionRead},
		{domain.RoleSupervisor, ResourceApproval, ActionDecide},
		{domain.RoleSupervisor, ResourceApproval, ActionSubmit},
		{domain.RoleSupervisor, ResourceHelpdesk, ActionAsk},

		{domain.RoleEmployee, ResourcePayroll, ActionReadOwn},
		{domain.RoleEmployee, ResourceApproval, ActionSubmit},
		{domain.RoleEmployee, ResourceHelpdesk, ActionAsk},
		{domain.RoleRecruiter, ResourceHelpdesk, ActionAsk},
	}
	roles := []Inheritance{
		{Role: domain.RoleAdmin, Parent: domain.RoleHR},
	}
	return perms, roles
}
