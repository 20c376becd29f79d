package models

// Roles known to the ledger core. Role storage lives outside this service.
const (
	RoleSuperAdmin    = "super_admin"
	RoleCompanyAdmin  = "company_admin"
	RoleBranchManager = "branch_manager"
	RoleAccountant    = "accountant"
	RoleViewer        = "viewer"
)

// User is the acting user handed to the core by the transport layer
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role"`
	BranchID *int64 `json:"branch_id,omitempty"`
}

// IsBranchScoped reports whether the user only sees their own branch
func (u User) IsBranchScoped() bool {
	return u.Role == RoleBranchManager
}
