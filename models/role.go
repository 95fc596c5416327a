package models

import "time"

// Role statuses. At most one role per account may be RoleStatusActive at any
// time; assigning a new role deactivates all prior ones in the same
// transaction.
const (
	RoleStatusActive   = "ACTIVE"
	RoleStatusInactive = "INACTIVE"
)

// Role permission tiers.
const (
	RoleTypeSuperCSM    = "SUPER_CSM"
	RoleTypeCSM         = "CSM"
	RoleTypeSystemAdmin = "SYSTEM_ADMIN"
	RoleTypeAdmin       = "ADMIN"
	RoleTypeEmployee    = "EMPLOYEE"
)

// Role assigns an account to an organization with a permission tier.
type Role struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	OrganizationID int64     `json:"organization_id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the Role model.
func (r Role) TableName() string {
	return "roles"
}

// RolePatch mutates an account's role assignment. A zero ID means "replace":
// deactivate every existing role and create a new active one. A non-zero ID
// targets that role for an in-place update.
type RolePatch struct {
	ID   int64   `json:"id,omitempty"`
	Name *string `json:"name,omitempty"`
	Type *string `json:"type,omitempty"`

	// Organization identifies the (name, type) pair the role binds to.
	// Resolved to an organization ID inside the update transaction.
	Organization *Organization `json:"organization,omitempty"`
}
