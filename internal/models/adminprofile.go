package models

import (
	"time"

	"gorm.io/gorm"
)

// Admin role values
const (
	AdminRoleAdmin       = "admin"
	AdminRoleManager     = "manager"
	AdminRoleSupervisor  = "supervisor"
	AdminRoleStaff       = "staff"
	AdminRoleSiteManager = "site_manager"
)

// Approval status values
const (
	ApprovalPending   = "pending"
	ApprovalApproved  = "approved"
	ApprovalDenied    = "denied"
	ApprovalSuspended = "suspended"
)

// AdminProfile holds the approval-gated attributes of an administrative
// account. Clients never get one; admins and site managers always do.
type AdminProfile struct {
	gorm.Model
	UserID              uint       `json:"user_id" gorm:"uniqueIndex;not null"`
	AdminRole           string     `json:"admin_role" gorm:"not null"` // admin, manager, supervisor, staff, site_manager
	ApprovalStatus      string     `json:"approval_status" gorm:"default:'pending'"`
	ApprovedByID        *uint      `json:"approved_by_id"`
	ApprovedAt          *time.Time `json:"approved_at"`
	AccountLockedUntil  *time.Time `json:"account_locked_until"`
	FailedLoginAttempts int        `json:"failed_login_attempts" gorm:"default:0"`
	Phone               string     `json:"phone"`
	Department          string     `json:"department"`
}

// Locked reports whether the account is inside a lockout window at now
func (p *AdminProfile) Locked(now time.Time) bool {
	return p.AccountLockedUntil != nil && now.Before(*p.AccountLockedUntil)
}

// ValidAdminRole checks a role value against the known set
func ValidAdminRole(role string) bool {
	switch role {
	case AdminRoleAdmin, AdminRoleManager, AdminRoleSupervisor, AdminRoleStaff, AdminRoleSiteManager:
		return true
	}
	return false
}
