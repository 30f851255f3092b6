package services

import (
	"strings"
	"time"

	"github.com/triple-g/buildhub-backend/internal/models"
)

// Role is the coarse access tier derived from identity flags and profile state
type Role string

const (
	RoleAnonymous   Role = "anonymous"
	RolePublic      Role = "public"
	RoleAdmin       Role = "admin"
	RoleSiteManager Role = "site_manager"
	RoleSuperadmin  Role = "superadmin"
)

// CanLogin reports whether an approval-gated account may log in:
// identity active, profile approved, and not inside a lockout window.
func CanLogin(user *models.User, profile *models.AdminProfile, now time.Time) bool {
	if user == nil || profile == nil {
		return false
	}
	return user.Active &&
		profile.ApprovalStatus == models.ApprovalApproved &&
		!profile.Locked(now)
}

// ResolveRole derives the role for a user. It is a pure function of the
// identity flags and profile state; profile is nil for plain clients.
func ResolveRole(user *models.User, profile *models.AdminProfile, now time.Time) Role {
	if user == nil {
		return RoleAnonymous
	}

	// Superuser short-circuits every other check
	if user.IsSuperuser {
		return RoleSuperadmin
	}

	if profile != nil && CanLogin(user, profile, now) {
		switch profile.AdminRole {
		case models.AdminRoleSiteManager:
			return RoleSiteManager
		case models.AdminRoleAdmin, models.AdminRoleManager, models.AdminRoleStaff:
			return RoleAdmin
		case models.AdminRoleSupervisor:
			// supervisor is in the role enum but has no access tier of
			// its own; it gets public access like any other account
			return RolePublic
		}
	}

	return RolePublic
}

// pathRules holds the ordered allow/block prefix lists for one role
type pathRules struct {
	allowed []string
	blocked []string
}

var (
	adminRules = pathRules{
		allowed: []string{
			"/", "/about/", "/contact/", "/project/", "/blog/",
			"/accounts/admin-auth/", "/portfolio/projectmanagement/",
			"/blog/blogmanagement/", "/diary/adminside/",
		},
		blocked: []string{
			"/accounts/client/", "/usersettings/", "/user/",
			"/diary/dashboard/", "/diary/newproject/", "/diary/createblog/",
		},
	}
	siteManagerRules = pathRules{
		allowed: []string{
			"/", "/about/", "/contact/", "/project/", "/blog/",
			"/diary/", "/chatbot/", "/site/",
		},
		blocked: []string{
			"/accounts/client/", "/usersettings/", "/user/",
			"/accounts/admin-auth/", "/portfolio/projectmanagement/",
			"/blog/blogmanagement/", "/diary/adminside/",
		},
	}
	publicRules = pathRules{
		allowed: []string{
			"/", "/about/", "/contact/", "/project/",
			"/blog/", "/portfolio/",
			"/accounts/client/", "/usersettings/", "/user/",
		},
		blocked: []string{
			"/accounts/admin-auth/", "/adminside/", "/portfolio/projectmanagement/",
			"/blog/blogmanagement/", "/diary/adminside/",
		},
	}
	anonymousRules = pathRules{
		allowed: []string{
			"/", "/about/", "/contact/", "/project/", "/blog/",
		},
		blocked: []string{
			"/accounts/client/", "/accounts/admin-auth/",
			"/usersettings/", "/user/", "/portfolio/projectmanagement/",
			"/blog/blogmanagement/", "/diary/", "/adminside/",
		},
	}

	// Paths that stay closed unless a role explicitly allows them
	protectedPrefixes = []string{
		"/usersettings/", "/user/", "/portfolio/projectmanagement/",
		"/blog/blogmanagement/", "/diary/", "/adminside/",
	}
)

// CanAccess checks whether a role may reach a path. Blocked prefixes are
// checked strictly before allowed ones, so a path matching both is denied.
func CanAccess(role Role, path string) bool {
	var rules pathRules
	switch role {
	case RoleSuperadmin:
		return true
	case RoleAdmin:
		rules = adminRules
	case RoleSiteManager:
		rules = siteManagerRules
	case RolePublic:
		rules = publicRules
	case RoleAnonymous:
		rules = anonymousRules
	default:
		rules = anonymousRules
	}

	if matchesPrefix(path, rules.blocked) {
		return false
	}
	if matchesPrefix(path, rules.allowed) {
		return true
	}
	if matchesPrefix(path, protectedPrefixes) {
		return false
	}

	// Anything not explicitly protected is open
	return true
}

func matchesPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// DashboardPath returns the landing page for a role after login
func DashboardPath(role Role) string {
	switch role {
	case RoleSuperadmin:
		return "/adminside/dashboard"
	case RoleAdmin:
		return "/portfolio/projectmanagement/"
	case RoleSiteManager:
		return "/diary/dashboard/"
	case RolePublic:
		return "/usersettings/"
	default:
		return "/accounts/client/login"
	}
}
