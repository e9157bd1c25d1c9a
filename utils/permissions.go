package utils

import "github.com/yeremiapane/choprek/models"

// Permission names checked by the router.
const (
	PermMenuRead       = "menu:read"
	PermMenuManage     = "menu:manage"
	PermOrderCreate    = "order:create"
	PermOrderReadOwn   = "order:read:own"
	PermOrderManage    = "order:manage"
	PermDeliveryManage = "delivery:manage"
	PermDriverManage   = "driver:manage"
	PermReportRead     = "report:read"
	PermUserManage     = "user:manage"
	PermAuditRead      = "audit:read"
)

var rolePermissions = map[string][]string{
	models.RoleEmployee: {PermMenuRead, PermOrderCreate, PermOrderReadOwn},
}

// HasPermission reports whether role grants perm. Admins hold every permission.
func HasPermission(role, perm string) bool {
	if role == models.RoleAdmin {
		return true
	}
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

func IsValidRole(role string) bool {
	return role == models.RoleAdmin || role == models.RoleEmployee
}
