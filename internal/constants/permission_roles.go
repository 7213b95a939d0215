package constants

import "parknet-backend/internal/domain"

// PermissionRoles maps each permission to the roles allowed to perform it.
var PermissionRoles = map[string][]string{
	SubmitRequest:    {domain.RoleResident, domain.RoleAdmin},
	ViewOwnRequests:  {domain.RoleResident, domain.RoleAdmin},
	ListRequests:     {domain.RoleAdmin},
	RunLottery:       {domain.RoleAdmin},
	ViewLottery:      {domain.RoleResident, domain.RoleAdmin},
	ViewOwnLottery:   {domain.RoleResident, domain.RoleAdmin},
	ViewResidentSlot: {domain.RoleResident, domain.RoleAdmin},
	ReleaseSlot:      {domain.RoleAdmin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
