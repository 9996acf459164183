package models

import "fmt"

// Permission is a closed enumeration of the capabilities a group can carry.
// Values outside this set stored in the database are treated as corruption
// and never grant anything.
type Permission string

const (
	// PermissionManageUsers allows user and group administration
	PermissionManageUsers Permission = "manage_users"

	// PermissionManageContent allows editing documents and assets
	PermissionManageContent Permission = "manage_content"

	// PermissionManageBranches allows writes to protected branches
	PermissionManageBranches Permission = "manage_branches"
)

// AllPermissions returns every member of the enumeration
func AllPermissions() []Permission {
	return []Permission{
		PermissionManageUsers,
		PermissionManageContent,
		PermissionManageBranches,
	}
}

// ParsePermission converts a stored string into a Permission, failing on
// anything outside the enumeration
func ParsePermission(s string) (Permission, error) {
	switch Permission(s) {
	case PermissionManageUsers, PermissionManageContent, PermissionManageBranches:
		return Permission(s), nil
	}
	return "", fmt.Errorf("%q is not a valid permission", s)
}

// Valid reports whether the permission is a member of the enumeration
func (p Permission) Valid() bool {
	_, err := ParsePermission(string(p))
	return err == nil
}

func (p Permission) String() string {
	return string(p)
}
