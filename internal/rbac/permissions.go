package rbac

// Permission names attached to roles. They describe what a tier is meant to
// cover and are returned with resolved principals for clients to render;
// enforcement compares role ranks, not individual permissions.
const (
	PermViewTasks   = "view_tasks"
	PermCreateTasks = "create_tasks"
	PermUpdateTasks = "update_tasks"
	PermDeleteTasks = "delete_tasks"
	PermViewUsers   = "view_users"
	PermCreateUsers = "create_users"
	PermUpdateUsers = "update_users"
	PermDeleteUsers = "delete_users"
	PermManageRoles = "manage_roles"
)

var rolePermissions = map[RoleType][]string{
	RoleOwner: {
		PermViewTasks, PermCreateTasks, PermUpdateTasks, PermDeleteTasks,
		PermViewUsers, PermCreateUsers, PermUpdateUsers, PermDeleteUsers,
		PermManageRoles,
	},
	RoleAdmin: {
		PermViewTasks, PermCreateTasks, PermUpdateTasks, PermDeleteTasks,
		PermViewUsers, PermCreateUsers, PermUpdateUsers,
	},
	RoleViewer: {
		PermViewTasks, PermViewUsers,
	},
}

// Permissions returns the permission names granted to a role. The returned
// slice is a copy; callers may mutate it freely.
func Permissions(role RoleType) []string {
	perms := rolePermissions[role]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}
