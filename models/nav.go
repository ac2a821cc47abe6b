package models

type NavItem struct {
	Path  string `json:"path"`
	Label string `json:"label"`
}

// NavItems returns the sidebar entries shown to a role.
func NavItems(role Role) []NavItem {
	switch role {
	case RoleAdmin:
		return []NavItem{
			{"/dashboard", "Overview"},
			{"/tasks", "All Tasks"},
			{"/employees", "Employees"},
			{"/create-task", "New Task"},
			{"/attendance/register", "Register Face"},
		}
	case RoleManager:
		return []NavItem{
			{"/dashboard", "Overview"},
			{"/tasks", "All Tasks"},
			{"/my-tasks", "My Tasks"},
			{"/attendance/register", "Register Face"},
		}
	default:
		return []NavItem{
			{"/dashboard", "Overview"},
			{"/my-tasks", "My Tasks"},
			{"/inbox", "Inbox"},
		}
	}
}
