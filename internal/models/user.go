package models

// UserRole represents the roles the grading backend assigns.
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// User is the authenticated identity returned by `/api/user/me`.
type User struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// IsAdmin reports whether the user may see the admin views.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
