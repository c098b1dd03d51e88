package school

import "strings"

// Roles
const (
	RoleAdmin   = "admin:"
	RoleTeacher = "teacher:"
	RoleStudent = "student:"
)

var AllRoles = []string{RoleAdmin, RoleTeacher, RoleStudent}

// ParseRole accepts "admin", "admin:" or a sub-role like "admin:owner".
func ParseRole(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s != "" && !strings.Contains(s, ":") {
		s += ":"
	}
	for _, role := range AllRoles {
		if strings.HasPrefix(s, role) {
			return s, true
		}
	}
	return "", false
}

func RoleStartsWith(roles []string, prefix string) bool {
	for _, role := range roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func IsAdmin(roles []string) bool { return RoleStartsWith(roles, RoleAdmin) }

func IsTeacher(roles []string) bool { return RoleStartsWith(roles, RoleTeacher) }

// CanWrite reports whether roles may add records.
func CanWrite(roles []string) bool { return IsAdmin(roles) || IsTeacher(roles) }
