package tasks

import "strconv"

// RoleCode is the ordered privilege level of a user. Lower values carry
// more privilege, so comparisons always read "role <= threshold" for
// "at least as privileged as threshold". The numeric convention is defined
// here and nowhere else; guards go through the predicates below instead of
// comparing raw integers.
type RoleCode int

const (
	// RoleAdministrator has full access to every resource
	RoleAdministrator RoleCode = 1
	// RoleManager can manage users but not other users' tasks
	RoleManager RoleCode = 2
	// RoleGeneralUser owns and manages their own tasks
	RoleGeneralUser RoleCode = 3
	// RoleGuest is a read-only visitor
	RoleGuest RoleCode = 4
)

// IsValid checks if the role is one of the predefined valid roles
func (r RoleCode) IsValid() bool {
	switch r {
	case RoleAdministrator, RoleManager, RoleGeneralUser, RoleGuest:
		return true
	default:
		return false
	}
}

// IsAtLeast checks if this role meets the minimum required privilege level.
// Invalid roles never satisfy any threshold.
func (r RoleCode) IsAtLeast(min RoleCode) bool {
	if !r.IsValid() || !min.IsValid() {
		return false
	}
	return r <= min
}

// Level exposes the raw numeric level for packages that cannot depend on
// this one (the route-guard middleware mirrors claims through it).
func (r RoleCode) Level() int {
	return int(r)
}

func (r RoleCode) String() string {
	switch r {
	case RoleAdministrator:
		return "administrator"
	case RoleManager:
		return "manager"
	case RoleGeneralUser:
		return "user"
	case RoleGuest:
		return "guest"
	default:
		return "role(" + strconv.Itoa(int(r)) + ")"
	}
}

// GetAllRoles returns all predefined roles in privilege order
func GetAllRoles() []RoleCode {
	return []RoleCode{
		RoleAdministrator,
		RoleManager,
		RoleGeneralUser,
		RoleGuest,
	}
}

// ParseRole safely converts a numeric level into a RoleCode
func ParseRole(level int) (RoleCode, bool) {
	role := RoleCode(level)
	return role, role.IsValid()
}

// ParseRoleName converts a role name into a RoleCode
func ParseRoleName(name string) (RoleCode, bool) {
	for _, role := range GetAllRoles() {
		if role.String() == name {
			return role, true
		}
	}
	return 0, false
}
