package authz

// Role is the closed set of portal roles. Director and Finance are bound to
// their home organization; PlatformStaff belongs to no tenant.
type Role string

const (
	RoleDirector      Role = "Director"
	RoleFinance       Role = "Finance"
	RolePlatformStaff Role = "PlatformStaff"
)

// roleDescriptions is the static display/parsing table for the role set.
var roleDescriptions = map[Role]string{
	RoleDirector:      "Organization director",
	RoleFinance:       "Organization finance staff",
	RolePlatformStaff: "Internal platform staff",
}

// roleInferiors lists, per role, the roles it is strictly superior to.
// A single edge exists today: Director satisfies Finance-gated requirements
// within the same organization. Extend this table, not the engine, when
// new roles arrive.
var roleInferiors = map[Role][]Role{
	RoleDirector: {RoleFinance},
}

// ParseRole maps a raw claim string onto the closed role set.
func ParseRole(raw string) (Role, bool) {
	r := Role(raw)
	if _, ok := roleDescriptions[r]; ok {
		return r, true
	}
	return "", false
}

// Description returns the human-readable role description, or the raw value
// for roles outside the table.
func (r Role) Description() string {
	if d, ok := roleDescriptions[r]; ok {
		return d
	}
	return string(r)
}

// Satisfies reports whether r fulfils a requirement on required: either the
// same role, or one the hierarchy table marks r superior to.
func (r Role) Satisfies(required Role) bool {
	if r == required {
		return true
	}
	for _, inferior := range roleInferiors[r] {
		if inferior == required {
			return true
		}
	}
	return false
}

// Roles returns the full role set in stable order.
func Roles() []Role {
	return []Role{RoleDirector, RoleFinance, RolePlatformStaff}
}
