package authz

import (
	"fmt"
	"sort"
)

// Requirement declares what a guarded endpoint demands: an allowed-role
// set, whether the caller's organization must match the target, and whether
// platform staff may cross organization boundaries. Requirements are
// immutable values shared across concurrent evaluations.
type Requirement struct {
	AllowedRoles             []Role
	RequireOrganizationMatch bool
	AllowCrossOrganization   bool
}

// RequireRoles builds a Requirement allowing the given roles, with
// cross-organization override enabled (the default posture).
func RequireRoles(roles ...Role) Requirement {
	return Requirement{
		AllowedRoles:           roles,
		AllowCrossOrganization: true,
	}
}

// MatchOrganization returns a copy demanding that the caller's organization
// equal the resolved target organization.
func (r Requirement) MatchOrganization() Requirement {
	r.RequireOrganizationMatch = true
	return r
}

// DenyCrossOrganization returns a copy that removes the PlatformStaff
// bypass of the organization-match check.
func (r Requirement) DenyCrossOrganization() Requirement {
	r.AllowCrossOrganization = false
	return r
}

// allows reports whether role is in the allowed set, directly or through
// the role hierarchy.
func (r Requirement) allows(role Role) bool {
	for _, allowed := range r.AllowedRoles {
		if role.Satisfies(allowed) {
			return true
		}
	}
	return false
}

// Registry is the process-wide, read-only table binding permission names to
// Requirements. It is built once at startup and injected into the engine;
// concurrent lookups need no locking.
type Registry struct {
	reqs map[string]Requirement
}

// NewRegistry validates the definitions and freezes them. A requirement
// with no allowed roles is a configuration error, not a runtime deny.
func NewRegistry(defs map[string]Requirement) (*Registry, error) {
	reqs := make(map[string]Requirement, len(defs))
	for name, req := range defs {
		if name == "" {
			return nil, fmt.Errorf("authz: requirement with empty name")
		}
		if len(req.AllowedRoles) == 0 {
			return nil, fmt.Errorf("authz: requirement %q has no allowed roles", name)
		}
		for _, role := range req.AllowedRoles {
			if _, ok := ParseRole(string(role)); !ok {
				return nil, fmt.Errorf("authz: requirement %q references unknown role %q", name, role)
			}
		}
		reqs[name] = req
	}
	return &Registry{reqs: reqs}, nil
}

// Lookup returns the Requirement bound to name.
func (r *Registry) Lookup(name string) (Requirement, bool) {
	req, ok := r.reqs[name]
	return req, ok
}

// Names lists all registered permission names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.reqs))
	for name := range r.reqs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
