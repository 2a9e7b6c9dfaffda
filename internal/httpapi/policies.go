package httpapi

import "atelierhq.io/internal/authz"

// Permission names bound at startup. One place to read the whole policy
// surface of the portal.
const (
	PermOrdersRead          = "orders.read"
	PermOrdersManage        = "orders.manage"
	PermInvoicesRead        = "invoices.read"
	PermOrganizationsManage = "organizations.manage"
	PermAuditRead           = "audit.read"
)

// BuildPolicies constructs the registry the engine evaluates against.
func BuildPolicies() (*authz.Registry, error) {
	return authz.NewRegistry(map[string]authz.Requirement{
		PermOrdersRead: authz.RequireRoles(
			authz.RoleDirector, authz.RoleFinance, authz.RolePlatformStaff,
		).MatchOrganization(),

		PermOrdersManage: authz.RequireRoles(
			authz.RoleDirector, authz.RolePlatformStaff,
		).MatchOrganization(),

		// Finance-only on paper; Director satisfies it through the role
		// hierarchy.
		PermInvoicesRead: authz.RequireRoles(
			authz.RoleFinance,
		).MatchOrganization(),

		PermOrganizationsManage: authz.RequireRoles(
			authz.RolePlatformStaff,
		),

		PermAuditRead: authz.RequireRoles(
			authz.RolePlatformStaff,
		),
	})
}
