package authz

// OrganizationParam is the route/query parameter naming the target
// organization of a request.
const OrganizationParam = "organizationId"

// ResolveOrganization determines which organization the request targets.
// The route parameter wins; the query parameter of the same name is only
// consulted when the route carries none. An empty result means the request
// has no organization context, which is a normal outcome for endpoints
// that are not organization-scoped.
//
// The value's format is deliberately not validated here; existence checks
// belong to the guarded handler.
func ResolveOrganization(rc RequestContext) string {
	if org := rc.RouteParam(OrganizationParam); org != "" {
		return org
	}
	return rc.QueryParam(OrganizationParam)
}
