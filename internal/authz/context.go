package authz

// RequestContext is the narrow view of an inbound request the engine needs.
// It keeps the engine free of any HTTP framework dependency so evaluations
// can be unit-tested with plain structs.
type RequestContext interface {
	// HasIdentity reports whether the upstream authentication layer
	// attached any identity at all to the request.
	HasIdentity() bool
	// Claim looks up an authentication claim by name.
	Claim(name string) (string, bool)
	// RouteParam returns a named route parameter, or "" when absent.
	RouteParam(name string) string
	// QueryParam returns a named query parameter, or "" when absent.
	QueryParam(name string) string

	Method() string
	Path() string
	ClientIP() string
	UserAgent() string
}
