package httpapi

import (
	"errors"
	"net/http"

	"atelierhq.io/internal/auth"
	"atelierhq.io/internal/authz"
)

// requestContext adapts an *http.Request to the engine's view of a request.
// Route parameters are supplied by the handler that parsed the path.
type requestContext struct {
	r        *http.Request
	identity auth.Identity
	hasID    bool
	params   map[string]string
}

func (rc *requestContext) HasIdentity() bool { return rc.hasID }

func (rc *requestContext) Claim(name string) (string, bool) {
	if !rc.hasID {
		return "", false
	}
	return rc.identity.Claim(name)
}

func (rc *requestContext) RouteParam(name string) string { return rc.params[name] }

func (rc *requestContext) QueryParam(name string) string {
	return rc.r.URL.Query().Get(name)
}

func (rc *requestContext) Method() string    { return rc.r.Method }
func (rc *requestContext) Path() string      { return rc.r.URL.Path }
func (rc *requestContext) ClientIP() string  { return clientIP(rc.r) }
func (rc *requestContext) UserAgent() string { return rc.r.UserAgent() }

// authorize runs the decision engine for the named requirement and writes
// the response on denial. The reason code stays internal; callers only ever
// see a generic 403 body, while the audit trail keeps the full story.
func (a *API) authorize(w http.ResponseWriter, r *http.Request, requirement string, params map[string]string) bool {
	id, ok := auth.IdentityFromContext(r.Context())
	rc := &requestContext{r: r, identity: id, hasID: ok, params: params}

	decision, err := a.engine.Evaluate(r.Context(), requirement, rc)
	if err != nil {
		if errors.Is(err, authz.ErrUnknownRequirement) {
			writeError(w, r, http.StatusInternalServerError, "authorization misconfigured")
			return false
		}
		// Context cancelled mid-evaluation; the client is gone.
		writeError(w, r, http.StatusInternalServerError, "authorization unavailable")
		return false
	}
	if !decision.Granted {
		writeError(w, r, http.StatusForbidden, "access denied")
		return false
	}
	return true
}
