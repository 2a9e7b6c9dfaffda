package authz

// Claim names exposed by the upstream authentication layer.
const (
	ClaimUserID         = "sub"
	ClaimRole           = "role"
	ClaimOrganizationID = "organization_id"
	ClaimSessionID      = "session_id"
)

// Principal is the authenticated caller of one request. It is rebuilt from
// claims on every request and never persisted.
type Principal struct {
	UserID         string
	Role           Role
	OrganizationID string
}

// Extraction is the outcome of reading the caller identity. When OK is
// false, Reason holds the deny reason and the raw claim values are kept so
// the failed attempt still lands in the audit trail.
type Extraction struct {
	OK        bool
	Reason    ReasonCode
	Principal Principal

	// Raw claim values as presented, valid or not.
	UserID    string
	RawRole   string
	SessionID string
}

// Extract reads the caller identity from the request context.
//
// User id and role are required claims and are checked independently; an
// absent organization claim is a normal outcome (PlatformStaff carries
// none). Extract itself never fails hard: an unusable identity becomes a
// deny reason for the engine.
func Extract(rc RequestContext) Extraction {
	if !rc.HasIdentity() {
		return Extraction{Reason: ReasonNoContext}
	}

	userID, _ := rc.Claim(ClaimUserID)
	rawRole, _ := rc.Claim(ClaimRole)
	orgID, _ := rc.Claim(ClaimOrganizationID)
	sessionID, _ := rc.Claim(ClaimSessionID)

	ext := Extraction{
		UserID:    userID,
		RawRole:   rawRole,
		SessionID: sessionID,
	}

	if userID == "" || rawRole == "" {
		ext.Reason = ReasonMissingClaims
		return ext
	}

	role, ok := ParseRole(rawRole)
	if !ok {
		ext.Reason = ReasonInvalidRole
		return ext
	}

	ext.OK = true
	ext.Principal = Principal{
		UserID:         userID,
		Role:           role,
		OrganizationID: orgID,
	}
	return ext
}
