package authz

import "time"

// ReasonCode is the closed set of machine-readable decision reasons.
// Reason codes are recorded in the audit trail but never echoed to the
// caller, so a denied response leaks nothing about tenant boundaries.
type ReasonCode string

const (
	ReasonNoContext         ReasonCode = "NO_CONTEXT"
	ReasonMissingClaims     ReasonCode = "MISSING_CLAIMS"
	ReasonInvalidRole       ReasonCode = "INVALID_ROLE"
	ReasonRoleDenied        ReasonCode = "ROLE_DENIED"
	ReasonOrgMismatch       ReasonCode = "ORG_MISMATCH"
	ReasonGrantedNoOrgCheck ReasonCode = "GRANTED_NO_ORG_CHECK"
	ReasonGrantedCrossOrg   ReasonCode = "GRANTED_CROSS_ORG"
	ReasonGrantedOrgMatch   ReasonCode = "GRANTED_ORG_MATCH"
)

// Decision is the transient outcome of one evaluation. It exists to drive
// the HTTP response and to produce an audit record; it is never stored.
type Decision struct {
	Granted        bool
	Reason         ReasonCode
	OrganizationID string
	Timestamp      time.Time
}
