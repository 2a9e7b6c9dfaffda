package authz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"atelierhq.io/internal/audit"
	"atelierhq.io/internal/obs"
)

// ErrUnknownRequirement indicates a permission name that was never
// registered. This is a wiring mistake, not an access denial.
var ErrUnknownRequirement = errors.New("authz: unknown requirement")

// Sink receives one audit record per completed evaluation. Implementations
// must be best-effort: a failed write may not propagate back here.
type Sink interface {
	Record(ctx context.Context, rec audit.Record)
}

// Engine combines principal, resolved organization and requirement into a
// grant/deny decision and forwards every outcome to the audit sink. It
// holds no mutable state and is safe for concurrent use.
type Engine struct {
	registry *Registry
	sink     Sink
	now      func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine constructs an Engine over an immutable registry and a sink.
func NewEngine(registry *Registry, sink Sink, opts ...EngineOption) (*Engine, error) {
	if registry == nil {
		return nil, errors.New("authz: registry is required")
	}
	if sink == nil {
		return nil, errors.New("authz: audit sink is required")
	}
	e := &Engine{
		registry: registry,
		sink:     sink,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Evaluate decides whether the caller behind rc may perform the named
// permission, and audits the outcome exactly once.
//
// Denials are normal Decision values, not errors. The error return is
// reserved for configuration mistakes (unknown requirement) and for a
// request cancelled before the decision completed; a cancelled evaluation
// writes no audit record.
func (e *Engine) Evaluate(ctx context.Context, name string, rc RequestContext) (Decision, error) {
	req, ok := e.registry.Lookup(name)
	if !ok {
		return Decision{}, fmt.Errorf("%w: %s", ErrUnknownRequirement, name)
	}
	if rc == nil {
		return Decision{}, errors.New("authz: request context is required")
	}

	ext := Extract(rc)
	resolvedOrg := ResolveOrganization(rc)
	decision := decide(req, ext, resolvedOrg, e.now())

	// An audit record is only ever written for a completed decision.
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}

	e.sink.Record(ctx, buildRecord(name, decision, ext, rc))
	obs.ObserveDecision(name, string(decision.Reason))
	return decision, nil
}

// decide applies the branch order the access rules pin down; the first
// matching branch wins.
func decide(req Requirement, ext Extraction, resolvedOrg string, now time.Time) Decision {
	deny := func(reason ReasonCode) Decision {
		return Decision{Reason: reason, OrganizationID: resolvedOrg, Timestamp: now}
	}
	grant := func(reason ReasonCode) Decision {
		return Decision{Granted: true, Reason: reason, OrganizationID: resolvedOrg, Timestamp: now}
	}

	if !ext.OK {
		return deny(ext.Reason)
	}
	p := ext.Principal

	if !req.allows(p.Role) {
		return deny(ReasonRoleDenied)
	}
	if !req.RequireOrganizationMatch || resolvedOrg == "" {
		return grant(ReasonGrantedNoOrgCheck)
	}
	if p.Role == RolePlatformStaff && req.AllowCrossOrganization {
		return grant(ReasonGrantedCrossOrg)
	}
	if p.OrganizationID != "" && p.OrganizationID == resolvedOrg {
		return grant(ReasonGrantedOrgMatch)
	}
	return deny(ReasonOrgMismatch)
}

// buildRecord assembles the audit record for one decision. Identity fields
// reflect what was claimed at decision time, valid or not, so denials stay
// traceable.
func buildRecord(name string, d Decision, ext Extraction, rc RequestContext) audit.Record {
	return audit.Record{
		UserID:         ext.UserID,
		Role:           ext.RawRole,
		Resource:       rc.Method() + " " + rc.Path(),
		OrganizationID: d.OrganizationID,
		AccessGranted:  d.Granted,
		IPAddress:      rc.ClientIP(),
		UserAgent:      rc.UserAgent(),
		Details:        detail(name, d, ext),
		SessionID:      ext.SessionID,
		Timestamp:      d.Timestamp,
	}
}

func detail(name string, d Decision, ext Extraction) string {
	prefix := fmt.Sprintf("%s %s: ", name, d.Reason)
	switch d.Reason {
	case ReasonNoContext:
		return prefix + "no authenticated identity"
	case ReasonMissingClaims:
		return prefix + "user id or role claim is empty"
	case ReasonInvalidRole:
		return prefix + fmt.Sprintf("role claim %q is not a known role", ext.RawRole)
	case ReasonRoleDenied:
		return prefix + fmt.Sprintf("role %q is not permitted", ext.RawRole)
	case ReasonOrgMismatch:
		return prefix + fmt.Sprintf("caller organization %q does not match target %q",
			ext.Principal.OrganizationID, d.OrganizationID)
	case ReasonGrantedNoOrgCheck:
		return prefix + "no organization check required"
	case ReasonGrantedCrossOrg:
		return prefix + "cross-organization override"
	case ReasonGrantedOrgMatch:
		return prefix + fmt.Sprintf("organization match (%s)", d.OrganizationID)
	default:
		return prefix + "unrecognized reason"
	}
}
