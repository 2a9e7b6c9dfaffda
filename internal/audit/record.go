package audit

import "time"

// Record is one immutable access-decision entry. Records are write-once:
// nothing in the service updates or deletes them, and the organization
// reference is soft so tenant deletion never cascades into audit history.
type Record struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Role           string    `json:"role"`
	Resource       string    `json:"resource"`
	OrganizationID string    `json:"organization_id,omitempty"`
	AccessGranted  bool      `json:"access_granted"`
	IPAddress      string    `json:"ip_address,omitempty"`
	UserAgent      string    `json:"user_agent,omitempty"`
	Details        string    `json:"details"`
	SessionID      string    `json:"session_id,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Filter narrows a compliance search over audit records.
type Filter struct {
	UserID         string
	OrganizationID string
	From           time.Time
	To             time.Time
	Granted        *bool
	Limit          int
}
