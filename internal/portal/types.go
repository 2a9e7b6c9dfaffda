package portal

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("portal: not found")
	ErrConflict     = errors.New("portal: resource conflict")
	ErrInvalidInput = errors.New("portal: invalid input")
	ErrFinalStage   = errors.New("portal: order already finished")
)

// Organization is a client workshop account (one tenant).
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// User is a portal account bound to an organization, or an internal staff
// account when OrganizationID is empty.
type User struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id,omitempty"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	PasswordHash   string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// Stage is a costume order's manufacturing stage.
type Stage string

const (
	StageMeasuring Stage = "measuring"
	StageCutting   Stage = "cutting"
	StageSewing    Stage = "sewing"
	StageFitting   Stage = "fitting"
	StageFinished  Stage = "finished"
)

// stageOrder fixes the progression; orders only move forward.
var stageOrder = []Stage{StageMeasuring, StageCutting, StageSewing, StageFitting, StageFinished}

// NextStage returns the stage after s, or ErrFinalStage at the end.
func NextStage(s Stage) (Stage, error) {
	for i, stage := range stageOrder {
		if stage == s {
			if i == len(stageOrder)-1 {
				return "", ErrFinalStage
			}
			return stageOrder[i+1], nil
		}
	}
	return "", ErrInvalidInput
}

// ValidStage reports whether s is a known stage.
func ValidStage(s Stage) bool {
	for _, stage := range stageOrder {
		if stage == s {
			return true
		}
	}
	return false
}

// Order is one costume-manufacturing order tracked for a client.
type Order struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Reference      string    `json:"reference"`
	Costume        string    `json:"costume"`
	Stage          Stage     `json:"stage"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Invoice is a billing line for a finished or in-progress order.
type Invoice struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	OrderID        string    `json:"order_id"`
	AmountCents    int64     `json:"amount_cents"`
	Currency       string    `json:"currency"`
	IssuedAt       time.Time `json:"issued_at"`
}
