package visitors

import (
	"errors"
	"time"
)

// Status is the visit lifecycle state.
type Status string

const (
	StatusExpected   Status = "expected"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
	StatusDenied     Status = "denied"
)

// Visit is a pre-authorized visitor entry in the gate log.
type Visit struct {
	ID           int64
	CommunityID  int64
	UnitID       int64
	HostID       int64
	Name         string
	Phone        string
	Purpose      string
	GatePass     string
	ExpectedOn   time.Time
	Status       Status
	Note         string
	CheckedInAt  *time.Time
	CheckedOutAt *time.Time
	CreatedAt    time.Time
}

var (
	// ErrNotFound indicates the visit does not exist in the community.
	ErrNotFound = errors.New("visitors: visit not found")
	// ErrInvalidTransition indicates a disallowed status change.
	ErrInvalidTransition = errors.New("visitors: invalid status transition")
	// ErrGatePassInvalid indicates an unknown gate pass code.
	ErrGatePassInvalid = errors.New("visitors: gate pass invalid")
)
