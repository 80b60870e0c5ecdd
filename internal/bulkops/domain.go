package bulkops

import (
	"errors"
	"time"
)

// Row is one member line submitted on the bulk registration form.
type Row struct {
	Name   string `validate:"required,min=2"`
	Email  string `validate:"required,email"`
	Role   string `validate:"required"`
	UnitID int64
}

// Outcome classifies what happened to a submitted row.
type Outcome string

const (
	OutcomeInvited Outcome = "invited"
	OutcomeSkipped Outcome = "skipped"
	OutcomeInvalid Outcome = "invalid"
)

// RowResult pairs a row with its processing outcome.
type RowResult struct {
	Row     Row
	Outcome Outcome
	Reason  string
}

// Summary aggregates one bulk registration run.
type Summary struct {
	Invited int
	Skipped int
	Invalid int
	Results []RowResult
}

// Invite is a pending member invitation.
type Invite struct {
	ID          int64
	CommunityID int64
	Email       string
	Name        string
	Role        string
	UnitID      int64
	Token       string
	CreatedAt   time.Time
}

var (
	// ErrRunInProgress indicates another bulk run holds the community lock.
	ErrRunInProgress = errors.New("bulkops: a run is already in progress")
	// ErrEmptyBatch indicates a submission with no rows.
	ErrEmptyBatch = errors.New("bulkops: no rows submitted")
)
