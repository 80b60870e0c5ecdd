package helpdesk

import (
	"errors"
	"time"
)

// Status is the ticket lifecycle state.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

// allowedTransitions encodes the ticket state machine:
// open→in_progress→resolved→closed, plus reopening a resolved ticket.
var allowedTransitions = map[Status][]Status{
	StatusOpen:       {StatusInProgress},
	StatusInProgress: {StatusResolved},
	StatusResolved:   {StatusClosed, StatusOpen},
	StatusClosed:     {},
}

// CanTransition reports whether a status change is allowed.
func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Priority orders tickets in the queue view.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority validates a submitted priority value.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return p, nil
	}
	return "", ErrPriorityInvalid
}

// Ticket is a help desk request.
type Ticket struct {
	ID          int64
	CommunityID int64
	ReporterID  int64
	AssigneeID  *int64
	Subject     string
	Description string
	Category    string
	Priority    Priority
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Comment is a discussion entry on a ticket.
type Comment struct {
	ID       int64
	TicketID int64
	AuthorID int64
	Body     string
	At       time.Time
}

var (
	// ErrNotFound indicates the ticket does not exist in the community.
	ErrNotFound = errors.New("helpdesk: ticket not found")
	// ErrInvalidTransition indicates a disallowed status change.
	ErrInvalidTransition = errors.New("helpdesk: invalid status transition")
	// ErrPriorityInvalid indicates an unknown priority value.
	ErrPriorityInvalid = errors.New("helpdesk: invalid priority")
)
