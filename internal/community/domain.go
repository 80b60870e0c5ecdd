package community

import (
	"errors"
	"time"
)

// Community is a managed residential community (one tenant).
type Community struct {
	ID        int64
	Name      string
	JoinCode  string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Unit is a residence unit inside a community.
type Unit struct {
	ID          int64
	CommunityID int64
	Tower       string
	Number      string
	CreatedAt   time.Time
}

// Label returns the display identifier for a unit.
func (u Unit) Label() string {
	return u.Tower + "-" + u.Number
}

// Occupancy describes how an assignee occupies a unit.
type Occupancy string

const (
	OccupancyOwner  Occupancy = "owner"
	OccupancyTenant Occupancy = "tenant_occupant"
)

// Assignment links a user to a unit.
type Assignment struct {
	ID         int64
	UnitID     int64
	UserID     int64
	Occupancy  Occupancy
	AssignedAt time.Time
}

var (
	// ErrAlreadySetUp indicates a member re-running setup after their first
	// unit assignment; units transition empty→non-empty exactly once.
	ErrAlreadySetUp = errors.New("community: member already set up")
	// ErrJoinCodeInvalid indicates an unknown community join code.
	ErrJoinCodeInvalid = errors.New("community: join code invalid")
	// ErrUnitTaken indicates the unit already has an owner assignment.
	ErrUnitTaken = errors.New("community: unit already claimed")
	// ErrUnitNotFound indicates the referenced unit does not exist.
	ErrUnitNotFound = errors.New("community: unit not found")
)
