package auth

import (
	"time"

	"github.com/communityhub/communityhub/internal/access"
)

// Invite is a pending onboarding invitation created by bulk member import.
type Invite struct {
	ID          int64
	CommunityID int64
	Email       string
	Name        string
	Role        access.Role
	UnitID      int64
	Token       string
}

// User represents an authenticated user account.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         access.Role
	CommunityID  int64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
