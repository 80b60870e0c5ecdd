package notices

import (
	"errors"
	"time"
)

// Category classifies a notice for filtering and styling.
type Category string

const (
	CategoryGeneral     Category = "general"
	CategoryMaintenance Category = "maintenance"
	CategoryEvent       Category = "event"
	CategoryEmergency   Category = "emergency"
)

// ParseCategory validates a submitted category value.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	switch c {
	case CategoryGeneral, CategoryMaintenance, CategoryEvent, CategoryEmergency:
		return c, nil
	}
	return "", ErrCategoryInvalid
}

// Notice is a community board announcement.
type Notice struct {
	ID          int64
	CommunityID int64
	AuthorID    int64
	Title       string
	Body        string
	Category    Category
	Pinned      bool
	ExpiresAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Expired reports whether the notice dropped off the default listing.
func (n Notice) Expired(now time.Time) bool {
	return n.ExpiresAt != nil && n.ExpiresAt.Before(now)
}

var (
	// ErrCategoryInvalid indicates an unknown notice category.
	ErrCategoryInvalid = errors.New("notices: invalid category")
	// ErrNotFound indicates the notice does not exist in the community.
	ErrNotFound = errors.New("notices: not found")
)
