package expenses

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is the expense review state.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// Category classifies community spending for filtering and reports.
type Category string

const (
	CategoryMaintenance Category = "maintenance"
	CategoryCleaning    Category = "cleaning"
	CategorySecurity    Category = "security"
	CategoryUtilities   Category = "utilities"
	CategoryOther       Category = "other"
)

// ParseCategory validates a submitted category value.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	switch c {
	case CategoryMaintenance, CategoryCleaning, CategorySecurity, CategoryUtilities, CategoryOther:
		return c, nil
	}
	return "", ErrCategoryInvalid
}

// Expense is a community spending record awaiting admin review.
type Expense struct {
	ID           int64
	Ref          uuid.UUID
	CommunityID  int64
	SubmittedBy  int64
	Category     Category
	Vendor       string
	Description  string
	Amount       int64 // rupiah
	IncurredAt   time.Time
	ReceiptRef   string
	Status       Status
	DecisionNote string
	CreatedAt    time.Time
}

var (
	// ErrCategoryInvalid indicates an unknown expense category.
	ErrCategoryInvalid = errors.New("expenses: invalid category")
	// ErrNotFound indicates the expense does not exist in the community.
	ErrNotFound = errors.New("expenses: expense not found")
	// ErrAlreadyDecided indicates a second decision on a reviewed expense.
	ErrAlreadyDecided = errors.New("expenses: expense already decided")
)
