package maintenance

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DueStatus is the payment state of a ledger entry.
type DueStatus string

const (
	DueUnpaid DueStatus = "unpaid"
	DuePaid   DueStatus = "paid"
)

// Due is one maintenance fee entry in a unit's ledger.
type Due struct {
	ID          int64
	CommunityID int64
	UnitID      int64
	UnitLabel   string
	Period      string // "2026-08"
	Amount      int64  // rupiah, no decimals
	DueDate     time.Time
	Status      DueStatus
	PaidAt      *time.Time
	PaymentRef  uuid.UUID
	RecordedBy  int64
	CreatedAt   time.Time
}

var (
	// ErrNotFound indicates the ledger entry does not exist.
	ErrNotFound = errors.New("maintenance: due not found")
	// ErrAlreadyPaid indicates a second payment on a settled entry.
	ErrAlreadyPaid = errors.New("maintenance: due already paid")
	// ErrBadPeriod indicates a period label that is not YYYY-MM.
	ErrBadPeriod = errors.New("maintenance: invalid period")
)
