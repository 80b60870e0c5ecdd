package billing

import (
	"errors"
	"time"
)

// Plan is the subscription tier of a community.
type Plan string

const (
	PlanTrial    Plan = "trial"
	PlanStandard Plan = "standard"
	PlanPremium  Plan = "premium"
)

// Account summarizes one community's subscription for the platform admin.
type Account struct {
	CommunityID int64
	Name        string
	Plan        Plan
	UnitCount   int
	Active      bool
	OpenAmount  int64
}

// InvoiceStatus is the invoice payment state.
type InvoiceStatus string

const (
	InvoiceOpen InvoiceStatus = "open"
	InvoicePaid InvoiceStatus = "paid"
)

// Invoice is a platform subscription invoice issued to a community.
type Invoice struct {
	ID          int64
	CommunityID int64
	Period      string
	Amount      int64
	Status      InvoiceStatus
	PaidAt      *time.Time
	CreatedAt   time.Time
}

var (
	// ErrNotFound indicates the invoice does not exist.
	ErrNotFound = errors.New("billing: invoice not found")
	// ErrInvoicePaid indicates a second settlement of the same invoice.
	ErrInvoicePaid = errors.New("billing: invoice already paid")
)
