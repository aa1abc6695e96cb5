package dues

import (
	"time"

	"github.com/chapterledger/ChapterLedger/app/models"
	"github.com/shopspring/decimal"
)

// InboundEvent is the normalized shape of a gateway notification after
// the transport layer has verified the signature and parsed the payload.
// The core trusts only the idempotency guard, not transport authenticity.
type InboundEvent struct {
	ExternalEventID  string
	EventType        string
	OccurredAt       time.Time
	PayerEmail       string
	GrossAmountMinor int64
	// BaseAmount is the intended amount before the processing-fee
	// markup. When present it is what gets recorded; the gross charge
	// is lossy to invert for arbitrary historical data.
	BaseAmount  *decimal.Decimal
	PaymentType string
	Notes       string
	PlanID      *uint
	RawPayload  string
}

// RecordInput is one payment to be written to the ledger, either from a
// validated gateway event or from manual treasurer entry.
type RecordInput struct {
	MemberID    uint
	Amount      decimal.Decimal
	Method      string
	PaymentType string
	Notes       string
	PlanID      *uint

	// webhookEventID links the ledger insert to the audit row so both
	// commit in one transaction. Zero for manual entry.
	webhookEventID uint
}

// ProcessResult reports what one mutation did, for the caller and for
// the audit notes.
type ProcessResult struct {
	Payment         *models.Payment
	PlanArchived    bool
	FinancialStatus string
	// NeedsAttention is set for terminal business exceptions
	// (member not found) that were recorded but require manual
	// reconciliation.
	NeedsAttention bool
	Note           string
}
