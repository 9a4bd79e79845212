package billing

import (
	"time"

	"github.com/namjai/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the customer-visible billing state of a bill.
type PaymentStatus string

const (
	// StatusGray indicates a newly issued, unpaid bill
	StatusGray PaymentStatus = "Gray"

	// StatusYellow indicates the member requested a cash-payment slot
	StatusYellow PaymentStatus = "Yellow"

	// StatusOrange indicates the bill is 8-14 days overdue
	StatusOrange PaymentStatus = "Orange"

	// StatusRed indicates the bill is more than 14 days overdue
	StatusRed PaymentStatus = "Red"

	// StatusGreen indicates the payment was confirmed; terminal for the cycle
	StatusGreen PaymentStatus = "Green"
)

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// IsValid returns true if the payment status is a known value
func (s PaymentStatus) IsValid() bool {
	switch s {
	case StatusGray, StatusYellow, StatusOrange, StatusRed, StatusGreen:
		return true
	}
	return false
}

// EscalationLevel tracks the highest penalty tier already applied this cycle.
// It is independent of the display status and guards at-most-once penalties.
type EscalationLevel string

const (
	// LevelNone means no penalty has been applied this cycle
	LevelNone EscalationLevel = ""

	// LevelOrange means the Orange-tier penalty has been applied
	LevelOrange EscalationLevel = "Orange"

	// LevelRed means the Red-tier penalty has been applied
	LevelRed EscalationLevel = "Red"
)

// String returns the string representation of EscalationLevel
func (l EscalationLevel) String() string {
	if l == LevelNone {
		return "None"
	}
	return string(l)
}

// rank orders levels so monotonicity can be checked
func (l EscalationLevel) rank() int {
	switch l {
	case LevelOrange:
		return 1
	case LevelRed:
		return 2
	}
	return 0
}

// AtLeast returns true if the level is equal to or above other
func (l EscalationLevel) AtLeast(other EscalationLevel) bool {
	return l.rank() >= other.rank()
}

// CashSlot identifies the cash-payment time slot a member requested.
type CashSlot int

const (
	// CashSlotMorning is the 11:00 collection slot
	CashSlotMorning CashSlot = 1

	// CashSlotEvening is the 17:00 collection slot
	CashSlotEvening CashSlot = 2
)

// IsValid returns true if the slot is one of the two offered collection times
func (s CashSlot) IsValid() bool {
	return s == CashSlotMorning || s == CashSlotEvening
}

// Billing charge parameters. AmountDue for a new bill is
// UnitsUsed * unit rate + the fixed meter fee.
var (
	unitRate = decimal.NewFromInt(14)
	meterFee = decimal.NewFromInt(20)
)

// Bill is one billing cycle's charge for an account. A new bill for the same
// account supersedes the previous cycle; escalation state never carries over.
type Bill struct {
	shared.BaseEntity
	AccountID       string          // Stable identifier of the billed member ("number id")
	OfficerID       string          // Collection officer responsible for the account's zone
	BillDate        time.Time       // Date the bill was issued
	UnitsUsed       decimal.Decimal // Metered usage for the cycle
	AmountDue       decimal.Decimal // Base charge plus any accrued penalties
	PaymentStatus   PaymentStatus
	EscalationLevel EscalationLevel
	CashSlot        *CashSlot  // Requested cash-payment slot, if any
	CashRequestedAt *time.Time // When the cash slot was requested
}

// NewBill creates a bill for a new cycle with the base charge computed from
// metered usage.
func NewBill(accountID, officerID string, billDate time.Time, unitsUsed decimal.Decimal) (*Bill, error) {
	if accountID == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	if officerID == "" {
		return nil, shared.NewDomainError("INVALID_OFFICER", "Officer ID cannot be empty")
	}
	if billDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_BILL_DATE", "Bill date cannot be empty")
	}
	if unitsUsed.IsNegative() {
		return nil, shared.NewDomainError("INVALID_UNITS", "Units used cannot be negative")
	}

	return &Bill{
		BaseEntity:      shared.NewBaseEntity(),
		AccountID:       accountID,
		OfficerID:       officerID,
		BillDate:        billDate,
		UnitsUsed:       unitsUsed,
		AmountDue:       unitsUsed.Mul(unitRate).Add(meterFee),
		PaymentStatus:   StatusGray,
		EscalationLevel: LevelNone,
	}, nil
}

// IsPaid returns true once the payment has been confirmed for this cycle
func (b *Bill) IsPaid() bool {
	return b.PaymentStatus == StatusGreen
}

// ApplyEscalation updates the in-memory bill to reflect an escalation decision
// that the store accepted. The level only moves forward.
func (b *Bill) ApplyEscalation(d EscalationDecision) {
	if !d.Apply || !d.NewLevel.AtLeast(b.EscalationLevel) {
		return
	}
	b.PaymentStatus = d.NewStatus
	b.EscalationLevel = d.NewLevel
	b.AmountDue = b.AmountDue.Add(d.Penalty)
	b.UpdatedAt = time.Now()
}

// RequestCashSlot marks the bill as awaiting cash collection in the given slot.
// Paid bills cannot request a slot.
func (b *Bill) RequestCashSlot(slot CashSlot, at time.Time) error {
	if !slot.IsValid() {
		return shared.NewDomainError("INVALID_CASH_SLOT", "Cash slot must be 1 (11:00) or 2 (17:00)")
	}
	if b.IsPaid() {
		return shared.NewDomainError("BILL_ALREADY_PAID", "Cannot request a cash slot for a paid bill")
	}
	b.PaymentStatus = StatusYellow
	b.CashSlot = &slot
	b.CashRequestedAt = &at
	b.UpdatedAt = time.Now()
	return nil
}

// ConfirmPayment marks the bill paid. Green is terminal: no escalation can
// resume for this cycle afterwards.
func (b *Bill) ConfirmPayment() error {
	if b.IsPaid() {
		return shared.NewDomainError("BILL_ALREADY_PAID", "Payment has already been confirmed for this bill")
	}
	b.PaymentStatus = StatusGreen
	b.CashSlot = nil
	b.CashRequestedAt = nil
	b.UpdatedAt = time.Now()
	return nil
}
