package billing

import (
	"time"

	"github.com/namjai/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Escalation schedule. Aging starts one grace day after the bill date.
// A bill 8-14 days overdue escalates to Orange, more than 14 days to Red.
// Each tier adds its penalty to the amount due exactly once per cycle.
const (
	graceDays       = 1
	orangeAfterDays = 7
	redAfterDays    = 14

	// blackoutDays is the number of trailing calendar days of each month in
	// which escalation is suppressed, so a bill's aging clock cannot overlap
	// with the next cycle's issuance.
	blackoutDays = 2
)

// Tier penalties in the billing currency
var (
	penaltyOrange = decimal.NewFromInt(200)
	penaltyRed    = decimal.NewFromInt(300)
)

// ErrBillDateMissing is returned when a bill has no usable bill date and
// cannot be aged. The caller skips the record and keeps processing.
var ErrBillDateMissing = shared.NewDomainError("BILL_DATE_MISSING", "Bill has no usable bill date")

// EscalationDecision is the outcome of evaluating one bill against the
// escalation schedule.
type EscalationDecision struct {
	NewStatus PaymentStatus
	NewLevel  EscalationLevel
	Penalty   decimal.Decimal
	Apply     bool
}

// noEscalation is the decision that leaves the bill untouched
func noEscalation() EscalationDecision {
	return EscalationDecision{Penalty: decimal.Zero}
}

// Decide evaluates a bill's age against the escalation schedule. It is a pure
// function of its inputs and performs no I/O.
//
// Red is checked before Orange so a bill that ages past both thresholds
// between evaluations goes straight to Red. The level guard, not elapsed
// time, is what makes re-evaluation idempotent: once the stored level
// reflects a tier, the same tier never applies again this cycle.
func Decide(today, billDate time.Time, status PaymentStatus, level EscalationLevel) (EscalationDecision, error) {
	if status == StatusGreen {
		return noEscalation(), nil
	}
	if billDate.IsZero() {
		return noEscalation(), ErrBillDateMissing
	}

	if inMonthEndBlackout(today) {
		return noEscalation(), nil
	}

	overdue := DaysOverdue(today, billDate)

	switch {
	case overdue > redAfterDays && level != LevelRed:
		return EscalationDecision{
			NewStatus: StatusRed,
			NewLevel:  LevelRed,
			Penalty:   penaltyRed,
			Apply:     true,
		}, nil
	case overdue > orangeAfterDays && overdue <= redAfterDays &&
		level != LevelOrange && level != LevelRed:
		return EscalationDecision{
			NewStatus: StatusOrange,
			NewLevel:  LevelOrange,
			Penalty:   penaltyOrange,
			Apply:     true,
		}, nil
	}

	return noEscalation(), nil
}

// DaysOverdue returns how many whole days past the payment start date
// (bill date plus the grace day) the given day is. Negative while the bill
// is still within its payment window.
func DaysOverdue(today, billDate time.Time) int {
	start := dateOnly(billDate).AddDate(0, 0, graceDays)
	return int(dateOnly(today).Sub(start).Hours() / 24)
}

// OverdueCutoff returns the latest bill date for which a bill is overdue by
// strictly more than the given number of days on the reference day. Used by
// audience queries so SQL and the engine age bills identically.
func OverdueCutoff(today time.Time, moreThanDays int) time.Time {
	return dateOnly(today).AddDate(0, 0, -(moreThanDays + graceDays + 1))
}

// inMonthEndBlackout reports whether the day falls in the last two calendar
// days of its month.
func inMonthEndBlackout(today time.Time) bool {
	return today.Day() >= daysInMonth(today)-(blackoutDays-1)
}

// daysInMonth returns the number of days in the month of t
func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// dateOnly truncates a time to its calendar date in UTC so day arithmetic is
// immune to time-of-day and DST offsets.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
