package notification

import (
	"fmt"
	"time"

	"github.com/namjai/backend/internal/domain/shared"
)

// CalendarRuleKind enumerates the supported calendar rule shapes
type CalendarRuleKind string

const (
	// RuleFixedDay fires on one fixed day of every month
	RuleFixedDay CalendarRuleKind = "fixed_day"

	// RuleDayRange fires on every day of an inclusive day-of-month range
	RuleDayRange CalendarRuleKind = "day_range"

	// RuleDaysBeforeMonthEnd fires on the day exactly N days before the last
	// day of the month, whatever the month's length
	RuleDaysBeforeMonthEnd CalendarRuleKind = "days_before_month_end"
)

// CalendarRule decides on which calendar days a campaign fires
type CalendarRule struct {
	Kind CalendarRuleKind
	Day  int // fixed day, or N for days-before-month-end
	From int // range start (day_range only)
	To   int // range end (day_range only)
}

// FixedDay returns a rule firing on day n of every month
func FixedDay(n int) CalendarRule {
	return CalendarRule{Kind: RuleFixedDay, Day: n}
}

// DayRange returns a rule firing on every day from a through b inclusive
func DayRange(a, b int) CalendarRule {
	return CalendarRule{Kind: RuleDayRange, From: a, To: b}
}

// DaysBeforeMonthEnd returns a rule firing n days before the month's last day
func DaysBeforeMonthEnd(n int) CalendarRule {
	return CalendarRule{Kind: RuleDaysBeforeMonthEnd, Day: n}
}

// Validate checks the rule parameters
func (r CalendarRule) Validate() error {
	switch r.Kind {
	case RuleFixedDay:
		if r.Day < 1 || r.Day > 28 {
			return shared.NewDomainError("INVALID_RULE", "Fixed day must be 1-28")
		}
	case RuleDayRange:
		if r.From < 1 || r.To > 28 || r.From > r.To {
			return shared.NewDomainError("INVALID_RULE", "Day range must satisfy 1 <= from <= to <= 28")
		}
	case RuleDaysBeforeMonthEnd:
		if r.Day < 0 || r.Day > 27 {
			return shared.NewDomainError("INVALID_RULE", "Days before month end must be 0-27")
		}
	default:
		return shared.NewDomainError("INVALID_RULE", "Unknown calendar rule kind")
	}
	return nil
}

// Matches reports whether the rule fires on the given day
func (r CalendarRule) Matches(today time.Time) bool {
	day := today.Day()
	switch r.Kind {
	case RuleFixedDay:
		return day == r.Day
	case RuleDayRange:
		return day >= r.From && day <= r.To
	case RuleDaysBeforeMonthEnd:
		last := time.Date(today.Year(), today.Month()+1, 0, 0, 0, 0, 0, today.Location()).Day()
		return day == last-r.Day
	}
	return false
}

// String returns a compact description for logging
func (r CalendarRule) String() string {
	switch r.Kind {
	case RuleFixedDay:
		return fmt.Sprintf("day %d", r.Day)
	case RuleDayRange:
		return fmt.Sprintf("days %d-%d", r.From, r.To)
	case RuleDaysBeforeMonthEnd:
		return fmt.Sprintf("%d days before month end", r.Day)
	}
	return "unknown"
}

// Campaign is one scheduled audience-selection-and-dispatch job: a calendar
// rule, an audience predicate and the message sent to every recipient.
// Firings are independent; a firing missed during downtime is not replayed.
type Campaign struct {
	ID       string
	Rule     CalendarRule
	Audience AudiencePredicate
	Message  string
}

// Validate checks the campaign definition
func (c Campaign) Validate() error {
	if c.ID == "" {
		return shared.NewDomainError("INVALID_CAMPAIGN", "Campaign ID cannot be empty")
	}
	if !c.Audience.Role.IsValid() {
		return shared.NewDomainError("INVALID_CAMPAIGN", "Campaign audience role is unknown")
	}
	if c.Message == "" {
		return shared.NewDomainError("INVALID_CAMPAIGN", "Campaign message cannot be empty")
	}
	return c.Rule.Validate()
}
