package notification

import (
	"context"
	"fmt"

	"github.com/namjai/backend/internal/domain/billing"
)

// Role identifies which side of the collection relationship a contact is on
type Role string

const (
	// RoleMember is a billed account holder
	RoleMember Role = "member"

	// RoleOfficer is a collection officer
	RoleOfficer Role = "officer"
)

// IsValid returns true if the role is a known value
func (r Role) IsValid() bool {
	return r == RoleMember || r == RoleOfficer
}

// Contact is a notification recipient resolved from the billing store
type Contact struct {
	ID        string // Account number or officer ID depending on role
	FirstName string
	LastName  string
	Phone     string
	Role      Role
}

// AudiencePredicate is a pure filter over billing state that selects the
// recipients of a campaign. For officers the bill filters match against the
// accounts in the officer's zone.
type AudiencePredicate struct {
	Role Role

	// Status restricts to contacts whose (zone) latest bill has this status
	Status *billing.PaymentStatus

	// OverdueMoreThanDays additionally requires the latest bill to be
	// overdue by strictly more than this many days. Only meaningful with
	// Status set. Zero means no age filter.
	OverdueMoreThanDays int

	// CashSlotRequested restricts to contacts whose (zone) latest bill has a
	// pending cash-payment slot request
	CashSlotRequested bool
}

// Describe returns a short human-readable form for logging
func (p AudiencePredicate) Describe() string {
	s := string(p.Role)
	if p.Status != nil {
		s += " status=" + p.Status.String()
	}
	if p.OverdueMoreThanDays > 0 {
		s += fmt.Sprintf(" overdue>%dd", p.OverdueMoreThanDays)
	}
	if p.CashSlotRequested {
		s += " cash-slot"
	}
	return s
}

// ContactRepository resolves campaign audiences against the billing store.
// Audience resolution is a pure read; it never mutates billing state.
type ContactRepository interface {
	QueryAudience(ctx context.Context, predicate AudiencePredicate) ([]Contact, error)
}
