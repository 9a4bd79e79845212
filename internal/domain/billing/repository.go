package billing

import (
	"context"

	"github.com/google/uuid"
)

// ZoneAccountBill pairs an account in a collection zone with its latest bill.
// Bill is nil for accounts that have never been billed.
type ZoneAccountBill struct {
	AccountID string
	FirstName string
	LastName  string
	Phone     string
	Bill      *Bill
}

// BillRepository defines the persistence interface for bills
type BillRepository interface {
	// Save creates or updates a bill
	Save(ctx context.Context, bill *Bill) error

	// FindByID finds a bill by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)

	// FindLatestByAccount returns the current cycle's bill for an account
	FindLatestByAccount(ctx context.Context, accountID string) (*Bill, error)

	// FindHistoryByAccount returns all bills for an account, newest first
	FindHistoryByAccount(ctx context.Context, accountID string) ([]Bill, error)

	// FindLatestByZone returns every active account in a zone together with
	// its latest bill. Accounts without bills are included with a nil Bill.
	FindLatestByZone(ctx context.Context, zone int) ([]ZoneAccountBill, error)

	// FindActiveZones returns the distinct zones that have active accounts
	FindActiveZones(ctx context.Context) ([]int, error)

	// ConditionalAdvance persists an escalation decision as a single atomic
	// update guarded by the expected escalation level. It returns false with
	// no error when the stored level has already advanced past expected (a
	// concurrent runner won the race) or the bill was paid meanwhile; this
	// silent no-op is what enforces at-most-once penalty application.
	ConditionalAdvance(ctx context.Context, billID uuid.UUID, expected EscalationLevel, decision EscalationDecision) (bool, error)
}

// OfficerDirectory resolves collection officers to the zones they serve.
// Officer administration itself is owned elsewhere; the escalation runner
// only needs the zone lookup.
type OfficerDirectory interface {
	// ZoneByOfficerID returns the zone the officer collects for
	ZoneByOfficerID(ctx context.Context, officerID string) (int, error)
}
