package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/namjai/backend/internal/domain/billing"
	"github.com/namjai/backend/internal/domain/shared"
)

// AccountView is one account's billing state as seen by a collection officer:
// the member's contact details plus the bill after any escalation applied
// during this evaluation.
type AccountView struct {
	AccountID string        `json:"account_id"`
	FirstName string        `json:"first_name"`
	LastName  string        `json:"last_name"`
	Phone     string        `json:"phone"`
	Bill      *billing.Bill `json:"bill,omitempty"`

	// HasBill is false for accounts that were never billed; the UI shows a
	// "no billing data" marker instead of a status color.
	HasBill bool `json:"has_bill"`

	// Note carries a per-account evaluation annotation, e.g. a bill that
	// could not be aged because its date is missing.
	Note string `json:"note,omitempty"`
}

// SweepStats summarizes one escalation pass over a set of zones
type SweepStats struct {
	Zones         int `json:"zones"`
	Evaluated     int `json:"evaluated"`
	Applied       int `json:"applied"`
	Skipped       int `json:"skipped"`
	DataErrors    int `json:"data_errors"`
	NoopConflicts int `json:"noop_conflicts"`
}

// EscalationRunner evaluates bills against the escalation schedule and
// persists the resulting transitions. It is safe to run concurrently with
// other runners and with member reads: every write goes through the store's
// conditional advance, so a lost race degrades to a silent no-op instead of
// a double penalty.
type EscalationRunner struct {
	bills    billing.BillRepository
	officers billing.OfficerDirectory
	now      func() time.Time
	logger   *zap.Logger
}

// NewEscalationRunner creates a new EscalationRunner
func NewEscalationRunner(
	bills billing.BillRepository,
	officers billing.OfficerDirectory,
	logger *zap.Logger,
) *EscalationRunner {
	return &EscalationRunner{
		bills:    bills,
		officers: officers,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock overrides the runner's clock. Used by tests to pin evaluation to
// a fixed date.
func (r *EscalationRunner) WithClock(now func() time.Time) *EscalationRunner {
	r.now = now
	return r
}

// RunForOfficer evaluates every account in the officer's zone, persisting any
// escalations, and returns the per-account views for the officer's main
// screen. The read IS the evaluation: viewing the zone ages its bills.
func (r *EscalationRunner) RunForOfficer(ctx context.Context, officerID string) ([]AccountView, error) {
	zone, err := r.officers.ZoneByOfficerID(ctx, officerID)
	if err != nil {
		return nil, err
	}

	views, stats, err := r.runZone(ctx, zone)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Escalation pass completed for officer zone",
		zap.String("officer_id", officerID),
		zap.Int("zone", zone),
		zap.Int("evaluated", stats.Evaluated),
		zap.Int("applied", stats.Applied),
		zap.Int("data_errors", stats.DataErrors))

	return views, nil
}

// RunForAccount evaluates a single account's latest bill, persisting any
// escalation, and returns the member-facing view.
func (r *EscalationRunner) RunForAccount(ctx context.Context, accountID string) (*AccountView, error) {
	bill, err := r.bills.FindLatestByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return &AccountView{AccountID: accountID, HasBill: false}, nil
		}
		return nil, err
	}

	view := AccountView{
		AccountID: accountID,
		Bill:      bill,
		HasBill:   true,
	}
	r.evaluateBill(ctx, &view, &SweepStats{})
	return &view, nil
}

// RunSweep evaluates every active zone in sequence. Driven by the background
// sweep trigger; a zone that fails to load aborts the run so the failure
// surfaces instead of silently shrinking coverage.
func (r *EscalationRunner) RunSweep(ctx context.Context) (SweepStats, error) {
	zones, err := r.bills.FindActiveZones(ctx)
	if err != nil {
		return SweepStats{}, fmt.Errorf("listing active zones: %w", err)
	}

	var total SweepStats
	total.Zones = len(zones)
	for _, zone := range zones {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		_, stats, err := r.runZone(ctx, zone)
		if err != nil {
			return total, fmt.Errorf("zone %d: %w", zone, err)
		}
		total.Evaluated += stats.Evaluated
		total.Applied += stats.Applied
		total.Skipped += stats.Skipped
		total.DataErrors += stats.DataErrors
		total.NoopConflicts += stats.NoopConflicts
	}

	r.logger.Info("Escalation sweep completed",
		zap.Int("zones", total.Zones),
		zap.Int("evaluated", total.Evaluated),
		zap.Int("applied", total.Applied),
		zap.Int("skipped", total.Skipped),
		zap.Int("data_errors", total.DataErrors),
		zap.Int("noop_conflicts", total.NoopConflicts))

	return total, nil
}

// runZone evaluates every account of one zone. The account list itself must
// load; per-account problems annotate the view and the pass continues.
func (r *EscalationRunner) runZone(ctx context.Context, zone int) ([]AccountView, SweepStats, error) {
	accounts, err := r.bills.FindLatestByZone(ctx, zone)
	if err != nil {
		return nil, SweepStats{}, fmt.Errorf("loading zone %d accounts: %w", zone, err)
	}

	var stats SweepStats
	views := make([]AccountView, 0, len(accounts))
	for _, acc := range accounts {
		view := AccountView{
			AccountID: acc.AccountID,
			FirstName: acc.FirstName,
			LastName:  acc.LastName,
			Phone:     acc.Phone,
			Bill:      acc.Bill,
			HasBill:   acc.Bill != nil,
		}
		if acc.Bill == nil {
			view.Note = "no billing data"
			views = append(views, view)
			continue
		}
		r.evaluateBill(ctx, &view, &stats)
		views = append(views, view)
	}

	return views, stats, nil
}

// evaluateBill decides and, when due, persists one bill's escalation. The
// view's bill reflects the stored outcome: unchanged on a lost race or a
// failed write, advanced when the store accepted the transition.
func (r *EscalationRunner) evaluateBill(ctx context.Context, view *AccountView, stats *SweepStats) {
	bill := view.Bill
	stats.Evaluated++

	decision, err := billing.Decide(r.now(), bill.BillDate, bill.PaymentStatus, bill.EscalationLevel)
	if err != nil {
		if errors.Is(err, billing.ErrBillDateMissing) {
			stats.DataErrors++
			view.Note = "bill date missing, not evaluated"
			r.logger.Warn("Bill skipped during escalation",
				zap.String("account_id", view.AccountID),
				zap.String("bill_id", bill.ID.String()),
				zap.Error(err))
			return
		}
		stats.DataErrors++
		view.Note = "evaluation failed"
		r.logger.Error("Bill evaluation failed",
			zap.String("account_id", view.AccountID),
			zap.String("bill_id", bill.ID.String()),
			zap.Error(err))
		return
	}

	if !decision.Apply {
		stats.Skipped++
		return
	}

	applied, err := r.bills.ConditionalAdvance(ctx, bill.ID, bill.EscalationLevel, decision)
	if err != nil {
		// The view keeps the pre-escalation state so the officer never sees
		// a status the store did not record.
		r.logger.Error("Escalation write failed",
			zap.String("account_id", view.AccountID),
			zap.String("bill_id", bill.ID.String()),
			zap.String("new_status", decision.NewStatus.String()),
			zap.Error(err))
		return
	}
	if !applied {
		// Another runner advanced this bill first, or it was paid meanwhile.
		stats.NoopConflicts++
		return
	}

	stats.Applied++
	bill.ApplyEscalation(decision)
	r.logger.Info("Bill escalated",
		zap.String("account_id", view.AccountID),
		zap.String("bill_id", bill.ID.String()),
		zap.String("status", decision.NewStatus.String()),
		zap.String("penalty", decision.Penalty.String()))
}
