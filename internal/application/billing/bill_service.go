package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/namjai/backend/internal/domain/billing"
)

// CreateBillInput contains the meter reading for a new billing cycle
type CreateBillInput struct {
	AccountID string          `json:"account_id"`
	OfficerID string          `json:"officer_id"`
	BillDate  time.Time       `json:"bill_date"`
	UnitsUsed decimal.Decimal `json:"units_used"`
}

// BillService handles the bill lifecycle outside of escalation: issuing a
// cycle's bill from a meter reading, cash-slot requests, payment confirmation
// and member reads.
type BillService struct {
	bills  billing.BillRepository
	now    func() time.Time
	logger *zap.Logger
}

// NewBillService creates a new BillService
func NewBillService(bills billing.BillRepository, logger *zap.Logger) *BillService {
	return &BillService{
		bills:  bills,
		now:    time.Now,
		logger: logger,
	}
}

// CreateBill issues the bill for a new cycle. The charge is computed from the
// meter reading; the bill starts unpaid with no escalation state.
func (s *BillService) CreateBill(ctx context.Context, input CreateBillInput) (*billing.Bill, error) {
	bill, err := billing.NewBill(input.AccountID, input.OfficerID, input.BillDate, input.UnitsUsed)
	if err != nil {
		return nil, err
	}

	if err := s.bills.Save(ctx, bill); err != nil {
		return nil, err
	}

	s.logger.Info("Bill created",
		zap.String("bill_id", bill.ID.String()),
		zap.String("account_id", bill.AccountID),
		zap.String("amount_due", bill.AmountDue.String()))

	return bill, nil
}

// RequestCashSlot records a member's request to pay the current bill in cash
// during one of the two collection slots.
func (s *BillService) RequestCashSlot(ctx context.Context, accountID string, slot billing.CashSlot) (*billing.Bill, error) {
	bill, err := s.bills.FindLatestByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if err := bill.RequestCashSlot(slot, s.now()); err != nil {
		return nil, err
	}

	if err := s.bills.Save(ctx, bill); err != nil {
		return nil, err
	}

	s.logger.Info("Cash slot requested",
		zap.String("bill_id", bill.ID.String()),
		zap.String("account_id", accountID),
		zap.Int("slot", int(slot)))

	return bill, nil
}

// ConfirmPayment marks a bill as paid. The cycle is closed for escalation
// from this point on.
func (s *BillService) ConfirmPayment(ctx context.Context, billID uuid.UUID) (*billing.Bill, error) {
	bill, err := s.bills.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}

	if err := bill.ConfirmPayment(); err != nil {
		return nil, err
	}

	if err := s.bills.Save(ctx, bill); err != nil {
		return nil, err
	}

	s.logger.Info("Payment confirmed",
		zap.String("bill_id", bill.ID.String()),
		zap.String("account_id", bill.AccountID))

	return bill, nil
}

// GetBill returns one bill by ID
func (s *BillService) GetBill(ctx context.Context, billID uuid.UUID) (*billing.Bill, error) {
	return s.bills.FindByID(ctx, billID)
}

// GetHistory returns all of an account's bills, newest first
func (s *BillService) GetHistory(ctx context.Context, accountID string) ([]billing.Bill, error) {
	return s.bills.FindHistoryByAccount(ctx, accountID)
}
