package billing

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/namjai/backend/internal/domain/billing"
	"github.com/namjai/backend/internal/domain/shared"
)

func TestBillService_CreateBill(t *testing.T) {
	bills := new(mockBillRepo)
	bills.On("Save", mock.Anything, mock.MatchedBy(func(b *billing.Bill) bool {
		return b.AccountID == "A-1" && b.PaymentStatus == billing.StatusGray
	})).Return(nil)

	svc := NewBillService(bills, zap.NewNop())

	bill, err := svc.CreateBill(context.Background(), CreateBillInput{
		AccountID: "A-1",
		OfficerID: "OF-7",
		BillDate:  time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
		UnitsUsed: decimal.NewFromInt(25),
	})
	require.NoError(t, err)
	// 25 units * 14 + 20 meter fee
	assert.True(t, bill.AmountDue.Equal(decimal.NewFromInt(370)), "amount = %s", bill.AmountDue)
	bills.AssertExpectations(t)
}

func TestBillService_CreateBill_InvalidInput(t *testing.T) {
	bills := new(mockBillRepo)
	svc := NewBillService(bills, zap.NewNop())

	_, err := svc.CreateBill(context.Background(), CreateBillInput{
		AccountID: "",
		OfficerID: "OF-7",
		BillDate:  time.Now(),
		UnitsUsed: decimal.NewFromInt(1),
	})
	require.Error(t, err)
	bills.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestBillService_RequestCashSlot(t *testing.T) {
	bills := new(mockBillRepo)
	bill, err := billing.NewBill("A-1", "OF-7", time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(10))
	require.NoError(t, err)

	bills.On("FindLatestByAccount", mock.Anything, "A-1").Return(bill, nil)
	bills.On("Save", mock.Anything, bill).Return(nil)

	svc := NewBillService(bills, zap.NewNop())

	updated, err := svc.RequestCashSlot(context.Background(), "A-1", billing.CashSlotMorning)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusYellow, updated.PaymentStatus)
	require.NotNil(t, updated.CashSlot)
	assert.Equal(t, billing.CashSlotMorning, *updated.CashSlot)
	bills.AssertExpectations(t)
}

func TestBillService_RequestCashSlot_NoBill(t *testing.T) {
	bills := new(mockBillRepo)
	bills.On("FindLatestByAccount", mock.Anything, "A-404").Return(nil, shared.ErrNotFound)

	svc := NewBillService(bills, zap.NewNop())

	_, err := svc.RequestCashSlot(context.Background(), "A-404", billing.CashSlotMorning)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestBillService_RequestCashSlot_InvalidSlotNotSaved(t *testing.T) {
	bills := new(mockBillRepo)
	bill, err := billing.NewBill("A-1", "OF-7", time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(10))
	require.NoError(t, err)
	bills.On("FindLatestByAccount", mock.Anything, "A-1").Return(bill, nil)

	svc := NewBillService(bills, zap.NewNop())

	_, err = svc.RequestCashSlot(context.Background(), "A-1", billing.CashSlot(9))
	require.Error(t, err)
	bills.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestBillService_ConfirmPayment(t *testing.T) {
	bills := new(mockBillRepo)
	bill, err := billing.NewBill("A-1", "OF-7", time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(10))
	require.NoError(t, err)

	bills.On("FindByID", mock.Anything, bill.ID).Return(bill, nil)
	bills.On("Save", mock.Anything, bill).Return(nil)

	svc := NewBillService(bills, zap.NewNop())

	paid, err := svc.ConfirmPayment(context.Background(), bill.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusGreen, paid.PaymentStatus)
	bills.AssertExpectations(t)
}

func TestBillService_ConfirmPayment_AlreadyPaid(t *testing.T) {
	bills := new(mockBillRepo)
	bill, err := billing.NewBill("A-1", "OF-7", time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, bill.ConfirmPayment())

	bills.On("FindByID", mock.Anything, bill.ID).Return(bill, nil)

	svc := NewBillService(bills, zap.NewNop())

	_, err = svc.ConfirmPayment(context.Background(), bill.ID)
	require.Error(t, err)
	bills.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
