package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namjai/backend/internal/domain/shared"
)

func TestNewBill(t *testing.T) {
	billDate := date(2026, time.June, 1)

	bill, err := NewBill("A-1001", "OF-7", billDate, decimal.NewFromInt(12))
	require.NoError(t, err)

	assert.NotEqual(t, "", bill.ID.String())
	assert.Equal(t, "A-1001", bill.AccountID)
	assert.Equal(t, "OF-7", bill.OfficerID)
	assert.Equal(t, StatusGray, bill.PaymentStatus)
	assert.Equal(t, LevelNone, bill.EscalationLevel)
	assert.Nil(t, bill.CashSlot)
	// 12 units * 14 + 20 meter fee
	assert.True(t, bill.AmountDue.Equal(decimal.NewFromInt(188)), "amount = %s", bill.AmountDue)
}

func TestNewBill_Validation(t *testing.T) {
	billDate := date(2026, time.June, 1)
	units := decimal.NewFromInt(5)

	tests := []struct {
		name      string
		accountID string
		officerID string
		billDate  time.Time
		units     decimal.Decimal
	}{
		{"empty account", "", "OF-7", billDate, units},
		{"empty officer", "A-1001", "", billDate, units},
		{"zero bill date", "A-1001", "OF-7", time.Time{}, units},
		{"negative units", "A-1001", "OF-7", billDate, decimal.NewFromInt(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBill(tt.accountID, tt.officerID, tt.billDate, tt.units)
			require.Error(t, err)
			assert.True(t, shared.IsDomainError(err))
		})
	}
}

func TestBill_ApplyEscalation(t *testing.T) {
	bill, err := NewBill("A-1001", "OF-7", date(2026, time.June, 1), decimal.NewFromInt(10))
	require.NoError(t, err)
	base := bill.AmountDue

	d, err := Decide(date(2026, time.June, 12), bill.BillDate, bill.PaymentStatus, bill.EscalationLevel)
	require.NoError(t, err)
	require.True(t, d.Apply)

	bill.ApplyEscalation(d)
	assert.Equal(t, StatusOrange, bill.PaymentStatus)
	assert.Equal(t, LevelOrange, bill.EscalationLevel)
	assert.True(t, bill.AmountDue.Equal(base.Add(decimal.NewFromInt(200))))

	// Applying the same decision again must not double-charge
	bill.ApplyEscalation(d)
	assert.True(t, bill.AmountDue.Equal(base.Add(decimal.NewFromInt(200))))
}

func TestBill_ApplyEscalation_IgnoresNoop(t *testing.T) {
	bill, err := NewBill("A-1001", "OF-7", date(2026, time.June, 1), decimal.NewFromInt(10))
	require.NoError(t, err)
	base := bill.AmountDue

	bill.ApplyEscalation(EscalationDecision{Penalty: decimal.Zero})
	assert.Equal(t, StatusGray, bill.PaymentStatus)
	assert.True(t, bill.AmountDue.Equal(base))
}

func TestBill_RequestCashSlot(t *testing.T) {
	bill, err := NewBill("A-1001", "OF-7", date(2026, time.June, 1), decimal.NewFromInt(10))
	require.NoError(t, err)

	at := time.Date(2026, time.June, 3, 9, 30, 0, 0, time.UTC)
	require.NoError(t, bill.RequestCashSlot(CashSlotEvening, at))

	assert.Equal(t, StatusYellow, bill.PaymentStatus)
	require.NotNil(t, bill.CashSlot)
	assert.Equal(t, CashSlotEvening, *bill.CashSlot)
	require.NotNil(t, bill.CashRequestedAt)
	assert.Equal(t, at, *bill.CashRequestedAt)
}

func TestBill_RequestCashSlot_InvalidSlot(t *testing.T) {
	bill, err := NewBill("A-1001", "OF-7", date(2026, time.June, 1), decimal.NewFromInt(10))
	require.NoError(t, err)

	err = bill.RequestCashSlot(CashSlot(3), time.Now())
	require.Error(t, err)
	assert.Equal(t, StatusGray, bill.PaymentStatus)
	assert.Nil(t, bill.CashSlot)
}

func TestBill_RequestCashSlot_PaidBill(t *testing.T) {
	bill, err := NewBill("A-1001", "OF-7", date(2026, time.June, 1), decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, bill.ConfirmPayment())

	err = bill.RequestCashSlot(CashSlotMorning, time.Now())
	require.Error(t, err)
	assert.Equal(t, StatusGreen, bill.PaymentStatus)
}

func TestBill_ConfirmPayment(t *testing.T) {
	bill, err := NewBill("A-1001", "OF-7", date(2026, time.June, 1), decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, bill.RequestCashSlot(CashSlotMorning, time.Now()))

	require.NoError(t, bill.ConfirmPayment())
	assert.Equal(t, StatusGreen, bill.PaymentStatus)
	assert.True(t, bill.IsPaid())
	assert.Nil(t, bill.CashSlot)
	assert.Nil(t, bill.CashRequestedAt)

	err = bill.ConfirmPayment()
	require.Error(t, err)
}
