package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/namjai/backend/internal/domain/billing"
)

// BillModel is the persistence model for the Bill domain entity. The
// escalation level is nullable so a fresh bill carries no tier marker; the
// conditional advance matches on exactly this column.
type BillModel struct {
	BaseModel
	AccountID       string          `gorm:"type:varchar(50);not null;index"`
	OfficerID       string          `gorm:"type:varchar(50);not null;index"`
	BillDate        *time.Time      `gorm:"type:date"`
	UnitsUsed       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	AmountDue       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PaymentStatus   string          `gorm:"type:varchar(10);not null;default:'Gray';index"`
	EscalationLevel *string         `gorm:"type:varchar(10)"`
	CashSlot        *int16          `gorm:"type:smallint"`
	CashRequestedAt *time.Time
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// ToDomain converts the persistence model to a domain Bill entity.
func (m *BillModel) ToDomain() *billing.Bill {
	bill := &billing.Bill{
		BaseEntity:      m.BaseModel.ToDomain(),
		AccountID:       m.AccountID,
		OfficerID:       m.OfficerID,
		UnitsUsed:       m.UnitsUsed,
		AmountDue:       m.AmountDue,
		PaymentStatus:   billing.PaymentStatus(m.PaymentStatus),
		EscalationLevel: billing.LevelNone,
		CashRequestedAt: m.CashRequestedAt,
	}
	if m.BillDate != nil {
		bill.BillDate = *m.BillDate
	}
	if m.EscalationLevel != nil {
		bill.EscalationLevel = billing.EscalationLevel(*m.EscalationLevel)
	}
	if m.CashSlot != nil {
		slot := billing.CashSlot(*m.CashSlot)
		bill.CashSlot = &slot
	}
	return bill
}

// FromDomain populates the persistence model from a domain Bill entity.
func (m *BillModel) FromDomain(b *billing.Bill) {
	m.FromDomainBaseEntity(b.BaseEntity)
	m.AccountID = b.AccountID
	m.OfficerID = b.OfficerID
	m.UnitsUsed = b.UnitsUsed
	m.AmountDue = b.AmountDue
	m.PaymentStatus = b.PaymentStatus.String()
	m.CashRequestedAt = b.CashRequestedAt

	if b.BillDate.IsZero() {
		m.BillDate = nil
	} else {
		d := b.BillDate
		m.BillDate = &d
	}
	if b.EscalationLevel == billing.LevelNone {
		m.EscalationLevel = nil
	} else {
		level := string(b.EscalationLevel)
		m.EscalationLevel = &level
	}
	if b.CashSlot == nil {
		m.CashSlot = nil
	} else {
		slot := int16(*b.CashSlot)
		m.CashSlot = &slot
	}
}

// BillModelFromDomain creates a new persistence model from a domain Bill entity.
func BillModelFromDomain(b *billing.Bill) *BillModel {
	m := &BillModel{}
	m.FromDomain(b)
	return m
}

// AccountModel is the persistence model for a billed member. The account ID
// is the natural key used throughout billing, so it is the primary key.
type AccountModel struct {
	AccountID string    `gorm:"type:varchar(50);primary_key"`
	FirstName string    `gorm:"type:varchar(100);not null"`
	LastName  string    `gorm:"type:varchar(100);not null"`
	Phone     string    `gorm:"type:varchar(50);not null"`
	Zone      int       `gorm:"not null;index"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// OfficerModel is the persistence model for a collection officer. One
// officer serves one zone.
type OfficerModel struct {
	OfficerID string    `gorm:"type:varchar(50);primary_key"`
	FirstName string    `gorm:"type:varchar(100);not null"`
	LastName  string    `gorm:"type:varchar(100);not null"`
	Phone     string    `gorm:"type:varchar(50);not null"`
	Zone      int       `gorm:"not null;uniqueIndex"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OfficerModel) TableName() string {
	return "officers"
}
