package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/namjai/backend/internal/domain/billing"
	"github.com/namjai/backend/internal/domain/shared"
	"github.com/namjai/backend/internal/infrastructure/persistence/models"
)

// GormBillRepository implements BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// Save creates or updates a bill
func (r *GormBillRepository) Save(ctx context.Context, bill *billing.Bill) error {
	model := models.BillModelFromDomain(bill)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a bill by its ID
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	var model models.BillModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindLatestByAccount returns the current cycle's bill for an account
func (r *GormBillRepository) FindLatestByAccount(ctx context.Context, accountID string) (*billing.Bill, error) {
	var model models.BillModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("bill_date DESC NULLS LAST, created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindHistoryByAccount returns all bills for an account, newest first
func (r *GormBillRepository) FindHistoryByAccount(ctx context.Context, accountID string) ([]billing.Bill, error) {
	var billModels []models.BillModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("bill_date DESC NULLS LAST, created_at DESC").
		Find(&billModels).Error; err != nil {
		return nil, err
	}

	bills := make([]billing.Bill, len(billModels))
	for i := range billModels {
		bills[i] = *billModels[i].ToDomain()
	}
	return bills, nil
}

// zoneRow is the scan target for the zone lateral join. Bill columns are
// nullable: accounts that were never billed come back with a NULL bill ID.
type zoneRow struct {
	AccountID string
	FirstName string
	LastName  string
	Phone     string

	BillID          *uuid.UUID
	BillDate        *time.Time
	UnitsUsed       *decimal.Decimal
	AmountDue       *decimal.Decimal
	PaymentStatus   *string
	EscalationLevel *string
	CashSlot        *int16
	CashRequestedAt *time.Time
	BillCreatedAt   *time.Time
	BillUpdatedAt   *time.Time
}

// FindLatestByZone returns every active account in a zone together with its
// latest bill. One round trip: the lateral join picks each account's newest
// bill in the database instead of N follow-up queries.
func (r *GormBillRepository) FindLatestByZone(ctx context.Context, zone int) ([]billing.ZoneAccountBill, error) {
	var rows []zoneRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT a.account_id,
		       a.first_name,
		       a.last_name,
		       a.phone,
		       b.id               AS bill_id,
		       b.bill_date,
		       b.units_used,
		       b.amount_due,
		       b.payment_status,
		       b.escalation_level,
		       b.cash_slot,
		       b.cash_requested_at,
		       b.created_at       AS bill_created_at,
		       b.updated_at       AS bill_updated_at
		FROM accounts a
		LEFT JOIN LATERAL (
			SELECT *
			FROM bills
			WHERE bills.account_id = a.account_id
			ORDER BY bill_date DESC NULLS LAST, created_at DESC
			LIMIT 1
		) b ON TRUE
		WHERE a.zone = ? AND a.active
		ORDER BY a.account_id`, zone).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]billing.ZoneAccountBill, len(rows))
	for i, row := range rows {
		result[i] = billing.ZoneAccountBill{
			AccountID: row.AccountID,
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Phone:     row.Phone,
			Bill:      row.toBill(),
		}
	}
	return result, nil
}

// toBill reconstructs the domain bill from the joined columns, nil when the
// account has no bill.
func (row *zoneRow) toBill() *billing.Bill {
	if row.BillID == nil {
		return nil
	}

	model := models.BillModel{
		AccountID:       row.AccountID,
		BillDate:        row.BillDate,
		EscalationLevel: row.EscalationLevel,
		CashSlot:        row.CashSlot,
		CashRequestedAt: row.CashRequestedAt,
	}
	model.ID = *row.BillID
	if row.UnitsUsed != nil {
		model.UnitsUsed = *row.UnitsUsed
	}
	if row.AmountDue != nil {
		model.AmountDue = *row.AmountDue
	}
	if row.PaymentStatus != nil {
		model.PaymentStatus = *row.PaymentStatus
	}
	if row.BillCreatedAt != nil {
		model.CreatedAt = *row.BillCreatedAt
	}
	if row.BillUpdatedAt != nil {
		model.UpdatedAt = *row.BillUpdatedAt
	}
	return model.ToDomain()
}

// FindActiveZones returns the distinct zones that have active accounts
func (r *GormBillRepository) FindActiveZones(ctx context.Context) ([]int, error) {
	var zones []int
	if err := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("active").
		Distinct().
		Order("zone").
		Pluck("zone", &zones).Error; err != nil {
		return nil, err
	}
	return zones, nil
}

// ConditionalAdvance persists an escalation decision as one guarded UPDATE.
// The WHERE clause matches the escalation level the caller evaluated against
// and excludes paid bills, so a concurrent advance or payment makes the
// update touch zero rows. Zero rows is not an error: the other writer's
// outcome stands and the penalty is applied at most once.
func (r *GormBillRepository) ConditionalAdvance(ctx context.Context, billID uuid.UUID, expected billing.EscalationLevel, decision billing.EscalationDecision) (bool, error) {
	if !decision.Apply {
		return false, nil
	}

	query := r.db.WithContext(ctx).
		Model(&models.BillModel{}).
		Where("id = ? AND payment_status <> ?", billID, billing.StatusGreen.String())

	if expected == billing.LevelNone {
		query = query.Where("escalation_level IS NULL")
	} else {
		query = query.Where("escalation_level = ?", string(expected))
	}

	result := query.Updates(map[string]interface{}{
		"payment_status":   decision.NewStatus.String(),
		"escalation_level": string(decision.NewLevel),
		"amount_due":       gorm.Expr("amount_due + ?", decision.Penalty),
		"updated_at":       time.Now(),
	})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GormOfficerDirectory implements OfficerDirectory using GORM
type GormOfficerDirectory struct {
	db *gorm.DB
}

// NewGormOfficerDirectory creates a new GormOfficerDirectory
func NewGormOfficerDirectory(db *gorm.DB) *GormOfficerDirectory {
	return &GormOfficerDirectory{db: db}
}

// ZoneByOfficerID returns the zone the officer collects for
func (r *GormOfficerDirectory) ZoneByOfficerID(ctx context.Context, officerID string) (int, error) {
	var model models.OfficerModel
	if err := r.db.WithContext(ctx).
		Where("officer_id = ? AND active", officerID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return model.Zone, nil
}
