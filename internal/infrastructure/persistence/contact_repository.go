package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/namjai/backend/internal/domain/billing"
	"github.com/namjai/backend/internal/domain/notification"
	"github.com/namjai/backend/internal/domain/shared"
)

// GormContactRepository implements ContactRepository using GORM. Audiences
// are resolved against the billing tables directly; the latest-bill filters
// use the same cutoff arithmetic as the escalation engine so a campaign
// never selects an account the engine would age differently.
type GormContactRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db, now: time.Now}
}

// QueryAudience resolves the recipients matching the predicate
func (r *GormContactRepository) QueryAudience(ctx context.Context, predicate notification.AudiencePredicate) ([]notification.Contact, error) {
	switch predicate.Role {
	case notification.RoleMember:
		return r.queryMembers(ctx, predicate)
	case notification.RoleOfficer:
		return r.queryOfficers(ctx, predicate)
	default:
		return nil, shared.NewDomainError("INVALID_AUDIENCE", "Unknown audience role")
	}
}

// billFilter builds the latest-bill conditions shared by both roles. The
// returned SQL references the lateral alias b.
func (r *GormContactRepository) billFilter(predicate notification.AudiencePredicate) (string, []interface{}) {
	var conds string
	var args []interface{}

	if predicate.Status != nil {
		conds += " AND b.payment_status = ?"
		args = append(args, predicate.Status.String())
	}
	if predicate.OverdueMoreThanDays > 0 {
		conds += " AND b.bill_date <= ?"
		args = append(args, billing.OverdueCutoff(r.now(), predicate.OverdueMoreThanDays))
	}
	if predicate.CashSlotRequested {
		conds += " AND b.cash_slot IS NOT NULL"
	}
	return conds, args
}

func (r *GormContactRepository) queryMembers(ctx context.Context, predicate notification.AudiencePredicate) ([]notification.Contact, error) {
	type row struct {
		ID        string
		FirstName string
		LastName  string
		Phone     string
	}

	conds, args := r.billFilter(predicate)
	query := `
		SELECT a.account_id AS id, a.first_name, a.last_name, a.phone
		FROM accounts a
		LEFT JOIN LATERAL (
			SELECT *
			FROM bills
			WHERE bills.account_id = a.account_id
			ORDER BY bill_date DESC NULLS LAST, created_at DESC
			LIMIT 1
		) b ON TRUE
		WHERE a.active` + conds + `
		ORDER BY a.account_id`

	var rows []row
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	contacts := make([]notification.Contact, len(rows))
	for i, rec := range rows {
		contacts[i] = notification.Contact{
			ID:        rec.ID,
			FirstName: rec.FirstName,
			LastName:  rec.LastName,
			Phone:     rec.Phone,
			Role:      notification.RoleMember,
		}
	}
	return contacts, nil
}

// queryOfficers selects officers by what is happening in their zone: with
// bill filters set, only officers whose zone has at least one matching
// account are notified.
func (r *GormContactRepository) queryOfficers(ctx context.Context, predicate notification.AudiencePredicate) ([]notification.Contact, error) {
	type row struct {
		ID        string
		FirstName string
		LastName  string
		Phone     string
	}

	conds, args := r.billFilter(predicate)
	query := `
		SELECT o.officer_id AS id, o.first_name, o.last_name, o.phone
		FROM officers o
		WHERE o.active`
	if conds != "" {
		query += ` AND EXISTS (
			SELECT 1
			FROM accounts a
			LEFT JOIN LATERAL (
				SELECT *
				FROM bills
				WHERE bills.account_id = a.account_id
				ORDER BY bill_date DESC NULLS LAST, created_at DESC
				LIMIT 1
			) b ON TRUE
			WHERE a.zone = o.zone AND a.active` + conds + `
		)`
	}
	query += `
		ORDER BY o.officer_id`

	var rows []row
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	contacts := make([]notification.Contact, len(rows))
	for i, rec := range rows {
		contacts[i] = notification.Contact{
			ID:        rec.ID,
			FirstName: rec.FirstName,
			LastName:  rec.LastName,
			Phone:     rec.Phone,
			Role:      notification.RoleOfficer,
		}
	}
	return contacts, nil
}
