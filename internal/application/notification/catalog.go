package notification

import (
	"github.com/namjai/backend/internal/domain/billing"
	"github.com/namjai/backend/internal/domain/notification"
)

// DefaultCampaigns returns the standing monthly campaign calendar. Member
// reminders tighten as bills age; officer digests flag the accounts needing
// a visit. Rules use calendar days so every month follows the same rhythm.
func DefaultCampaigns() []notification.Campaign {
	orange := billing.StatusOrange
	red := billing.StatusRed

	return []notification.Campaign{
		{
			ID:       "member-bill-issued-1",
			Rule:     notification.FixedDay(1),
			Audience: notification.AudiencePredicate{Role: notification.RoleMember},
			Message:  "Namjai: your water bill for this month has been issued. Please check the app for the amount due.",
		},
		{
			ID:       "member-bill-issued-4",
			Rule:     notification.FixedDay(4),
			Audience: notification.AudiencePredicate{Role: notification.RoleMember},
			Message:  "Namjai: a reminder that this month's water bill is awaiting payment.",
		},
		{
			ID:       "member-bill-issued-6",
			Rule:     notification.FixedDay(6),
			Audience: notification.AudiencePredicate{Role: notification.RoleMember},
			Message:  "Namjai: please pay this month's water bill soon to avoid a late surcharge.",
		},
		{
			ID:       "member-overdue-orange",
			Rule:     notification.DayRange(8, 14),
			Audience: notification.AudiencePredicate{Role: notification.RoleMember, Status: &orange},
			Message:  "Namjai: your water bill is overdue and a surcharge has been added. Please pay as soon as possible.",
		},
		{
			ID:       "member-overdue-red",
			Rule:     notification.DayRange(15, 21),
			Audience: notification.AudiencePredicate{Role: notification.RoleMember, Status: &red, OverdueMoreThanDays: 14},
			Message:  "Namjai: final notice. Your water bill is seriously overdue; service may be suspended if it remains unpaid.",
		},
		{
			ID:       "officer-cash-slots",
			Rule:     notification.FixedDay(5),
			Audience: notification.AudiencePredicate{Role: notification.RoleOfficer, CashSlotRequested: true},
			Message:  "Namjai: members in your zone have requested cash collection today. Check the app for slot times.",
		},
		{
			ID:       "officer-overdue-orange",
			Rule:     notification.FixedDay(8),
			Audience: notification.AudiencePredicate{Role: notification.RoleOfficer, Status: &orange},
			Message:  "Namjai: accounts in your zone have entered the overdue stage. Review them in the app.",
		},
		{
			ID:       "officer-overdue-red",
			Rule:     notification.FixedDay(15),
			Audience: notification.AudiencePredicate{Role: notification.RoleOfficer, Status: &red, OverdueMoreThanDays: 14},
			Message:  "Namjai: accounts in your zone are seriously overdue and need a collection visit.",
		},
		{
			ID:       "officer-meter-reading",
			Rule:     notification.DaysBeforeMonthEnd(2),
			Audience: notification.AudiencePredicate{Role: notification.RoleOfficer},
			Message:  "Namjai: meter reading starts in two days. Please prepare next month's readings for your zone.",
		},
	}
}
