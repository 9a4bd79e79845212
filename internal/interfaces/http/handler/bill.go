package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appbilling "github.com/namjai/backend/internal/application/billing"
	"github.com/namjai/backend/internal/domain/billing"
)

// BillManager is the slice of the bill service the handler needs
type BillManager interface {
	CreateBill(ctx context.Context, input appbilling.CreateBillInput) (*billing.Bill, error)
	RequestCashSlot(ctx context.Context, accountID string, slot billing.CashSlot) (*billing.Bill, error)
	ConfirmPayment(ctx context.Context, billID uuid.UUID) (*billing.Bill, error)
	GetBill(ctx context.Context, billID uuid.UUID) (*billing.Bill, error)
	GetHistory(ctx context.Context, accountID string) ([]billing.Bill, error)
}

// EscalationEvaluator is the slice of the escalation runner the handler needs
type EscalationEvaluator interface {
	RunForOfficer(ctx context.Context, officerID string) ([]appbilling.AccountView, error)
	RunForAccount(ctx context.Context, accountID string) (*appbilling.AccountView, error)
}

// BillHandler exposes the billing endpoints: officer zone views, bill
// issuance, cash-slot requests, payment confirmation and member reads.
type BillHandler struct {
	*BaseHandler
	bills     BillManager
	escalator EscalationEvaluator
}

// NewBillHandler creates a new BillHandler
func NewBillHandler(bills BillManager, escalator EscalationEvaluator) *BillHandler {
	return &BillHandler{
		BaseHandler: NewBaseHandler(),
		bills:       bills,
		escalator:   escalator,
	}
}

// RegisterRoutes registers the billing endpoints on the API group
func (h *BillHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/officers/:id/accounts", h.OfficerAccounts)
	rg.POST("/bills", h.CreateBill)
	rg.GET("/bills/:id", h.GetBill)
	rg.POST("/bills/:id/payment", h.ConfirmPayment)
	rg.GET("/accounts/:id/bill", h.AccountBill)
	rg.GET("/accounts/:id/bills", h.AccountHistory)
	rg.POST("/accounts/:id/cash-slot", h.RequestCashSlot)
}

// CreateBillRequest is the payload for issuing a cycle's bill
type CreateBillRequest struct {
	AccountID string  `json:"account_id" binding:"required"`
	OfficerID string  `json:"officer_id" binding:"required"`
	BillDate  string  `json:"bill_date" binding:"required,dateonly"`
	UnitsUsed float64 `json:"units_used" binding:"required,gt=0"`
}

// CashSlotRequest selects one of the two cash-collection slots
type CashSlotRequest struct {
	Slot int `json:"slot" binding:"required,oneof=1 2"`
}

// OfficerAccounts handles GET /api/v1/officers/:id/accounts.
// Loading the zone evaluates every bill in it, so the statuses the officer
// sees are already escalated.
func (h *BillHandler) OfficerAccounts(c *gin.Context) {
	officerID := c.Param("id")
	if officerID == "" {
		h.BadRequest(c, "Officer ID is required")
		return
	}

	views, err := h.escalator.RunForOfficer(c.Request.Context(), officerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"accounts": views})
}

// CreateBill handles POST /api/v1/bills
func (h *BillHandler) CreateBill(c *gin.Context) {
	var req CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	billDate, err := time.Parse("2006-01-02", req.BillDate)
	if err != nil {
		h.BadRequest(c, "bill_date must be in YYYY-MM-DD format")
		return
	}

	bill, err := h.bills.CreateBill(c.Request.Context(), appbilling.CreateBillInput{
		AccountID: req.AccountID,
		OfficerID: req.OfficerID,
		BillDate:  billDate,
		UnitsUsed: decimal.NewFromFloat(req.UnitsUsed),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, bill)
}

// AccountBill handles GET /api/v1/accounts/:id/bill.
// The member read evaluates the latest bill first, so an overdue status is
// never stale.
func (h *BillHandler) AccountBill(c *gin.Context) {
	accountID := c.Param("id")
	if accountID == "" {
		h.BadRequest(c, "Account ID is required")
		return
	}

	view, err := h.escalator.RunForAccount(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// AccountHistory handles GET /api/v1/accounts/:id/bills
func (h *BillHandler) AccountHistory(c *gin.Context) {
	accountID := c.Param("id")
	if accountID == "" {
		h.BadRequest(c, "Account ID is required")
		return
	}

	bills, err := h.bills.GetHistory(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"bills": bills})
}

// RequestCashSlot handles POST /api/v1/accounts/:id/cash-slot
func (h *BillHandler) RequestCashSlot(c *gin.Context) {
	accountID := c.Param("id")
	if accountID == "" {
		h.BadRequest(c, "Account ID is required")
		return
	}

	var req CashSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	bill, err := h.bills.RequestCashSlot(c.Request.Context(), accountID, billing.CashSlot(req.Slot))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, bill)
}

// GetBill handles GET /api/v1/bills/:id
func (h *BillHandler) GetBill(c *gin.Context) {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Bill ID must be a valid UUID")
		return
	}

	bill, err := h.bills.GetBill(c.Request.Context(), billID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, bill)
}

// ConfirmPayment handles POST /api/v1/bills/:id/payment
func (h *BillHandler) ConfirmPayment(c *gin.Context) {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Bill ID must be a valid UUID")
		return
	}

	bill, err := h.bills.ConfirmPayment(c.Request.Context(), billID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, bill)
}
