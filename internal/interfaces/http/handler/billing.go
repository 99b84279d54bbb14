package handler

import (
	"github.com/gin-gonic/gin"

	billingapp "github.com/mailriver/backend/internal/application/billing"
	"github.com/mailriver/backend/internal/interfaces/http/dto"
	"github.com/mailriver/backend/internal/interfaces/http/middleware"
)

// BillingHandler handles balance, usage, and subscription endpoints
type BillingHandler struct {
	BaseHandler
	balanceService      *billingapp.BalanceService
	entitlementService  *billingapp.EntitlementService
	subscriptionService *billingapp.SubscriptionService
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(
	balanceService *billingapp.BalanceService,
	entitlementService *billingapp.EntitlementService,
	subscriptionService *billingapp.SubscriptionService,
) *BillingHandler {
	return &BillingHandler{
		balanceService:      balanceService,
		entitlementService:  entitlementService,
		subscriptionService: subscriptionService,
	}
}

// SubscriptionCheckoutRequest starts a Stripe Checkout session for a plan
type SubscriptionCheckoutRequest struct {
	PlanCode  string `json:"plan_code" binding:"required,min=1,max=50"`
	TrialDays int64  `json:"trial_days" binding:"min=0,max=90"`
}

// TopUpCheckoutRequest starts a Stripe Checkout session that credits the
// prepaid balance. Amount is in minor currency units.
type TopUpCheckoutRequest struct {
	Amount   int64  `json:"amount" binding:"required,gt=0"`
	Currency string `json:"currency" binding:"required,len=3"`
}

// ChangePlanRequest moves the subscription to another plan
type ChangePlanRequest struct {
	PlanCode string `json:"plan_code" binding:"required,min=1,max=50"`
}

// CancelSubscriptionRequest cancels now or at period end
type CancelSubscriptionRequest struct {
	AtPeriodEnd bool `json:"at_period_end"`
}

// GetBalance returns the workspace's prepaid balance
func (h *BillingHandler) GetBalance(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	balance, err := h.balanceService.GetBalance(c.Request.Context(), wsID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, balance)
}

// ListTransactions returns the balance ledger, paginated
func (h *BillingHandler) ListTransactions(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	page, err := h.balanceService.ListTransactions(c.Request.Context(), wsID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetUsage returns the current period's metered usage against plan limits
func (h *BillingHandler) GetUsage(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	summary, err := h.entitlementService.GetUsage(c.Request.Context(), wsID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// GetEntitlements returns the resolved plan limits for the workspace
func (h *BillingHandler) GetEntitlements(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	entitlements, err := h.entitlementService.Resolve(c.Request.Context(), wsID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entitlements)
}

// StartSubscriptionCheckout opens a Stripe Checkout session for a plan
func (h *BillingHandler) StartSubscriptionCheckout(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req SubscriptionCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	session, err := h.subscriptionService.StartSubscriptionCheckout(c.Request.Context(), billingapp.StartSubscriptionInput{
		WorkspaceID: wsID,
		PlanCode:    req.PlanCode,
		Email:       claims.Email,
		Name:        claims.Email,
		TrialDays:   int(req.TrialDays),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, session)
}

// StartTopUpCheckout opens a Stripe Checkout session that credits the
// prepaid balance on completion
func (h *BillingHandler) StartTopUpCheckout(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req TopUpCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	session, err := h.subscriptionService.StartTopUpCheckout(c.Request.Context(), billingapp.StartTopUpInput{
		WorkspaceID: wsID,
		Email:       claims.Email,
		Name:        claims.Email,
		Amount:      req.Amount,
		Currency:    req.Currency,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, session)
}

// OpenBillingPortal opens a Stripe customer portal session
func (h *BillingHandler) OpenBillingPortal(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	session, err := h.subscriptionService.OpenBillingPortal(c.Request.Context(), wsID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, session)
}

// GetSubscription returns the workspace's subscription mirror
func (h *BillingHandler) GetSubscription(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	subscription, err := h.subscriptionService.GetSubscription(c.Request.Context(), wsID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, subscription)
}

// ChangePlan moves the subscription to another plan with proration
func (h *BillingHandler) ChangePlan(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	subscription, err := h.subscriptionService.ChangePlan(c.Request.Context(), billingapp.ChangePlanInput{
		WorkspaceID: wsID,
		PlanCode:    req.PlanCode,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, subscription)
}

// CancelSubscription cancels the subscription now or at period end
func (h *BillingHandler) CancelSubscription(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	subscription, err := h.subscriptionService.CancelSubscription(c.Request.Context(), wsID, req.AtPeriodEnd)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, subscription)
}

// ResumeSubscription undoes a cancel-at-period-end
func (h *BillingHandler) ResumeSubscription(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	subscription, err := h.subscriptionService.ResumeSubscription(c.Request.Context(), wsID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, subscription)
}
