package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	forwardingapp "github.com/mailriver/backend/internal/application/forwarding"
	"github.com/mailriver/backend/internal/domain/forwarding"
	"github.com/mailriver/backend/internal/interfaces/http/dto"
)

// ForwardingHandler handles package forwarding: quoting, request
// placement, tracking, and the mailroom fulfillment queue
type ForwardingHandler struct {
	BaseHandler
	quoteService     *forwardingapp.QuoteService
	requestService   *forwardingapp.RequestService
	lifecycleService *forwardingapp.LifecycleService
}

// NewForwardingHandler creates a new ForwardingHandler
func NewForwardingHandler(
	quoteService *forwardingapp.QuoteService,
	requestService *forwardingapp.RequestService,
	lifecycleService *forwardingapp.LifecycleService,
) *ForwardingHandler {
	return &ForwardingHandler{
		quoteService:     quoteService,
		requestService:   requestService,
		lifecycleService: lifecycleService,
	}
}

// QuoteRequest asks for live shipping rates for one mail item
type QuoteRequest struct {
	MailItemID        string `json:"mail_item_id" binding:"required,uuid"`
	DeliveryAddressID string `json:"delivery_address_id" binding:"required,uuid"`
}

// SelectedRateRequest pins the rate the customer accepted. Fee is in
// minor currency units and is re-verified against the carrier before the
// label is bought.
type SelectedRateRequest struct {
	RateID   string `json:"rate_id" binding:"required,min=1,max=100"`
	Carrier  string `json:"carrier" binding:"required,min=1,max=50"`
	Service  string `json:"service" binding:"required,min=1,max=100"`
	Fee      int64  `json:"fee" binding:"required,gt=0"`
	Currency string `json:"currency" binding:"required,len=3"`
}

// CreateForwardingRequest places a forwarding request for a mail item.
// The fee fields override the priced defaults when present, in minor
// currency units.
type CreateForwardingRequest struct {
	MailItemID        string              `json:"mail_item_id" binding:"required,uuid"`
	DeliveryAddressID string              `json:"delivery_address_id" binding:"required,uuid"`
	SelectedRate      SelectedRateRequest `json:"selected_rate" binding:"required"`
	SpeedOptionID     *string             `json:"speed_option_id" binding:"omitempty,uuid"`
	PackagingOptionID *string             `json:"packaging_option_id" binding:"omitempty,uuid"`
	SpeedFee          *int64              `json:"speed_fee" binding:"omitempty,gte=0"`
	PackagingFee      *int64              `json:"packaging_fee" binding:"omitempty,gte=0"`
	ServiceFee        *int64              `json:"service_fee" binding:"omitempty,gte=0"`
	Priority          string              `json:"priority" binding:"omitempty,oneof=NORMAL HIGH"`
}

// Quote fetches live carrier rates plus the location's speed and
// packaging upsells for one mail item
func (h *ForwardingHandler) Quote(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	itemID, err := uuid.Parse(req.MailItemID)
	if err != nil {
		h.BadRequest(c, "Invalid mail item ID format")
		return
	}
	addressID, err := uuid.Parse(req.DeliveryAddressID)
	if err != nil {
		h.BadRequest(c, "Invalid delivery address ID format")
		return
	}

	out, err := h.quoteService.GetForwardingQuote(c.Request.Context(), forwardingapp.QuoteInput{
		WorkspaceID:       wsID,
		MailItemID:        itemID,
		DeliveryAddressID: addressID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, out)
}

// Create places a forwarding request, buys the label, and charges the
// workspace balance
func (h *ForwardingHandler) Create(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateForwardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	itemID, err := uuid.Parse(req.MailItemID)
	if err != nil {
		h.BadRequest(c, "Invalid mail item ID format")
		return
	}
	addressID, err := uuid.Parse(req.DeliveryAddressID)
	if err != nil {
		h.BadRequest(c, "Invalid delivery address ID format")
		return
	}

	input := forwardingapp.CreateRequestInput{
		WorkspaceID:       wsID,
		MailItemID:        itemID,
		DeliveryAddressID: addressID,
		SelectedRate: forwarding.RateSelection{
			RateID:   req.SelectedRate.RateID,
			Carrier:  req.SelectedRate.Carrier,
			Service:  req.SelectedRate.Service,
			Fee:      req.SelectedRate.Fee,
			Currency: req.SelectedRate.Currency,
		},
		SpeedFee:     req.SpeedFee,
		PackagingFee: req.PackagingFee,
		ServiceFee:   req.ServiceFee,
		Priority:     forwarding.PriorityNormal,
	}
	if req.Priority == string(forwarding.PriorityHigh) {
		input.Priority = forwarding.PriorityHigh
	}
	if req.SpeedOptionID != nil {
		id, err := uuid.Parse(*req.SpeedOptionID)
		if err != nil {
			h.BadRequest(c, "Invalid speed option ID format")
			return
		}
		input.SpeedOptionID = &id
	}
	if req.PackagingOptionID != nil {
		id, err := uuid.Parse(*req.PackagingOptionID)
		if err != nil {
			h.BadRequest(c, "Invalid packaging option ID format")
			return
		}
		input.PackagingOptionID = &id
	}

	out, err := h.requestService.CreateForwardingRequest(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, out)
}

// Get returns a single forwarding request
func (h *ForwardingHandler) Get(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	requestID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid forwarding request ID format")
		return
	}

	request, err := h.lifecycleService.Get(c.Request.Context(), wsID, requestID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, request)
}

// List returns the workspace's forwarding requests, paginated
func (h *ForwardingHandler) List(c *gin.Context) {
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

	page, err := h.lifecycleService.ListForWorkspace(c.Request.Context(), wsID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Track returns the request together with live carrier tracking
func (h *ForwardingHandler) Track(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	requestID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid forwarding request ID format")
		return
	}

	out, err := h.lifecycleService.Track(c.Request.Context(), wsID, requestID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, out)
}

// Cancel cancels a request that has not shipped yet and refunds the
// charge
func (h *ForwardingHandler) Cancel(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	requestID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid forwarding request ID format")
		return
	}

	request, err := h.lifecycleService.Cancel(c.Request.Context(), wsID, requestID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, request)
}

// Complete marks a request as handed to the carrier. Mailroom staff only.
func (h *ForwardingHandler) Complete(c *gin.Context) {
	requestID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid forwarding request ID format")
		return
	}

	request, err := h.lifecycleService.Complete(c.Request.Context(), requestID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, request)
}

// ListForLocation returns the fulfillment queue of an office location,
// optionally narrowed by status. Mailroom staff only.
func (h *ForwardingHandler) ListForLocation(c *gin.Context) {
	locationID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid office location ID format")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	var status *forwarding.RequestStatus
	if raw := c.Query("status"); raw != "" {
		s := forwarding.RequestStatus(raw)
		status = &s
	}

	page, err := h.lifecycleService.ListForHandler(c.Request.Context(), locationID, status, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
