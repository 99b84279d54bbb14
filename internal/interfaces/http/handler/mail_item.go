package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	mailapp "github.com/mailriver/backend/internal/application/mail"
	"github.com/mailriver/backend/internal/domain/mail"
	"github.com/mailriver/backend/internal/interfaces/http/dto"
)

// MailItemHandler handles mail item endpoints for both workspace users and
// mailroom staff
type MailItemHandler struct {
	BaseHandler
	mailItemService *mailapp.MailItemService
}

// NewMailItemHandler creates a new MailItemHandler
func NewMailItemHandler(mailItemService *mailapp.MailItemService) *MailItemHandler {
	return &MailItemHandler{mailItemService: mailItemService}
}

// DimensionsRequest records physical dimensions, inches and ounces
type DimensionsRequest struct {
	Length float64 `json:"length" binding:"required,gt=0"`
	Width  float64 `json:"width" binding:"required,gt=0"`
	Height float64 `json:"height" binding:"required,gt=0"`
	Weight float64 `json:"weight" binding:"required,gt=0"`
}

// IntakeRequest logs a physical piece of mail received for a mailbox
type IntakeRequest struct {
	MailboxID     string             `json:"mailbox_id" binding:"required,uuid"`
	SenderName    string             `json:"sender_name" binding:"max=200"`
	SenderAddress string             `json:"sender_address" binding:"max=500"`
	Description   string             `json:"description" binding:"max=500"`
	Dimensions    *DimensionsRequest `json:"dimensions"`
}

// ScanUploadRequest asks for a presigned upload slot for a scan image
type ScanUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,min=1,max=255"`
	ContentType string `json:"content_type" binding:"required,min=1,max=100"`
}

// ScanConfirmRequest confirms that a scan object landed in storage
type ScanConfirmRequest struct {
	ObjectKey string `json:"object_key" binding:"required,min=1,max=512"`
}

// Intake logs a received mail item. Mailroom staff only.
func (h *MailItemHandler) Intake(c *gin.Context) {
	var req IntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	mailboxID, err := uuid.Parse(req.MailboxID)
	if err != nil {
		h.BadRequest(c, "Invalid mailbox ID format")
		return
	}

	input := mailapp.IntakeInput{
		MailboxID:     mailboxID,
		SenderName:    req.SenderName,
		SenderAddress: req.SenderAddress,
		Description:   req.Description,
	}
	if req.Dimensions != nil {
		input.Dimensions = &mailapp.MeasureInput{
			Length: req.Dimensions.Length,
			Width:  req.Dimensions.Width,
			Height: req.Dimensions.Height,
			Weight: req.Dimensions.Weight,
		}
	}

	item, err := h.mailItemService.LogIntake(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, item)
}

// RecordDimensions measures an item after intake. Mailroom staff only.
func (h *MailItemHandler) RecordDimensions(c *gin.Context) {
	itemID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid mail item ID format")
		return
	}

	var req DimensionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	item, err := h.mailItemService.RecordDimensions(c.Request.Context(), itemID, mailapp.MeasureInput{
		Length: req.Length,
		Width:  req.Width,
		Height: req.Height,
		Weight: req.Weight,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// InitiateScan reserves a presigned upload slot for a scan image.
// Mailroom staff only.
func (h *MailItemHandler) InitiateScan(c *gin.Context) {
	itemID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid mail item ID format")
		return
	}

	var req ScanUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	out, err := h.mailItemService.InitiateScan(c.Request.Context(), mailapp.ScanUploadInput{
		MailItemID:  itemID,
		FileName:    req.FileName,
		ContentType: req.ContentType,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, out)
}

// ConfirmScan attaches an uploaded scan to the item. Mailroom staff only.
func (h *MailItemHandler) ConfirmScan(c *gin.Context) {
	itemID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid mail item ID format")
		return
	}

	var req ScanConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	item, err := h.mailItemService.ConfirmScan(c.Request.Context(), itemID, req.ObjectKey)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// GetScanURL returns a presigned download link for the item's scan
func (h *MailItemHandler) GetScanURL(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	itemID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid mail item ID format")
		return
	}

	out, err := h.mailItemService.GetScanURL(c.Request.Context(), wsID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, out)
}

// Shred marks an item as destroyed
func (h *MailItemHandler) Shred(c *gin.Context) {
	h.transition(c, h.mailItemService.Shred)
}

// MarkJunk marks an item as junk mail
func (h *MailItemHandler) MarkJunk(c *gin.Context) {
	h.transition(c, h.mailItemService.MarkJunk)
}

// Hold places an item on hold at the mailroom
func (h *MailItemHandler) Hold(c *gin.Context) {
	h.transition(c, h.mailItemService.Hold)
}

// ReleaseHold lifts a hold and returns the item to storage
func (h *MailItemHandler) ReleaseHold(c *gin.Context) {
	h.transition(c, h.mailItemService.ReleaseHold)
}

// Get returns a single mail item
func (h *MailItemHandler) Get(c *gin.Context) {
	h.transition(c, h.mailItemService.GetMailItem)
}

// ListByMailbox returns the items of one mailbox, paginated
func (h *MailItemHandler) ListByMailbox(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	mailboxID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid mailbox ID format")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	page, err := h.mailItemService.ListByMailbox(c.Request.Context(), wsID, mailboxID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ListByLocation returns every item at an office location. Mailroom staff
// only.
func (h *MailItemHandler) ListByLocation(c *gin.Context) {
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

	page, err := h.mailItemService.ListByOfficeLocation(c.Request.Context(), locationID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// transition runs a workspace-scoped single-item operation identified by
// the :id path parameter
func (h *MailItemHandler) transition(c *gin.Context, op func(ctx context.Context, workspaceID, itemID uuid.UUID) (*mail.MailItem, error)) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	itemID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid mail item ID format")
		return
	}

	item, err := op(c.Request.Context(), wsID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}
