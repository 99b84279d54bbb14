package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	mailapp "github.com/mailriver/backend/internal/application/mail"
)

// MailboxHandler handles virtual mailbox endpoints
type MailboxHandler struct {
	BaseHandler
	mailboxService *mailapp.MailboxService
}

// NewMailboxHandler creates a new MailboxHandler
func NewMailboxHandler(mailboxService *mailapp.MailboxService) *MailboxHandler {
	return &MailboxHandler{mailboxService: mailboxService}
}

// OpenMailboxRequest opens a mailbox at an office location. PMB number is
// assigned by the location when left empty.
type OpenMailboxRequest struct {
	OfficeLocationID string `json:"office_location_id" binding:"required,uuid"`
	PMBNumber        string `json:"pmb_number" binding:"max=10"`
}

// Open opens a virtual mailbox for the workspace
func (h *MailboxHandler) Open(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req OpenMailboxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	locationID, err := uuid.Parse(req.OfficeLocationID)
	if err != nil {
		h.BadRequest(c, "Invalid office location ID format")
		return
	}

	mailbox, err := h.mailboxService.OpenMailbox(c.Request.Context(), mailapp.OpenMailboxInput{
		WorkspaceID:      wsID,
		OfficeLocationID: locationID,
		PMBNumber:        req.PMBNumber,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, mailbox)
}

// Close closes a mailbox. Mail already logged against it stays readable.
func (h *MailboxHandler) Close(c *gin.Context) {
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

	mailbox, err := h.mailboxService.CloseMailbox(c.Request.Context(), wsID, mailboxID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, mailbox)
}

// Get returns a single mailbox
func (h *MailboxHandler) Get(c *gin.Context) {
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

	mailbox, err := h.mailboxService.GetMailbox(c.Request.Context(), wsID, mailboxID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, mailbox)
}

// List returns all mailboxes of the workspace
func (h *MailboxHandler) List(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	mailboxes, err := h.mailboxService.ListMailboxes(c.Request.Context(), wsID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, mailboxes)
}
