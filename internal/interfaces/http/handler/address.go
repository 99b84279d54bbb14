package handler

import (
	"github.com/gin-gonic/gin"

	mailapp "github.com/mailriver/backend/internal/application/mail"
)

// AddressHandler handles delivery address book endpoints
type AddressHandler struct {
	BaseHandler
	addressService *mailapp.DeliveryAddressService
}

// NewAddressHandler creates a new AddressHandler
func NewAddressHandler(addressService *mailapp.DeliveryAddressService) *AddressHandler {
	return &AddressHandler{addressService: addressService}
}

// AddressRequest carries the postal fields for a delivery address
type AddressRequest struct {
	Label       string `json:"label" binding:"required,min=1,max=50"`
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Company     string `json:"company" binding:"max=100"`
	Street1     string `json:"street1" binding:"required,min=1,max=200"`
	Street2     string `json:"street2" binding:"max=200"`
	City        string `json:"city" binding:"required,min=1,max=100"`
	State       string `json:"state" binding:"max=100"`
	Zip         string `json:"zip" binding:"required,min=1,max=20"`
	Country     string `json:"country" binding:"required,len=2"`
	Phone       string `json:"phone" binding:"max=30"`
	MakeDefault bool   `json:"make_default"`
}

func (r AddressRequest) toInput() mailapp.AddressInput {
	return mailapp.AddressInput{
		Label:       r.Label,
		Name:        r.Name,
		Company:     r.Company,
		Street1:     r.Street1,
		Street2:     r.Street2,
		City:        r.City,
		State:       r.State,
		Zip:         r.Zip,
		Country:     r.Country,
		Phone:       r.Phone,
		MakeDefault: r.MakeDefault,
	}
}

// Create adds an address to the workspace address book
func (h *AddressHandler) Create(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	address, err := h.addressService.CreateAddress(c.Request.Context(), wsID, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, address)
}

// Update rewrites an address in place
func (h *AddressHandler) Update(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	addressID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid address ID format")
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	address, err := h.addressService.UpdateAddress(c.Request.Context(), wsID, addressID, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, address)
}

// SetDefault marks an address as the workspace default
func (h *AddressHandler) SetDefault(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	addressID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid address ID format")
		return
	}

	address, err := h.addressService.SetDefault(c.Request.Context(), wsID, addressID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, address)
}

// Delete removes an address from the address book
func (h *AddressHandler) Delete(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	addressID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid address ID format")
		return
	}

	if err := h.addressService.DeleteAddress(c.Request.Context(), wsID, addressID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Get returns a single address
func (h *AddressHandler) Get(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	addressID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid address ID format")
		return
	}

	address, err := h.addressService.GetAddress(c.Request.Context(), wsID, addressID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, address)
}

// List returns the workspace address book
func (h *AddressHandler) List(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	addresses, err := h.addressService.ListAddresses(c.Request.Context(), wsID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, addresses)
}
