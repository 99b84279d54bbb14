package handler

import (
	"github.com/gin-gonic/gin"

	mailapp "github.com/mailriver/backend/internal/application/mail"
	"github.com/mailriver/backend/internal/interfaces/http/dto"
)

// LocationHandler handles office location administration. Listing is open
// to any authenticated caller so mailboxes can be opened against active
// locations.
type LocationHandler struct {
	BaseHandler
	locationService *mailapp.OfficeLocationService
}

// NewLocationHandler creates a new LocationHandler
func NewLocationHandler(locationService *mailapp.OfficeLocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

// LocationRequest carries the admin-facing fields for an office location
type LocationRequest struct {
	Code    string `json:"code" binding:"required,min=1,max=20"`
	Name    string `json:"name" binding:"required,min=1,max=100"`
	Street1 string `json:"street1" binding:"required,min=1,max=200"`
	Street2 string `json:"street2" binding:"max=200"`
	City    string `json:"city" binding:"required,min=1,max=100"`
	State   string `json:"state" binding:"max=100"`
	Zip     string `json:"zip" binding:"required,min=1,max=20"`
	Country string `json:"country" binding:"required,len=2"`
	Phone   string `json:"phone" binding:"max=30"`
}

// SetActiveRequest toggles whether a location accepts new mailboxes
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (r LocationRequest) toInput() mailapp.LocationInput {
	return mailapp.LocationInput{
		Code:    r.Code,
		Name:    r.Name,
		Street1: r.Street1,
		Street2: r.Street2,
		City:    r.City,
		State:   r.State,
		Zip:     r.Zip,
		Country: r.Country,
		Phone:   r.Phone,
	}
}

// Create registers a new office location. Admin only.
func (h *LocationHandler) Create(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	location, err := h.locationService.CreateLocation(c.Request.Context(), req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, location)
}

// Update rewrites a location's details. Admin only.
func (h *LocationHandler) Update(c *gin.Context) {
	locationID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid office location ID format")
		return
	}

	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	location, err := h.locationService.UpdateLocation(c.Request.Context(), locationID, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, location)
}

// SetActive opens or closes a location for new mailboxes. Admin only.
func (h *LocationHandler) SetActive(c *gin.Context) {
	locationID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid office location ID format")
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	location, err := h.locationService.SetActive(c.Request.Context(), locationID, *req.Active)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, location)
}

// Delete retires a location. Admin only.
func (h *LocationHandler) Delete(c *gin.Context) {
	locationID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid office location ID format")
		return
	}

	if err := h.locationService.DeleteLocation(c.Request.Context(), locationID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Get returns a single office location
func (h *LocationHandler) Get(c *gin.Context) {
	locationID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid office location ID format")
		return
	}

	location, err := h.locationService.GetLocation(c.Request.Context(), locationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, location)
}

// List returns office locations, paginated
func (h *LocationHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	page, err := h.locationService.ListLocations(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
