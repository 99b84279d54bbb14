package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/mailriver/backend/internal/application/catalog"
	"github.com/mailriver/backend/internal/domain/catalog"
)

// ShippingOptionHandler handles forwarding upsells: speed and packaging
// options and their per-location price overrides
type ShippingOptionHandler struct {
	BaseHandler
	optionService *catalogapp.ShippingOptionService
}

// NewShippingOptionHandler creates a new ShippingOptionHandler
func NewShippingOptionHandler(optionService *catalogapp.ShippingOptionService) *ShippingOptionHandler {
	return &ShippingOptionHandler{optionService: optionService}
}

// ShippingOptionRequest defines a speed or packaging option. BasePrice is
// in minor currency units.
type ShippingOptionRequest struct {
	Kind        string `json:"kind" binding:"required,oneof=SPEED PACKAGING"`
	Code        string `json:"code" binding:"required,min=1,max=50"`
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
	BasePrice   int64  `json:"base_price" binding:"min=0"`
}

// AssignOptionRequest offers an option at an office location, optionally
// at a location-specific price
type AssignOptionRequest struct {
	ShippingOptionID string `json:"shipping_option_id" binding:"required,uuid"`
	PriceOverride    *int64 `json:"price_override"`
}

// LocationPriceRequest updates a location's price override. A nil price
// reverts to the option's base price.
type LocationPriceRequest struct {
	PriceOverride *int64 `json:"price_override"`
}

// optionKind parses the kind query or body value
func optionKind(raw string) (catalog.ShippingOptionKind, bool) {
	switch raw {
	case string(catalog.ShippingOptionKindSpeed):
		return catalog.ShippingOptionKindSpeed, true
	case string(catalog.ShippingOptionKindPackaging):
		return catalog.ShippingOptionKindPackaging, true
	}
	return "", false
}

// Create defines a shipping option. Admin only.
func (h *ShippingOptionHandler) Create(c *gin.Context) {
	var req ShippingOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	option, err := h.optionService.CreateOption(c.Request.Context(), catalogapp.ShippingOptionInput{
		Kind:        catalog.ShippingOptionKind(req.Kind),
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		BasePrice:   req.BasePrice,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, option)
}

// Delete retires a shipping option. Admin only.
func (h *ShippingOptionHandler) Delete(c *gin.Context) {
	optionID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid shipping option ID format")
		return
	}

	if err := h.optionService.DeleteOption(c.Request.Context(), optionID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// List returns live options of one kind
func (h *ShippingOptionHandler) List(c *gin.Context) {
	kind, ok := optionKind(c.Query("kind"))
	if !ok {
		h.BadRequest(c, "kind must be SPEED or PACKAGING")
		return
	}

	options, err := h.optionService.ListOptions(c.Request.Context(), kind)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, options)
}

// AssignToLocation offers an option at an office location. Admin only.
func (h *ShippingOptionHandler) AssignToLocation(c *gin.Context) {
	locationID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid office location ID format")
		return
	}

	var req AssignOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	optionID, err := uuid.Parse(req.ShippingOptionID)
	if err != nil {
		h.BadRequest(c, "Invalid shipping option ID format")
		return
	}

	assignment, err := h.optionService.AssignToLocation(c.Request.Context(), catalogapp.AssignLocationOptionInput{
		OfficeLocationID: locationID,
		ShippingOptionID: optionID,
		PriceOverride:    req.PriceOverride,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, assignment)
}

// UpdateLocationPrice changes a location's price override. Admin only.
func (h *ShippingOptionHandler) UpdateLocationPrice(c *gin.Context) {
	locationID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid office location ID format")
		return
	}

	optionID, err := pathUUID(c, "optionId")
	if err != nil {
		h.BadRequest(c, "Invalid shipping option ID format")
		return
	}

	var req LocationPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	assignment, err := h.optionService.UpdateLocationPrice(c.Request.Context(), locationID, optionID, req.PriceOverride)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, assignment)
}

// RemoveFromLocation withdraws an option from a location. Admin only.
func (h *ShippingOptionHandler) RemoveFromLocation(c *gin.Context) {
	locationID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid office location ID format")
		return
	}

	optionID, err := pathUUID(c, "optionId")
	if err != nil {
		h.BadRequest(c, "Invalid shipping option ID format")
		return
	}

	if err := h.optionService.RemoveFromLocation(c.Request.Context(), locationID, optionID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListLocationOptions returns the options offered at a location with
// effective prices resolved
func (h *ShippingOptionHandler) ListLocationOptions(c *gin.Context) {
	locationID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid office location ID format")
		return
	}

	kind, ok := optionKind(c.Query("kind"))
	if !ok {
		h.BadRequest(c, "kind must be SPEED or PACKAGING")
		return
	}

	views, err := h.optionService.ListLocationOptions(c.Request.Context(), locationID, kind)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, views)
}
