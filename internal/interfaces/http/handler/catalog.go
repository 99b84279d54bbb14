package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/mailriver/backend/internal/application/catalog"
	"github.com/mailriver/backend/internal/interfaces/http/dto"
)

// CatalogHandler handles plan, feature, addon, and carrier administration.
// Plan listing and lookup are open to any authenticated caller so the
// storefront can render pricing.
type CatalogHandler struct {
	BaseHandler
	planService    *catalogapp.PlanService
	featureService *catalogapp.FeatureService
	addonService   *catalogapp.AddonService
	carrierService *catalogapp.CarrierService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(
	planService *catalogapp.PlanService,
	featureService *catalogapp.FeatureService,
	addonService *catalogapp.AddonService,
	carrierService *catalogapp.CarrierService,
) *CatalogHandler {
	return &CatalogHandler{
		planService:    planService,
		featureService: featureService,
		addonService:   addonService,
		carrierService: carrierService,
	}
}

// PlanRequest carries the admin-facing fields for a subscription plan.
// MonthlyPrice is in minor currency units.
type PlanRequest struct {
	Code          string `json:"code" binding:"required,min=1,max=50"`
	Name          string `json:"name" binding:"required,min=1,max=100"`
	Description   string `json:"description" binding:"max=500"`
	MonthlyPrice  int64  `json:"monthly_price" binding:"min=0"`
	StripePriceID string `json:"stripe_price_id" binding:"max=100"`
}

// AssignFeatureRequest grants a feature to a plan. A nil limit means
// unlimited.
type AssignFeatureRequest struct {
	FeatureID string `json:"feature_id" binding:"required,uuid"`
	Limit     *int64 `json:"limit"`
}

// FeatureRequest carries the admin-facing fields for a meterable feature
type FeatureRequest struct {
	Code        string `json:"code" binding:"required,min=1,max=50"`
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// AddonRequest carries the admin-facing fields for a purchasable addon
type AddonRequest struct {
	Code      string `json:"code" binding:"required,min=1,max=50"`
	Name      string `json:"name" binding:"required,min=1,max=100"`
	Price     int64  `json:"price" binding:"min=0"`
	Recurring bool   `json:"recurring"`
}

// CarrierRequest registers a shipping carrier
type CarrierRequest struct {
	Code string `json:"code" binding:"required,min=1,max=20"`
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// CreatePlan creates a subscription plan. Admin only.
func (h *CatalogHandler) CreatePlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), catalogapp.PlanInput{
		Code:          req.Code,
		Name:          req.Name,
		Description:   req.Description,
		MonthlyPrice:  req.MonthlyPrice,
		StripePriceID: req.StripePriceID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, plan)
}

// UpdatePlan rewrites a plan's details. The code is immutable. Admin only.
func (h *CatalogHandler) UpdatePlan(c *gin.Context) {
	planID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	plan, err := h.planService.UpdatePlan(c.Request.Context(), planID, catalogapp.PlanInput{
		Code:          req.Code,
		Name:          req.Name,
		Description:   req.Description,
		MonthlyPrice:  req.MonthlyPrice,
		StripePriceID: req.StripePriceID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, plan)
}

// DeletePlan soft-deletes a plan. Existing subscriptions keep their
// entitlements. Admin only.
func (h *CatalogHandler) DeletePlan(c *gin.Context) {
	planID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	if err := h.planService.DeletePlan(c.Request.Context(), planID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// GetPlan returns a single plan
func (h *CatalogHandler) GetPlan(c *gin.Context) {
	planID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	plan, err := h.planService.GetPlan(c.Request.Context(), planID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, plan)
}

// ListPlans returns plans, paginated
func (h *CatalogHandler) ListPlans(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	page, err := h.planService.ListPlans(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// AssignFeature grants or re-limits a feature on a plan. Admin only.
func (h *CatalogHandler) AssignFeature(c *gin.Context) {
	planID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	var req AssignFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	featureID, err := uuid.Parse(req.FeatureID)
	if err != nil {
		h.BadRequest(c, "Invalid feature ID format")
		return
	}

	grant, err := h.planService.AssignFeature(c.Request.Context(), catalogapp.AssignFeatureInput{
		PlanID:    planID,
		FeatureID: featureID,
		Limit:     req.Limit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, grant)
}

// RemoveFeature revokes a feature grant from a plan. Admin only.
func (h *CatalogHandler) RemoveFeature(c *gin.Context) {
	planID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	featureID, err := pathUUID(c, "featureId")
	if err != nil {
		h.BadRequest(c, "Invalid feature ID format")
		return
	}

	if err := h.planService.RemoveFeature(c.Request.Context(), planID, featureID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListPlanFeatures returns a plan's feature grants with the feature
// definitions joined in
func (h *CatalogHandler) ListPlanFeatures(c *gin.Context) {
	planID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	views, err := h.planService.ListPlanFeatures(c.Request.Context(), planID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, views)
}

// CreateFeature defines a meterable feature. Admin only.
func (h *CatalogHandler) CreateFeature(c *gin.Context) {
	var req FeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	feature, err := h.featureService.CreateFeature(c.Request.Context(), catalogapp.FeatureInput{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, feature)
}

// DeleteFeature soft-deletes a feature definition. Admin only.
func (h *CatalogHandler) DeleteFeature(c *gin.Context) {
	featureID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid feature ID format")
		return
	}

	if err := h.featureService.DeleteFeature(c.Request.Context(), featureID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListFeatures returns feature definitions, paginated
func (h *CatalogHandler) ListFeatures(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	page, err := h.featureService.ListFeatures(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// CreateAddon defines a purchasable addon. Admin only.
func (h *CatalogHandler) CreateAddon(c *gin.Context) {
	var req AddonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	addon, err := h.addonService.CreateAddon(c.Request.Context(), catalogapp.AddonInput{
		Code:      req.Code,
		Name:      req.Name,
		Price:     req.Price,
		Recurring: req.Recurring,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, addon)
}

// DeleteAddon retires an addon. Admin only.
func (h *CatalogHandler) DeleteAddon(c *gin.Context) {
	addonID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid addon ID format")
		return
	}

	if err := h.addonService.DeleteAddon(c.Request.Context(), addonID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListAddons returns addons, paginated
func (h *CatalogHandler) ListAddons(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	page, err := h.addonService.ListAddons(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// CreateCarrier registers a shipping carrier. Admin only.
func (h *CatalogHandler) CreateCarrier(c *gin.Context) {
	var req CarrierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	carrier, err := h.carrierService.CreateCarrier(c.Request.Context(), catalogapp.CarrierInput{
		Code: req.Code,
		Name: req.Name,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, carrier)
}

// DeleteCarrier retires a carrier. Admin only.
func (h *CatalogHandler) DeleteCarrier(c *gin.Context) {
	carrierID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid carrier ID format")
		return
	}

	if err := h.carrierService.DeleteCarrier(c.Request.Context(), carrierID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListCarriers returns carriers, paginated
func (h *CatalogHandler) ListCarriers(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	page, err := h.carrierService.ListCarriers(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
