package router

import (
	"github.com/gin-gonic/gin"

	"github.com/mailriver/backend/internal/domain/identity"
	"github.com/mailriver/backend/internal/interfaces/http/handler"
	"github.com/mailriver/backend/internal/interfaces/http/middleware"
)

// Handlers bundles every HTTP handler the API exposes
type Handlers struct {
	Auth           *handler.AuthHandler
	User           *handler.UserHandler
	Workspace      *handler.WorkspaceHandler
	Mailbox        *handler.MailboxHandler
	MailItem       *handler.MailItemHandler
	Address        *handler.AddressHandler
	Location       *handler.LocationHandler
	Catalog        *handler.CatalogHandler
	ShippingOption *handler.ShippingOptionHandler
	Forwarding     *handler.ForwardingHandler
	Billing        *handler.BillingHandler
	StripeWebhook  *handler.StripeWebhookHandler
}

// Setup registers every API route under /api/v1. Three tiers: public
// (registration, login, webhooks), workspace (any authenticated user),
// and the mail-handler and admin groups gated by role. authn runs on
// every protected group; extra middleware (span annotation) runs after
// it so claims are available.
func Setup(engine *gin.Engine, h Handlers, authn gin.HandlerFunc, extra ...gin.HandlerFunc) {
	api := engine.Group("/api/v1")

	// Public routes. The Stripe webhook authenticates by signature.
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.POST("/auth/password-reset/request", h.Auth.RequestPasswordReset)
	api.POST("/auth/password-reset/confirm", h.Auth.ConfirmPasswordReset)
	api.POST("/auth/verify-email", h.Auth.VerifyEmail)
	api.POST("/billing/webhooks/stripe", h.StripeWebhook.Handle)

	// Workspace routes: any authenticated member of the tenancy.
	ws := api.Group("", append([]gin.HandlerFunc{authn}, extra...)...)
	{
		ws.POST("/auth/logout", h.Auth.Logout)
		ws.POST("/auth/change-password", h.Auth.ChangePassword)

		ws.GET("/workspace", h.Workspace.Get)
		ws.PUT("/workspace", h.Workspace.Rename)
		ws.DELETE("/workspace", h.Workspace.Delete)

		ws.POST("/workspace/members", h.User.Create)
		ws.GET("/workspace/members", h.User.List)
		ws.GET("/workspace/members/:id", h.User.Get)
		ws.PUT("/workspace/members/:id/suspend", h.User.Suspend)

		ws.POST("/addresses", h.Address.Create)
		ws.GET("/addresses", h.Address.List)
		ws.GET("/addresses/:id", h.Address.Get)
		ws.PUT("/addresses/:id", h.Address.Update)
		ws.PUT("/addresses/:id/default", h.Address.SetDefault)
		ws.DELETE("/addresses/:id", h.Address.Delete)

		ws.POST("/mailboxes", h.Mailbox.Open)
		ws.GET("/mailboxes", h.Mailbox.List)
		ws.GET("/mailboxes/:id", h.Mailbox.Get)
		ws.PUT("/mailboxes/:id/close", h.Mailbox.Close)
		ws.GET("/mailboxes/:id/items", h.MailItem.ListByMailbox)

		ws.GET("/mail-items/:id", h.MailItem.Get)
		ws.GET("/mail-items/:id/scan-url", h.MailItem.GetScanURL)
		ws.PUT("/mail-items/:id/shred", h.MailItem.Shred)
		ws.PUT("/mail-items/:id/junk", h.MailItem.MarkJunk)
		ws.PUT("/mail-items/:id/hold", h.MailItem.Hold)
		ws.PUT("/mail-items/:id/release", h.MailItem.ReleaseHold)

		ws.GET("/locations", h.Location.List)
		ws.GET("/locations/:id", h.Location.Get)
		ws.GET("/locations/:id/shipping-options", h.ShippingOption.ListLocationOptions)

		ws.GET("/plans", h.Catalog.ListPlans)
		ws.GET("/plans/:id", h.Catalog.GetPlan)
		ws.GET("/plans/:id/features", h.Catalog.ListPlanFeatures)
		ws.GET("/addons", h.Catalog.ListAddons)

		ws.POST("/forward/quote", h.Forwarding.Quote)
		ws.POST("/forward/requests", h.Forwarding.Create)
		ws.GET("/forward/requests", h.Forwarding.List)
		ws.GET("/forward/requests/:id", h.Forwarding.Get)
		ws.GET("/forward/requests/:id/track", h.Forwarding.Track)
		ws.PUT("/forward/requests/:id/cancel", h.Forwarding.Cancel)

		ws.GET("/billing/balance", h.Billing.GetBalance)
		ws.GET("/billing/transactions", h.Billing.ListTransactions)
		ws.GET("/billing/usage", h.Billing.GetUsage)
		ws.GET("/billing/entitlements", h.Billing.GetEntitlements)
		ws.GET("/billing/subscription", h.Billing.GetSubscription)
		ws.POST("/billing/subscription/checkout", h.Billing.StartSubscriptionCheckout)
		ws.PUT("/billing/subscription/plan", h.Billing.ChangePlan)
		ws.PUT("/billing/subscription/cancel", h.Billing.CancelSubscription)
		ws.PUT("/billing/subscription/resume", h.Billing.ResumeSubscription)
		ws.POST("/billing/topup/checkout", h.Billing.StartTopUpCheckout)
		ws.POST("/billing/portal", h.Billing.OpenBillingPortal)
	}

	// Mailroom staff routes.
	staff := api.Group("/mail-handler", append(append([]gin.HandlerFunc{authn}, extra...),
		middleware.RequireRoles(identity.UserRoleHandler, identity.UserRoleAdmin))...)
	{
		staff.POST("/mail-items", h.MailItem.Intake)
		staff.PUT("/mail-items/:id/dimensions", h.MailItem.RecordDimensions)
		staff.POST("/mail-items/:id/scan", h.MailItem.InitiateScan)
		staff.PUT("/mail-items/:id/scan/confirm", h.MailItem.ConfirmScan)
		staff.GET("/locations/:id/mail-items", h.MailItem.ListByLocation)
		staff.GET("/locations/:id/forward/requests", h.Forwarding.ListForLocation)
		staff.PUT("/forward/requests/:id/complete", h.Forwarding.Complete)
	}

	// Platform administration routes.
	admin := api.Group("/admin", append(append([]gin.HandlerFunc{authn}, extra...), middleware.RequireRoles(identity.UserRoleAdmin))...)
	{
		admin.POST("/locations", h.Location.Create)
		admin.PUT("/locations/:id", h.Location.Update)
		admin.PUT("/locations/:id/active", h.Location.SetActive)
		admin.DELETE("/locations/:id", h.Location.Delete)

		admin.POST("/locations/:id/shipping-options", h.ShippingOption.AssignToLocation)
		admin.PUT("/locations/:id/shipping-options/:optionId", h.ShippingOption.UpdateLocationPrice)
		admin.DELETE("/locations/:id/shipping-options/:optionId", h.ShippingOption.RemoveFromLocation)

		admin.POST("/plans", h.Catalog.CreatePlan)
		admin.PUT("/plans/:id", h.Catalog.UpdatePlan)
		admin.DELETE("/plans/:id", h.Catalog.DeletePlan)
		admin.POST("/plans/:id/features", h.Catalog.AssignFeature)
		admin.DELETE("/plans/:id/features/:featureId", h.Catalog.RemoveFeature)

		admin.POST("/features", h.Catalog.CreateFeature)
		admin.GET("/features", h.Catalog.ListFeatures)
		admin.DELETE("/features/:id", h.Catalog.DeleteFeature)

		admin.POST("/addons", h.Catalog.CreateAddon)
		admin.DELETE("/addons/:id", h.Catalog.DeleteAddon)

		admin.POST("/carriers", h.Catalog.CreateCarrier)
		admin.GET("/carriers", h.Catalog.ListCarriers)
		admin.DELETE("/carriers/:id", h.Catalog.DeleteCarrier)

		admin.POST("/shipping-options", h.ShippingOption.Create)
		admin.GET("/shipping-options", h.ShippingOption.List)
		admin.DELETE("/shipping-options/:id", h.ShippingOption.Delete)

		admin.PUT("/workspaces/:id/suspend", h.Workspace.AdminSuspend)
		admin.PUT("/workspaces/:id/activate", h.Workspace.AdminActivate)
	}
}
