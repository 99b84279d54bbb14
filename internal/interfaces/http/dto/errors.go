package dto

import "net/http"

// Transport-level error codes
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeRateLimited  = "RATE_LIMIT_EXCEEDED"
)

// domainErrorStatus maps domain error codes to HTTP status codes.
// Codes not listed here fall back to 422: the request was well-formed
// but a business rule rejected it.
var domainErrorStatus = map[string]int{
	// Generic
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,
	ErrCodeRateLimited:  http.StatusTooManyRequests,

	// Lookups
	"USER_NOT_FOUND":      http.StatusNotFound,
	"WORKSPACE_NOT_FOUND": http.StatusNotFound,
	"PLAN_NOT_FOUND":      http.StatusNotFound,
	"ITEM_NOT_FOUND":      http.StatusNotFound,
	"SHIPMENT_NOT_FOUND":  http.StatusNotFound,

	// Uniqueness and concurrency
	"ALREADY_EXISTS":       http.StatusConflict,
	"ALREADY_ASSIGNED":     http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"EMAIL_TAKEN":          http.StatusConflict,
	"PRICE_CHANGED":        http.StatusConflict,

	// Validation-class domain errors
	"INVALID_INPUT":      http.StatusBadRequest,
	"INVALID_NAME":       http.StatusBadRequest,
	"INVALID_CODE":       http.StatusBadRequest,
	"INVALID_PRICE":      http.StatusBadRequest,
	"INVALID_LIMIT":      http.StatusBadRequest,
	"INVALID_KIND":       http.StatusBadRequest,
	"INVALID_ADDRESS":    http.StatusBadRequest,
	"INVALID_DIMENSIONS": http.StatusBadRequest,
	"INVALID_PASSWORD":   http.StatusBadRequest,
	"INVALID_EMAIL":      http.StatusBadRequest,
	"INVALID_ROLE":       http.StatusBadRequest,
	"INVALID_SCAN_KEY":   http.StatusBadRequest,
	"INVALID_AMOUNT":     http.StatusBadRequest,
	"INVALID_PMB":        http.StatusBadRequest,
	"INVALID_SIGNATURE":  http.StatusBadRequest,
	"AMOUNT_TOO_SMALL":   http.StatusBadRequest,

	// Authentication and sessions
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"TOKEN_INVALID":       http.StatusUnauthorized,
	"TOKEN_EXPIRED":       http.StatusUnauthorized,
	"TOKEN_REVOKED":       http.StatusUnauthorized,
	"TOKEN_USED":          http.StatusUnauthorized,
	"TOKEN_MAX_REFRESH":   http.StatusUnauthorized,
	"ACCOUNT_SUSPENDED":   http.StatusForbidden,
	"WORKSPACE_SUSPENDED": http.StatusForbidden,

	// Billing and entitlements
	"LIMIT_EXCEEDED":        http.StatusPaymentRequired,
	"NO_SUBSCRIPTION":       http.StatusPaymentRequired,
	"SUBSCRIPTION_INACTIVE": http.StatusPaymentRequired,
	"NO_BILLING_ACCOUNT":    http.StatusPaymentRequired,
	"PLAN_NOT_BILLABLE":     http.StatusPaymentRequired,

	// Upstream gateways
	"GATEWAY_ERROR":          http.StatusBadGateway,
	"GATEWAY_UNAVAILABLE":    http.StatusBadGateway,
	"GATEWAY_REQUEST_FAILED": http.StatusBadGateway,
	"LABEL_PURCHASE_FAILED":  http.StatusBadGateway,
	"RATE_UNAVAILABLE":       http.StatusBadGateway,
	"UPLOAD_URL_FAILED":      http.StatusBadGateway,
	"DOWNLOAD_URL_FAILED":    http.StatusBadGateway,
	"STORAGE_CHECK_FAILED":   http.StatusBadGateway,
}

// GetHTTPStatus resolves the HTTP status for a domain error code
func GetHTTPStatus(code string) int {
	if status, ok := domainErrorStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}
