// internal/interfaces/http/handlers/respond.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

// statusForKind maps domain error kinds to HTTP status codes.
func statusForKind(kind errs.Kind) int {
	switch kind {
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindForbidden, errs.KindPurchaseRequired:
		return http.StatusForbidden
	case errs.KindInsufficientStock, errs.KindOutOfStock,
		errs.KindAlreadyDelivered, errs.KindConflict:
		return http.StatusConflict
	case errs.KindInvalidPaymentMethod, errs.KindMissingPaymentReference,
		errs.KindInvalidPricing, errs.KindPriceMismatch,
		errs.KindEmptyCart, errs.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error envelope for a domain error. Internal errors
// get a generic message so details stay out of responses.
func respondError(c *gin.Context, err error) {
	kind := errs.KindOf(err)
	status := statusForKind(kind)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}

	c.JSON(status, gin.H{
		"error": message,
	})
}
