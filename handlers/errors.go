package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	bookingRepo "roamly/database/repository/booking"
	"roamly/services/availability"
	bookingsvc "roamly/services/booking"
	"roamly/services/checkout"
	"roamly/services/pricing"
	"roamly/utils"
)

// Error kinds exposed to callers. Every user-visible failure carries one of
// these plus a human message.
const (
	KindValidation        = "validation"
	KindCapacity          = "capacity"
	KindPricing           = "pricing"
	KindFraudDenied       = "fraud_denied"
	KindInvalidTransition = "invalid_transition"
	KindNotFound          = "not_found"
	KindFrozen            = "frozen"
	KindInternal          = "internal"
)

// respondError translates the service error taxonomy into HTTP semantics.
func respondError(c *gin.Context, err error) {
	var cartErr *checkout.InvalidCartError
	if errors.As(err, &cartErr) {
		utils.JSONError(c, http.StatusBadRequest, KindValidation, "invalid cart", cartErr.Message)
		return
	}

	var capErr *availability.CapacityError
	if errors.As(err, &capErr) {
		// Conflict and exhaustion are both retryable-by-caller 409s; the
		// kind field tells clients whether to retry.
		utils.JSONError(c, http.StatusConflict, KindCapacity, "capacity unavailable", capErr.Message)
		return
	}

	var priceErr *pricing.Error
	if errors.As(err, &priceErr) {
		// Catalog data inconsistency, not user-correctable.
		utils.JSONError(c, http.StatusInternalServerError, KindPricing, "pricing failed", priceErr.Message)
		return
	}

	var fraudErr *checkout.FraudDeniedError
	if errors.As(err, &fraudErr) {
		utils.JSONError(c, http.StatusForbidden, KindFraudDenied, "checkout denied", "this checkout cannot be completed")
		return
	}

	var transErr *bookingsvc.InvalidTransitionError
	if errors.As(err, &transErr) {
		// A forbidden transition is a defect or a race, never silent.
		utils.GetLogger().Error("invalid transition attempted", zap.Error(transErr))
		utils.JSONError(c, http.StatusConflict, KindInvalidTransition, "operation not allowed in current state", transErr.Error())
		return
	}

	switch {
	case errors.Is(err, bookingRepo.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, KindNotFound, "booking not found", "")
	case errors.Is(err, bookingsvc.ErrFrozen):
		utils.JSONError(c, http.StatusConflict, KindFrozen, "booking is frozen pending operator review", "")
	case errors.Is(err, bookingsvc.ErrServiceNotEnded), errors.Is(err, bookingsvc.ErrReviewNotAllowed):
		utils.JSONError(c, http.StatusBadRequest, KindValidation, err.Error(), "")
	default:
		utils.GetLogger().Error("unhandled service error", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, KindInternal, "internal error", "")
	}
}
