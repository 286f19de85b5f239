package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roamly/middleware"
	"roamly/models"
	"roamly/services/checkout"
	"roamly/utils"
)

// CheckoutHandler exposes the checkout coordinator over HTTP.
type CheckoutHandler struct {
	Coordinator *checkout.Coordinator
	Logger      *zap.Logger
}

func NewCheckoutHandler(coord *checkout.Coordinator, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{Coordinator: coord, Logger: logger}
}

type checkoutRequest struct {
	UserID        string             `json:"userId" binding:"required"`
	Contact       models.ContactInfo `json:"contact"`
	PaymentMethod string             `json:"paymentMethod" binding:"required"`
	Lines         []models.CartLine  `json:"lines" binding:"required"`
}

// Checkout handles POST /api/checkout.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, KindValidation, "invalid request payload", err.Error())
		return
	}

	cart := models.Cart{UserID: req.UserID, Lines: req.Lines}
	user := checkout.User{
		ID:      req.UserID,
		Contact: req.Contact,
		IP:      middleware.ClientIP(c),
	}

	conf, err := h.Coordinator.Checkout(c.Request.Context(), cart, user, req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Logger.Info("checkout accepted",
		zap.String("userID", req.UserID),
		zap.Int("bookings", len(conf.BookingIDs)))
	c.JSON(http.StatusAccepted, conf)
}
