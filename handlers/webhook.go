package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roamly/models"
	bookingsvc "roamly/services/booking"
	"roamly/utils"
)

// PaymentWebhookHandler receives asynchronous payment outcomes from the
// gateway. Delivery is at-least-once; RecordPayment absorbs replays.
type PaymentWebhookHandler struct {
	Ledger bookingsvc.Ledger
	Logger *zap.Logger
}

func NewPaymentWebhookHandler(ledger bookingsvc.Ledger, logger *zap.Logger) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{Ledger: ledger, Logger: logger}
}

// Handle processes POST /api/payments/webhook.
func (h *PaymentWebhookHandler) Handle(c *gin.Context) {
	var outcome models.PaymentOutcome
	if err := c.ShouldBindJSON(&outcome); err != nil {
		utils.JSONError(c, http.StatusBadRequest, KindValidation, "invalid webhook payload", err.Error())
		return
	}
	if outcome.BookingID == "" || outcome.PaymentRef == "" {
		utils.JSONError(c, http.StatusBadRequest, KindValidation, "bookingId and paymentRef are required", "")
		return
	}
	if outcome.Status != models.PaymentCompleted && outcome.Status != models.PaymentFailed {
		utils.JSONError(c, http.StatusBadRequest, KindValidation, "status must be completed or failed", "")
		return
	}

	b, err := h.Ledger.RecordPayment(c.Request.Context(), outcome)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Logger.Info("payment outcome recorded",
		zap.String("bookingID", b.ID),
		zap.String("paymentRef", outcome.PaymentRef),
		zap.String("outcome", outcome.Status))
	c.JSON(http.StatusOK, gin.H{"bookingId": b.ID, "status": b.Status, "paymentStatus": b.Payment.Status})
}
