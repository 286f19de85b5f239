package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	bookingRepo "roamly/database/repository/booking"
	"roamly/models"
	bookingsvc "roamly/services/booking"
	"roamly/utils"
)

// BookingHandler serves booking lookups and lifecycle operations.
type BookingHandler struct {
	Ledger bookingsvc.Ledger
	Repo   bookingRepo.BookingRepository
	Logger *zap.Logger
}

func NewBookingHandler(ledger bookingsvc.Ledger, repo bookingRepo.BookingRepository, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Ledger: ledger, Repo: repo, Logger: logger}
}

// List handles GET /api/bookings?userId=...
func (h *BookingHandler) List(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		utils.JSONError(c, http.StatusBadRequest, KindValidation, "userId query parameter is required", "")
		return
	}
	bookings, err := h.Repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// Get handles GET /api/bookings/:id.
func (h *BookingHandler) Get(c *gin.Context) {
	b, err := h.Ledger.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type cancelRequest struct {
	Actor  string `json:"actor" binding:"required"`
	Reason string `json:"reason"`
}

// Cancel handles POST /api/bookings/:id/cancel.
func (h *BookingHandler) Cancel(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, KindValidation, "invalid request payload", err.Error())
		return
	}

	b, err := h.Ledger.Cancel(c.Request.Context(), c.Param("id"), req.Actor, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Logger.Info("booking cancelled",
		zap.String("bookingID", b.ID),
		zap.String("actor", req.Actor))
	c.JSON(http.StatusOK, b)
}

// NoShow handles POST /api/bookings/:id/no-show.
func (h *BookingHandler) NoShow(c *gin.Context) {
	b, err := h.Ledger.MarkNoShow(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type reviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// AttachReview handles POST /api/bookings/:id/review.
func (h *BookingHandler) AttachReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, KindValidation, "invalid request payload", err.Error())
		return
	}

	b, err := h.Ledger.AttachReview(c.Request.Context(), c.Param("id"), models.Review{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type communicationRequest struct {
	Sender  string `json:"sender" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// AppendCommunication handles POST /api/bookings/:id/messages.
func (h *BookingHandler) AppendCommunication(c *gin.Context) {
	var req communicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, KindValidation, "invalid request payload", err.Error())
		return
	}

	b, err := h.Ledger.AppendCommunication(c.Request.Context(), c.Param("id"), req.Sender, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
