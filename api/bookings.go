package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aviatio/flightdeck/internal/auth"
	"github.com/aviatio/flightdeck/internal/domain"
	"github.com/aviatio/flightdeck/internal/service/booking"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service booking.BookingUseCase
	logger  *zap.Logger
}

func NewBookingHandler(service booking.BookingUseCase, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{service: service, logger: logger}
}

type bookFlightRequest struct {
	Passengers       int    `json:"passengers"`
	PassengerName    string `json:"passenger_name" binding:"required"`
	PassengerSurname string `json:"passenger_surname" binding:"required"`
	PassengerDOB     string `json:"passenger_dob"`
	MemberNumber     string `json:"member_number"`
	BecomeMember     bool   `json:"become_member"`
	UsePoints        bool   `json:"use_points"`
}

// Book handles POST /flights/:id/book. The booking user always comes from
// the token, never from the body.
func (h *BookingHandler) Book(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}

	flightID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, h.logger, domain.NewValidationError("invalid flight id"))
		return
	}

	var req bookFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, domain.NewValidationError("invalid request body: %v", err))
		return
	}

	input := booking.BookFlightInput{
		FlightID:         flightID,
		UserID:           principal.ID,
		Email:            principal.Email,
		Passengers:       req.Passengers,
		PassengerName:    req.PassengerName,
		PassengerSurname: req.PassengerSurname,
		MemberNumber:     req.MemberNumber,
		BecomeMember:     req.BecomeMember,
		UsePoints:        req.UsePoints,
	}
	if req.PassengerDOB != "" {
		dob, err := time.Parse(time.DateOnly, req.PassengerDOB)
		if err != nil {
			respondError(c, h.logger, domain.NewValidationError("invalid passenger_dob format, expected YYYY-MM-DD"))
			return
		}
		input.PassengerDOB = &dob
	}

	result, err := h.service.BookFlight(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// List handles GET /bookings for the authenticated user.
func (h *BookingHandler) List(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.service.ListUserBookings(c.Request.Context(), principal.ID, page, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
