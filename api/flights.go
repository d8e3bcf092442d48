package api

import (
	"strconv"
	"time"

	"github.com/aviatio/flightdeck/internal/domain"
	"github.com/aviatio/flightdeck/internal/service/flights"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FlightHandler struct {
	service flights.FlightUseCase
	logger  *zap.Logger
}

func NewFlightHandler(service flights.FlightUseCase, logger *zap.Logger) *FlightHandler {
	return &FlightHandler{service: service, logger: logger}
}

// Search handles GET /flights/search. Round-trip responses carry outbound
// and return legs; one-way responses are a flat page.
func (h *FlightHandler) Search(c *gin.Context) {
	params := flights.SearchParams{
		Origin:      c.Query("from"),
		Destination: c.Query("to"),
	}

	if raw := c.Query("date"); raw != "" {
		date, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			respondError(c, h.logger, domain.NewValidationError("invalid date format, expected YYYY-MM-DD"))
			return
		}
		params.DepartureDate = date
	}
	if raw := c.Query("returnDate"); raw != "" {
		date, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			respondError(c, h.logger, domain.NewValidationError("invalid returnDate format, expected YYYY-MM-DD"))
			return
		}
		params.ReturnDate = &date
	}

	params.Passengers, _ = strconv.Atoi(c.DefaultQuery("passengers", "1"))
	params.FlexibleDates = c.Query("flexible") == "true"
	params.DirectOnly = c.Query("direct") == "true"
	params.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	params.PageSize, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.service.Search(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(200, result)
}

func (h *FlightHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, h.logger, domain.NewValidationError("invalid flight id"))
		return
	}

	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(200, flight)
}

type createFlightRequest struct {
	FlightCode string  `json:"flight_code" binding:"required"`
	FromCity   string  `json:"from_city" binding:"required"`
	ToCity     string  `json:"to_city" binding:"required"`
	FlightDate string  `json:"flight_date" binding:"required"`
	Duration   string  `json:"duration" binding:"required"`
	Price      float64 `json:"price"`
	Capacity   int     `json:"capacity" binding:"required"`
}

func (h *FlightHandler) Create(c *gin.Context) {
	var req createFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, domain.NewValidationError("invalid request body: %v", err))
		return
	}
	date, err := time.Parse(time.DateOnly, req.FlightDate)
	if err != nil {
		respondError(c, h.logger, domain.NewValidationError("invalid flight_date format, expected YYYY-MM-DD"))
		return
	}

	flight, err := h.service.Create(c.Request.Context(), flights.CreateFlightInput{
		Code:        req.FlightCode,
		Origin:      req.FromCity,
		Destination: req.ToCity,
		Date:        date,
		Duration:    req.Duration,
		Price:       req.Price,
		Capacity:    req.Capacity,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(201, flight)
}

func (h *FlightHandler) ListAirports(c *gin.Context) {
	airports, err := h.service.ListAirports(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(200, gin.H{"data": airports})
}

func (h *FlightHandler) ListAirlines(c *gin.Context) {
	airlines, err := h.service.ListAirlines(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(200, gin.H{"data": airlines})
}
