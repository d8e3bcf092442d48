package api

import (
	"net/http"
	"time"

	"github.com/aviatio/flightdeck/internal/domain"
	"github.com/aviatio/flightdeck/internal/service/loyalty"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MilesHandler struct {
	service loyalty.LoyaltyUseCase
	logger  *zap.Logger
}

func NewMilesHandler(service loyalty.LoyaltyUseCase, logger *zap.Logger) *MilesHandler {
	return &MilesHandler{service: service, logger: logger}
}

type addMilesRequest struct {
	MemberNumber string `json:"member_number" binding:"required"`
	Points       int    `json:"points" binding:"required"`
	FlightID     *int64 `json:"flight_id"`
	Date         string `json:"date"`
}

// Add handles POST /miles/add: partner airlines and support staff credit
// points through this endpoint.
func (h *MilesHandler) Add(c *gin.Context) {
	var req addMilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, domain.NewValidationError("invalid request body: %v", err))
		return
	}

	input := loyalty.CreditInput{
		MemberNumber: req.MemberNumber,
		Points:       req.Points,
		FlightID:     req.FlightID,
	}
	if req.Date != "" {
		date, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			respondError(c, h.logger, domain.NewValidationError("invalid date format, expected YYYY-MM-DD"))
			return
		}
		input.Date = &date
	}

	txn, err := h.service.Credit(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

func (h *MilesHandler) GetMember(c *gin.Context) {
	member, err := h.service.GetMemberByNumber(c.Request.Context(), c.Param("memberNumber"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *MilesHandler) GetMemberByUser(c *gin.Context) {
	member, err := h.service.GetMemberByUserID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, member)
}
