package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"triplog/internal/repository"
	"triplog/internal/service"
	"triplog/pkg/response"
)

// LedgerHandler handles HTTP requests for the trip ledger.
type LedgerHandler struct {
	service *service.LedgerService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(service *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// GetTrips handles GET /api/v1/ledger/trips
func (h *LedgerHandler) GetTrips(c *gin.Context) {
	var filter repository.TripFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	trips, total, err := h.service.GetTrips(filter)
	if err != nil {
		response.InternalError(c, "Failed to get trips")
		return
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 100
	}
	totalPages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPages++
	}

	response.Success(c, gin.H{
		"data":       trips,
		"total":      total,
		"page":       filter.Page,
		"pageSize":   filter.PageSize,
		"totalPages": totalPages,
	})
}

// GetTripByID handles GET /api/v1/ledger/trips/:id
func (h *LedgerHandler) GetTripByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid trip ID")
		return
	}

	trip, err := h.service.GetTripByID(id)
	if err != nil {
		response.NotFound(c, "Trip not found")
		return
	}

	response.Success(c, trip)
}

// GetReport handles GET /api/v1/ledger/report
func (h *LedgerHandler) GetReport(c *gin.Context) {
	report, err := h.service.GetReport()
	if err != nil {
		response.InternalError(c, "Failed to assemble report")
		return
	}
	response.Success(c, report)
}

// GetSummary handles GET /api/v1/ledger/summary
func (h *LedgerHandler) GetSummary(c *gin.Context) {
	summary, err := h.service.GetSummary()
	if err != nil {
		response.InternalError(c, "Failed to summarize ledger")
		return
	}
	response.Success(c, summary)
}

// Refilter handles POST /api/v1/ledger/refilter
func (h *LedgerHandler) Refilter(c *gin.Context) {
	stats, err := h.service.Refilter()
	if err != nil {
		response.InternalError(c, "Failed to refilter ledger")
		return
	}
	response.Success(c, stats)
}
