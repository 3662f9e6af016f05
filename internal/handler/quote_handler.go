package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/tidewater/service-booking/internal/application"
)

// QuoteHandler handles HTTP requests for availability, quoting and booking
// confirmation.
type QuoteHandler struct {
	service   *application.QuoteService
	refPrefix string
	refWidth  int
}

// NewQuoteHandler creates a new QuoteHandler. refPrefix and refWidth control
// how raw sequence values are rendered as customer-facing reference numbers.
func NewQuoteHandler(service *application.QuoteService, refPrefix string, refWidth int) *QuoteHandler {
	return &QuoteHandler{service: service, refPrefix: refPrefix, refWidth: refWidth}
}

// RegisterRoutes registers all quote routes on the given router group.
func (h *QuoteHandler) RegisterRoutes(r *gin.RouterGroup) {
	v1 := r.Group("/api/v1")
	{
		v1.GET("/availability", h.CheckAvailability)
		v1.POST("/quotes", h.ComputeQuote)
		v1.POST("/bookings", h.ConfirmBooking)
	}
}

// CheckAvailability handles GET /api/v1/availability.
func (h *QuoteHandler) CheckAvailability(c *gin.Context) {
	date := c.Query("date")
	start := c.Query("start")
	end := c.Query("end")
	if date == "" || start == "" || end == "" {
		BadRequest(c, "date, start and end query parameters are required")
		return
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), date, start, end)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, result)
}

// ComputeQuote handles POST /api/v1/quotes.
func (h *QuoteHandler) ComputeQuote(c *gin.Context) {
	var req application.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	quote, err := h.service.ComputeQuote(c.Request.Context(), req)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, quote)
}

// confirmResponse decorates the confirmation with the formatted reference
// number. The engine hands back the raw sequence value; formatting is a
// presentation concern.
type confirmResponse struct {
	ReferenceNumber string                       `json:"reference_number"`
	Confirmation    *application.ConfirmationDTO `json:"confirmation"`
}

// ConfirmBooking handles POST /api/v1/bookings.
func (h *QuoteHandler) ConfirmBooking(c *gin.Context) {
	var req application.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ConfirmBooking(c.Request.Context(), req)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, confirmResponse{
		ReferenceNumber: fmt.Sprintf("%s-%0*d", h.refPrefix, h.refWidth, result.Reference.Value),
		Confirmation:    result,
	})
}
