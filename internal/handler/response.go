package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tidewater/service-booking/internal/domain"
)

// Success writes a 200 response with the data payload.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Created writes a 201 response with the data payload.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": domain.CodeValidation, "message": message}})
}

// Error maps a domain error to an HTTP response. Unknown errors become 500s
// without leaking internals.
func Error(c *gin.Context, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "INTERNAL", "message": "internal server error"}})
		return
	}
	c.JSON(statusFor(de.Code), gin.H{"error": gin.H{"code": de.Code, "message": de.Message}})
}

func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeValidation, domain.CodeInvalidInterval:
		return http.StatusBadRequest
	case domain.CodeNotFound, domain.CodeCouponNotFound:
		return http.StatusNotFound
	case domain.CodeCouponInactive, domain.CodeCouponExpired, domain.CodeCouponExhausted,
		domain.CodeCouponNotApplicable, domain.CodeMinOrderNotMet:
		return http.StatusUnprocessableEntity
	case domain.CodeConflict, domain.CodeConfirmationStale:
		return http.StatusConflict
	case domain.CodeUnavailable, domain.CodeCalendarUnavailable, domain.CodeSequenceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
