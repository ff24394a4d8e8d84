package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cloud.google.com/go/spanner"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/pricing-service/internal/app/price/domain"
	"github.com/light-bringer/pricing-service/internal/pkg/logger"
)

// Error codes
const (
	ErrCodeBadRequest           = "BAD_REQUEST"
	ErrCodeValidationFailed     = "VALIDATION_FAILED"
	ErrCodePriceValidation      = "PRICE_VALIDATION_FAILED"
	ErrCodePendingFuturePrice   = "PENDING_FUTURE_PRICE"
	ErrCodeConcurrentUpdate     = "CONCURRENT_MODIFICATION"
	ErrCodeNoPendingFuturePrice = "NO_PENDING_FUTURE_PRICE"
	ErrCodePriceNotFound        = "PRICE_NOT_FOUND"
	ErrCodeTimeout              = "TIMEOUT"
	ErrCodeServiceUnavailable   = "SERVICE_UNAVAILABLE"
	ErrCodeInternal             = "INTERNAL_ERROR"
)

const internalErrorMessage = "An unexpected error occurred"

// respondError writes the error envelope for err and logs server-side failures.
func respondError(c *gin.Context, err error) {
	status, info := classify(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed", zap.Error(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, Response{
		Success:   false,
		Error:     info,
		RequestID: logger.RequestID(c.Request.Context()),
	})
}

// classify maps an error to a status code and a client-safe description.
func classify(err error) (int, *ErrorInfo) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, &ErrorInfo{
			Code:     ErrCodePriceValidation,
			Message:  domain.ErrPriceValidation.Error(),
			Errors:   verr.Errors,
			Warnings: verr.Warnings,
		}
	case errors.Is(err, domain.ErrPendingFuturePrice):
		return http.StatusConflict, &ErrorInfo{
			Code:    ErrCodePendingFuturePrice,
			Message: domain.ErrPendingFuturePrice.Error() + "; cancel the pending future price first",
		}
	case errors.Is(err, domain.ErrConcurrentModification):
		return http.StatusConflict, &ErrorInfo{Code: ErrCodeConcurrentUpdate, Message: clientMessage(err)}
	case errors.Is(err, domain.ErrNoPendingFuturePrice):
		return http.StatusNotFound, &ErrorInfo{Code: ErrCodeNoPendingFuturePrice, Message: domain.ErrNoPendingFuturePrice.Error()}
	case errors.Is(err, domain.ErrPriceNotFound):
		return http.StatusNotFound, &ErrorInfo{Code: ErrCodePriceNotFound, Message: domain.ErrPriceNotFound.Error()}
	case errors.Is(err, domain.ErrInvalidScope),
		errors.Is(err, domain.ErrNoPriceFields),
		errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, &ErrorInfo{Code: ErrCodeBadRequest, Message: clientMessage(err)}
	case errors.Is(err, context.DeadlineExceeded), spanner.ErrCode(err) == codes.DeadlineExceeded:
		return http.StatusGatewayTimeout, &ErrorInfo{Code: ErrCodeTimeout, Message: "the request timed out"}
	case spanner.ErrCode(err) == codes.Unavailable:
		return http.StatusServiceUnavailable, &ErrorInfo{Code: ErrCodeServiceUnavailable, Message: "storage is unavailable"}
	default:
		return http.StatusInternalServerError, &ErrorInfo{Code: ErrCodeInternal, Message: internalErrorMessage}
	}
}

// clientMessage strips the transaction wrapper from request errors.
func clientMessage(err error) string {
	return strings.TrimPrefix(err.Error(), "transaction failed: ")
}

// respondBindError reports a malformed request body or query string.
func respondBindError(c *gin.Context, err error) {
	info := &ErrorInfo{Code: ErrCodeValidationFailed, Message: "request validation failed"}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			info.Details = append(info.Details, ValidationDetail{
				Field:   fe.Field(),
				Message: describeFieldError(fe),
			})
		}
	} else {
		info.Code = ErrCodeBadRequest
		info.Message = err.Error()
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, Response{
		Success:   false,
		Error:     info,
		RequestID: logger.RequestID(c.Request.Context()),
	})
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "price_field":
		return fmt.Sprintf("%v is not a known price field", fe.Value())
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed on " + fe.Tag()
	}
}
