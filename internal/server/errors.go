package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/johnwalle/pharma-stock-api/internal/auth/domain"
	medicinedomain "github.com/johnwalle/pharma-stock-api/internal/medicine/domain"
	notificationdomain "github.com/johnwalle/pharma-stock-api/internal/notification/domain"
	reportdomain "github.com/johnwalle/pharma-stock-api/internal/report/domain"
	saledomain "github.com/johnwalle/pharma-stock-api/internal/sale/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidToken),
		errors.Is(err, authdomain.ErrTokenExpired):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case errors.Is(err, authdomain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_attempts",
			Message: "too many attempts",
		}
	case errors.Is(err, medicinedomain.ErrImageUploadFailed):
		return http.StatusBadGateway, errorPayload{
			Type:    "upstream_error",
			Message: "image upload failed",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, authdomain.ErrInvalidEmail),
		errors.Is(err, authdomain.ErrInvalidPassword),
		errors.Is(err, authdomain.ErrInvalidRole),
		errors.Is(err, reportdomain.ErrInvalidRange),
		errors.Is(err, saledomain.ErrEmptyBatch),
		errors.Is(err, saledomain.ErrInvalidQuantity),
		errors.Is(err, saledomain.ErrInvalidID),
		errors.Is(err, notificationdomain.ErrInvalidID),
		errors.Is(err, notificationdomain.ErrInvalidTitle),
		errors.Is(err, notificationdomain.ErrInvalidMessage):
		return true
	default:
		return isMedicineValidationError(err)
	}
}

func isMedicineValidationError(err error) bool {
	switch {
	case errors.Is(err, medicinedomain.ErrInvalidID),
		errors.Is(err, medicinedomain.ErrInvalidBrandName),
		errors.Is(err, medicinedomain.ErrInvalidGenericName),
		errors.Is(err, medicinedomain.ErrInvalidDosageForm),
		errors.Is(err, medicinedomain.ErrInvalidStrength),
		errors.Is(err, medicinedomain.ErrInvalidUnitType),
		errors.Is(err, medicinedomain.ErrInvalidBatchNumber),
		errors.Is(err, medicinedomain.ErrInvalidPrescriptionStatus),
		errors.Is(err, medicinedomain.ErrInvalidStoreQuantity),
		errors.Is(err, medicinedomain.ErrInvalidSubUnitQuantity),
		errors.Is(err, medicinedomain.ErrInvalidPurchaseCost),
		errors.Is(err, medicinedomain.ErrInvalidSellingPrice),
		errors.Is(err, medicinedomain.ErrInvalidReorderThreshold),
		errors.Is(err, medicinedomain.ErrInvalidExpiryDate),
		errors.Is(err, medicinedomain.ErrInvalidReceivedDate),
		errors.Is(err, medicinedomain.ErrInvalidQuantity),
		errors.Is(err, medicinedomain.ErrImageRequired):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, medicinedomain.ErrNotFound),
		errors.Is(err, saledomain.ErrMedicineNotFound),
		errors.Is(err, notificationdomain.ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, medicinedomain.ErrDuplicateBatch),
		errors.Is(err, medicinedomain.ErrInsufficientStoreStock),
		errors.Is(err, medicinedomain.ErrConcurrentUpdate),
		errors.Is(err, saledomain.ErrInsufficientDispenserStock),
		errors.Is(err, saledomain.ErrMedicineExpired),
		errors.Is(err, saledomain.ErrConcurrentUpdate):
		return true
	default:
		return false
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, medicinedomain.ErrDuplicateBatch):
		return "a medicine with this brand, strength and batch number already exists"
	case errors.Is(err, medicinedomain.ErrInsufficientStoreStock):
		return "insufficient store stock"
	case errors.Is(err, saledomain.ErrInsufficientDispenserStock):
		return "insufficient dispenser stock"
	case errors.Is(err, saledomain.ErrMedicineExpired):
		return "medicine is expired"
	case errors.Is(err, medicinedomain.ErrConcurrentUpdate),
		errors.Is(err, saledomain.ErrConcurrentUpdate):
		return "conflicting concurrent update, retry the request"
	default:
		return "conflict"
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}
