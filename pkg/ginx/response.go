package ginx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Business meta codes carried with HTTP 200.
const (
	// CodeProvisional: the action was applied locally but the order store
	// rejected it; the data is the provisional order.
	CodeProvisional = 3002
	// CodeNotifyFailed: the action succeeded but the customer notification
	// did not go out.
	CodeNotifyFailed = 3003
)

// Response is the envelope of every API answer.
type Response struct {
	Meta Meta        `json:"meta"`
	Data interface{} `json:"data,omitempty"`
}

// Meta describes the outcome.
type Meta struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail points at one invalid request field.
type ErrorDetail struct {
	Path string `json:"path"`
	Info string `json:"info"`
}

// Success answers 200.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Meta: Meta{
			Code:    200,
			Message: "OK",
		},
		Data: data,
	})
}

// Error answers httpCode with message.
func Error(c *gin.Context, httpCode int, message string) {
	c.JSON(httpCode, Response{
		Meta: Meta{
			Code:    httpCode,
			Message: message,
		},
	})
}

// ErrorWithDetails answers httpCode with field details.
func ErrorWithDetails(c *gin.Context, httpCode int, message string, details []ErrorDetail) {
	c.JSON(httpCode, Response{
		Meta: Meta{
			Code:    httpCode,
			Message: message,
			Details: details,
		},
	})
}

// Provisional answers 200 with CodeProvisional and the locally applied data.
func Provisional(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Meta: Meta{
			Code:    CodeProvisional,
			Message: message,
		},
		Data: data,
	})
}

// NotifyFailed answers 200 with CodeNotifyFailed and the updated data.
func NotifyFailed(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Meta: Meta{
			Code:    CodeNotifyFailed,
			Message: message,
		},
		Data: data,
	})
}

// BadRequest answers 400.
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// BadRequestWithValidation answers 400 listing each failed field.
func BadRequestWithValidation(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]ErrorDetail, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			details = append(details, ErrorDetail{
				Path: fieldErr.Namespace(),
				Info: getValidationErrorMessage(fieldErr),
			})
		}
		ErrorWithDetails(c, http.StatusBadRequest, "Validation failed", details)
		return
	}

	BadRequest(c, err.Error())
}

// NotFound answers 404.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// Conflict answers 409.
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

// InternalError answers 500.
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

func getValidationErrorMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return fieldErr.Field() + " is required"
	case "min":
		return fieldErr.Field() + " must be at least " + fieldErr.Param()
	case "gt":
		return fieldErr.Field() + " must be greater than " + fieldErr.Param()
	case "gte":
		return fieldErr.Field() + " must be at least " + fieldErr.Param()
	case "oneof":
		return fieldErr.Field() + " must be one of: " + fieldErr.Param()
	default:
		return fieldErr.Field() + " is invalid"
	}
}
