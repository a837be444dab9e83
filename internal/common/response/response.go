package response

import (
	"errors"
	"net/http"

	"github.com/cabgo/rider-web/internal/common/domain"
	"github.com/gin-gonic/gin"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody carries the machine-readable code and the user-facing message.
type ErrorBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

// LoginPath is where unauthenticated riders are sent.
const LoginPath = "/login"

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{Error: &ErrorBody{
		Code:    string(domain.CodeValidation),
		Message: message,
	}})
}

// Error writes err using the status that matches its AppError code.
// Errors without a code are reported as 500 with a generic message.
func Error(c *gin.Context, err error) {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, Envelope{Error: &ErrorBody{
			Code:    "INTERNAL_ERROR",
			Message: "something went wrong, please try again",
		}})
		return
	}

	body := &ErrorBody{Code: string(appErr.Code), Message: appErr.Message}
	if appErr.Code == domain.CodeAuthenticationRequired {
		body.Redirect = LoginPath
	}
	if appErr.Err != nil {
		_ = c.Error(appErr)
	}
	c.JSON(StatusFor(appErr.Code), Envelope{Error: body})
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeResolution:
		return http.StatusUnprocessableEntity
	case domain.CodeNetwork:
		return http.StatusBadGateway
	case domain.CodeGeolocationUnavailable:
		return http.StatusServiceUnavailable
	case domain.CodeGeolocationDenied:
		return http.StatusForbidden
	case domain.CodeGeolocationTimeout:
		return http.StatusRequestTimeout
	case domain.CodeAuthenticationRequired:
		return http.StatusUnauthorized
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
