package apiv1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anthonypate54/familynest/pkg/types"
)

const (
	HttpServerBaseRoute string = "/api/v1"
	HttpServerRootRoute string = ""
)

// Response is a standard API response structure
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse returns a successful response
func SuccessResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// ErrorResponse returns an error response
func ErrorResponse(c echo.Context, code int, message string) error {
	return c.JSON(code, Response{
		Success: false,
		Error:   message,
	})
}

// ResourceErrorResponse writes err with the status and code of its error kind.
func ResourceErrorResponse(c echo.Context, err error) error {
	code := types.CodeOf(err)
	return c.JSON(StatusForCode(code), Response{
		Success: false,
		Error:   err.Error(),
		Code:    string(code),
	})
}

func StatusForCode(code types.ErrorCode) int {
	switch code {
	case types.ErrCodePermissionDenied:
		return http.StatusForbidden
	case types.ErrCodeNotFound:
		return http.StatusNotFound
	case types.ErrCodeSessionBusy:
		return http.StatusConflict
	case types.ErrCodeContainerUnavailable:
		return http.StatusServiceUnavailable
	case types.ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case types.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
