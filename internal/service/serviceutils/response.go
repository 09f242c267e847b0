package serviceutils

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/todo_sync_sample/internal/domain"
	"github.com/locvowork/todo_sync_sample/internal/service"
)

type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func ResponseSuccess(c echo.Context, code int, msg string, data interface{}) error {
	return c.JSON(code, GenericResponse{
		Success: true,
		Message: msg,
		Data:    data,
	})
}

func ResponseError(c echo.Context, code int, msg string, err error) error {
	resp := GenericResponse{
		Success: false,
		Message: msg,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return c.JSON(code, resp)
}

// ResponseForError picks the status code from the error type: missing rows
// map to 404, validation failures to 400, anything else to 500.
func ResponseForError(c echo.Context, msg string, err error) error {
	var v *service.ErrValidation
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return ResponseError(c, http.StatusNotFound, msg, err)
	case errors.As(err, &v):
		return ResponseError(c, http.StatusBadRequest, msg, err)
	default:
		return ResponseError(c, http.StatusInternalServerError, msg, err)
	}
}
