package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/1989Cristianq/modelodatos/internal/models"
	"github.com/1989Cristianq/modelodatos/internal/services"
)

var statusByCategory = map[services.ErrorCategory]int{
	services.CategoryValidation: http.StatusUnprocessableEntity,
	services.CategoryNotFound:   http.StatusNotFound,
	services.CategoryConflict:   http.StatusConflict,
	services.CategoryForbidden:  http.StatusForbidden,
	services.CategoryProtected:  http.StatusConflict,
	services.CategoryStorage:    http.StatusBadGateway,
	services.CategoryInternal:   http.StatusInternalServerError,
}

// respondError writes err as {"error": ..., "fields": ...}. Internal errors
// are logged and hidden from the client.
func respondError(c echo.Context, err error) error {
	var perr *models.ParseError
	if errors.As(err, &perr) {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":  "invalid request",
			"fields": map[string]string{perr.Field: perr.Error()},
		})
	}

	category := services.Category(err)
	status := statusByCategory[category]
	if status == 0 {
		status = http.StatusInternalServerError
	}

	body := map[string]any{"error": err.Error()}
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		body["error"] = "validation failed"
		body["fields"] = verr.Fields
	}
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"category", category,
			"error", err)
		if category == services.CategoryInternal {
			body["error"] = "internal error"
		}
	}
	return c.JSON(status, body)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}

// paramID parses a positive numeric path parameter.
func paramID(c echo.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// queryInt parses an optional integer query parameter; empty yields 0.
func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
