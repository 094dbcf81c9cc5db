package controllers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/1989Cristianq/modelodatos/internal/authz"
	"github.com/1989Cristianq/modelodatos/internal/models"
	"github.com/1989Cristianq/modelodatos/internal/services"
)

// Headers set by the authenticating reverse proxy.
const (
	HeaderUserName     = "X-User-Name"
	HeaderUserRole     = "X-User-Role"
	HeaderUserFullName = "X-User-Full-Name"
)

const principalKey = "principal"

// Identity resolves the caller from the proxy headers and stores the
// principal in the echo context. Requests without a usable identity get 401.
func Identity(users services.UserService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Request().Header
			username := strings.TrimSpace(h.Get(HeaderUserName))
			if username == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing " + HeaderUserName + " header"})
			}

			p, err := users.Resolve(c.Request().Context(), username, h.Get(HeaderUserFullName), models.Role(h.Get(HeaderUserRole)))
			if err != nil {
				if services.Category(err) == services.CategoryValidation {
					return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
				}
				return respondError(c, err)
			}

			c.Set(principalKey, p)
			return next(c)
		}
	}
}

// principal returns the caller set by Identity. Handlers mounted without the
// middleware see an empty principal, which holds no capability.
func principal(c echo.Context) authz.Principal {
	p, _ := c.Get(principalKey).(authz.Principal)
	return p
}
