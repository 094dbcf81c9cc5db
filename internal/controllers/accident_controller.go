package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/1989Cristianq/modelodatos/internal/authz"
	"github.com/1989Cristianq/modelodatos/internal/models"
	"github.com/1989Cristianq/modelodatos/internal/services"
)

// AccidentController exposes accident registration and lookup.
type AccidentController struct {
	svc services.AccidentService
}

func NewAccidentController(svc services.AccidentService) *AccidentController {
	return &AccidentController{svc: svc}
}

// Register registers the routes for the accident controller
func (ctrl *AccidentController) Register(g *echo.Group) {
	g.GET("/accidents", ctrl.ListAccidents)
	g.POST("/accidents", ctrl.CreateAccident)
	g.GET("/accidents/ipat/:ipat", ctrl.GetAccidentByIPAT)
	g.GET("/accidents/:id", ctrl.GetAccident)
	g.PUT("/accidents/:id", ctrl.UpdateAccident)
	g.DELETE("/accidents/:id", ctrl.DeleteAccident)
}

// ListAccidents handles GET /accidents?q=&page=&page_size=
func (ctrl *AccidentController) ListAccidents(c echo.Context) error {
	if !principal(c).Can(authz.ViewAccidents) {
		return respondError(c, services.ErrForbidden)
	}
	page, err := queryInt(c, "page")
	if err != nil {
		return badRequest(c, "invalid page")
	}
	size, err := queryInt(c, "page_size")
	if err != nil {
		return badRequest(c, "invalid page_size")
	}

	result, err := ctrl.svc.List(c.Request().Context(), services.ListQuery{
		Search:   c.QueryParam("q"),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (ctrl *AccidentController) CreateAccident(c echo.Context) error {
	var req models.AccidentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	a, err := req.ToAccident()
	if err != nil {
		return respondError(c, err)
	}

	created, err := ctrl.svc.Create(c.Request().Context(), principal(c), a)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (ctrl *AccidentController) GetAccident(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid accident ID")
	}
	if !principal(c).Can(authz.ViewAccidents) {
		return respondError(c, services.ErrForbidden)
	}

	a, err := ctrl.svc.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (ctrl *AccidentController) GetAccidentByIPAT(c echo.Context) error {
	if !principal(c).Can(authz.ViewAccidents) {
		return respondError(c, services.ErrForbidden)
	}

	a, err := ctrl.svc.GetByIPAT(c.Request().Context(), c.Param("ipat"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (ctrl *AccidentController) UpdateAccident(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid accident ID")
	}
	var req models.AccidentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	a, err := req.ToAccident()
	if err != nil {
		return respondError(c, err)
	}

	updated, err := ctrl.svc.Update(c.Request().Context(), principal(c), id, a)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (ctrl *AccidentController) DeleteAccident(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid accident ID")
	}
	if err := ctrl.svc.Delete(c.Request().Context(), principal(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
