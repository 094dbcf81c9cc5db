package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/1989Cristianq/modelodatos/internal/authz"
	"github.com/1989Cristianq/modelodatos/internal/models"
	"github.com/1989Cristianq/modelodatos/internal/services"
)

// VehicleController edits the vehicles of an accident one by one.
type VehicleController struct {
	svc services.VehicleService
}

func NewVehicleController(svc services.VehicleService) *VehicleController {
	return &VehicleController{svc: svc}
}

func (ctrl *VehicleController) Register(g *echo.Group) {
	g.GET("/accidents/:id/vehicles", ctrl.ListVehicles)
	g.POST("/accidents/:id/vehicles", ctrl.AddVehicle)
	g.PUT("/vehicles/:id", ctrl.UpdateVehicle)
	g.DELETE("/vehicles/:id", ctrl.DeleteVehicle)
}

type vehicleResponse struct {
	Vehicle *models.VehicleInvolvement `json:"vehicle"`
	Totals  services.Totals            `json:"totals"`
}

func (ctrl *VehicleController) ListVehicles(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid accident ID")
	}
	if !principal(c).Can(authz.ViewAccidents) {
		return respondError(c, services.ErrForbidden)
	}

	vehicles, err := ctrl.svc.ListByAccident(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, vehicles)
}

func (ctrl *VehicleController) AddVehicle(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid accident ID")
	}
	var req models.VehicleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	v := req.ToVehicle(0)
	added, totals, err := ctrl.svc.Add(c.Request().Context(), principal(c), id, &v)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, vehicleResponse{Vehicle: added, Totals: totals})
}

func (ctrl *VehicleController) UpdateVehicle(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid vehicle ID")
	}
	var req models.VehicleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	v := req.ToVehicle(0)
	updated, totals, err := ctrl.svc.Update(c.Request().Context(), principal(c), id, &v)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, vehicleResponse{Vehicle: updated, Totals: totals})
}

func (ctrl *VehicleController) DeleteVehicle(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid vehicle ID")
	}

	totals, err := ctrl.svc.Delete(c.Request().Context(), principal(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, totals)
}
