package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/1989Cristianq/modelodatos/internal/authz"
	"github.com/1989Cristianq/modelodatos/internal/models"
	"github.com/1989Cristianq/modelodatos/internal/services"
)

// ReferenceController handles the lookup tables used by the accident form:
// agents, traffic zones, neighborhoods, rural sectors and hypotheses.
type ReferenceController struct {
	svc services.ReferenceService
}

func NewReferenceController(svc services.ReferenceService) *ReferenceController {
	return &ReferenceController{svc: svc}
}

// Register registers the routes for the reference controller
func (ctrl *ReferenceController) Register(g *echo.Group) {
	g.GET("/choices", ctrl.GetChoices)

	g.GET("/agents", ctrl.ListAgents)
	g.POST("/agents", ctrl.CreateAgent)
	g.DELETE("/agents/:id", ctrl.DeleteAgent)

	g.GET("/traffic-zones", ctrl.ListTrafficZones)
	g.POST("/traffic-zones", ctrl.CreateTrafficZone)
	g.DELETE("/traffic-zones/:id", ctrl.DeleteTrafficZone)
	g.GET("/traffic-zones/:id/neighborhoods", ctrl.ListZoneNeighborhoods)

	g.GET("/neighborhoods", ctrl.ListNeighborhoods)
	g.POST("/neighborhoods", ctrl.CreateNeighborhood)
	g.DELETE("/neighborhoods/:id", ctrl.DeleteNeighborhood)

	g.GET("/rural-sectors", ctrl.ListRuralSectors)
	g.POST("/rural-sectors", ctrl.CreateRuralSector)
	g.DELETE("/rural-sectors/:id", ctrl.DeleteRuralSector)

	g.GET("/hypotheses", ctrl.ListHypotheses)
	g.POST("/hypotheses", ctrl.CreateHypothesis)
	g.DELETE("/hypotheses/:id", ctrl.DeleteHypothesis)
}

// GetChoices returns every closed vocabulary of the accident form.
func (ctrl *ReferenceController) GetChoices(c echo.Context) error {
	return c.JSON(http.StatusOK, models.Vocabularies())
}

func (ctrl *ReferenceController) ListAgents(c echo.Context) error {
	agents, err := ctrl.svc.ListAgents(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, agents)
}

func (ctrl *ReferenceController) CreateAgent(c echo.Context) error {
	var agent models.Agent
	if err := c.Bind(&agent); err != nil {
		return badRequest(c, "invalid request body")
	}
	agent.AgentID = 0
	if err := ctrl.svc.CreateAgent(c.Request().Context(), principal(c), &agent); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, agent)
}

func (ctrl *ReferenceController) DeleteAgent(c echo.Context) error {
	return ctrl.delete(c, "invalid agent ID", ctrl.svc.DeleteAgent)
}

func (ctrl *ReferenceController) ListTrafficZones(c echo.Context) error {
	zones, err := ctrl.svc.ListTrafficZones(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, zones)
}

func (ctrl *ReferenceController) CreateTrafficZone(c echo.Context) error {
	var zone models.TrafficZone
	if err := c.Bind(&zone); err != nil {
		return badRequest(c, "invalid request body")
	}
	zone.TrafficZoneID = 0
	zone.Neighborhoods = nil
	if err := ctrl.svc.CreateTrafficZone(c.Request().Context(), principal(c), &zone); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, zone)
}

func (ctrl *ReferenceController) DeleteTrafficZone(c echo.Context) error {
	return ctrl.delete(c, "invalid traffic zone ID", ctrl.svc.DeleteTrafficZone)
}

// ListZoneNeighborhoods feeds the dependent neighborhood select of the form.
func (ctrl *ReferenceController) ListZoneNeighborhoods(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid traffic zone ID")
	}
	neighborhoods, err := ctrl.svc.ListNeighborhoods(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, neighborhoods)
}

func (ctrl *ReferenceController) ListNeighborhoods(c echo.Context) error {
	neighborhoods, err := ctrl.svc.ListNeighborhoods(c.Request().Context(), 0)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, neighborhoods)
}

func (ctrl *ReferenceController) CreateNeighborhood(c echo.Context) error {
	var neighborhood models.Neighborhood
	if err := c.Bind(&neighborhood); err != nil {
		return badRequest(c, "invalid request body")
	}
	neighborhood.NeighborhoodID = 0
	if err := ctrl.svc.CreateNeighborhood(c.Request().Context(), principal(c), &neighborhood); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, neighborhood)
}

func (ctrl *ReferenceController) DeleteNeighborhood(c echo.Context) error {
	return ctrl.delete(c, "invalid neighborhood ID", ctrl.svc.DeleteNeighborhood)
}

func (ctrl *ReferenceController) ListRuralSectors(c echo.Context) error {
	sectors, err := ctrl.svc.ListRuralSectors(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, sectors)
}

func (ctrl *ReferenceController) CreateRuralSector(c echo.Context) error {
	var sector models.RuralSector
	if err := c.Bind(&sector); err != nil {
		return badRequest(c, "invalid request body")
	}
	sector.RuralSectorID = 0
	if err := ctrl.svc.CreateRuralSector(c.Request().Context(), principal(c), &sector); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, sector)
}

func (ctrl *ReferenceController) DeleteRuralSector(c echo.Context) error {
	return ctrl.delete(c, "invalid rural sector ID", ctrl.svc.DeleteRuralSector)
}

// ListHypotheses handles GET /hypotheses?category=CONDUCTOR
func (ctrl *ReferenceController) ListHypotheses(c echo.Context) error {
	category := models.HypothesisCategory(strings.ToUpper(c.QueryParam("category")))
	hs, err := ctrl.svc.ListHypotheses(c.Request().Context(), category)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, hs)
}

func (ctrl *ReferenceController) CreateHypothesis(c echo.Context) error {
	var h models.Hypothesis
	if err := c.Bind(&h); err != nil {
		return badRequest(c, "invalid request body")
	}
	h.HypothesisID = 0
	if err := ctrl.svc.CreateHypothesis(c.Request().Context(), principal(c), &h); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, h)
}

func (ctrl *ReferenceController) DeleteHypothesis(c echo.Context) error {
	return ctrl.delete(c, "invalid hypothesis ID", ctrl.svc.DeleteHypothesis)
}

type deleteFunc func(ctx context.Context, p authz.Principal, id uint) error

func (ctrl *ReferenceController) delete(c echo.Context, badID string, del deleteFunc) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, badID)
	}
	if err := del(c.Request().Context(), principal(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
