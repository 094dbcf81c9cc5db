package controllers

import (
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/1989Cristianq/modelodatos/internal/authz"
	"github.com/1989Cristianq/modelodatos/internal/services"
)

// SketchFormField is the multipart field carrying the sketch PDF.
const SketchFormField = "sketch"

// SketchController uploads and serves accident sketches (croquis).
type SketchController struct {
	svc services.AttachmentService
}

func NewSketchController(svc services.AttachmentService) *SketchController {
	return &SketchController{svc: svc}
}

func (ctrl *SketchController) Register(g *echo.Group) {
	g.PUT("/accidents/:id/sketch", ctrl.UploadSketch)
	g.GET("/accidents/:id/sketch", ctrl.DownloadSketch)
	g.DELETE("/accidents/:id/sketch", ctrl.DeleteSketch)
}

func (ctrl *SketchController) UploadSketch(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid accident ID")
	}
	fh, err := c.FormFile(SketchFormField)
	if err != nil {
		return badRequest(c, "missing "+SketchFormField+" file")
	}
	src, err := fh.Open()
	if err != nil {
		return badRequest(c, "unreadable upload")
	}
	defer src.Close()

	a, err := ctrl.svc.AttachSketch(c.Request().Context(), principal(c), id, services.Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        src,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (ctrl *SketchController) DownloadSketch(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid accident ID")
	}
	if !principal(c).Can(authz.ViewAccidents) {
		return respondError(c, services.ErrForbidden)
	}

	rc, name, err := ctrl.svc.OpenSketch(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	defer rc.Close()

	setAttachment(c, name)
	return c.Stream(http.StatusOK, "application/pdf", rc)
}

func (ctrl *SketchController) DeleteSketch(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid accident ID")
	}
	if err := ctrl.svc.RemoveSketch(c.Request().Context(), principal(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// setAttachment marks the response as a download named name. Non-ASCII names
// are encoded as RFC 2231 extended parameters.
func setAttachment(c echo.Context, name string) {
	c.Response().Header().Set(echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": name}))
}
