package apiv1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anthonypate54/familynest/pkg/sources/picker"
)

type SessionController interface {
	CurrentSession() (*picker.Session, bool)
	CompleteSession(sessionID string, handles []string) error
	CancelSession(sessionID string) error
}

type CompleteSessionRequest struct {
	Handles []string `json:"handles"`
}

// PickerGroup is the completion path for the external picker: it polls for the
// pending session and reports the user's selection.
type PickerGroup struct {
	routerGroup *echo.Group
	service     SessionController
}

func NewPickerGroup(routerGroup *echo.Group, service SessionController) *PickerGroup {
	g := &PickerGroup{routerGroup: routerGroup, service: service}
	g.registerRoutes()
	return g
}

func (g *PickerGroup) registerRoutes() {
	g.routerGroup.GET("/session", g.CurrentSession)
	g.routerGroup.POST("/session/:session_id/complete", g.CompleteSession)
	g.routerGroup.POST("/session/:session_id/cancel", g.CancelSession)
}

func (g *PickerGroup) CurrentSession(c echo.Context) error {
	session, ok := g.service.CurrentSession()
	if !ok {
		return ErrorResponse(c, http.StatusNotFound, "no pending picker session")
	}
	return SuccessResponse(c, session)
}

func (g *PickerGroup) CompleteSession(c echo.Context) error {
	var req CompleteSessionRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	if err := g.service.CompleteSession(c.Param("session_id"), req.Handles); err != nil {
		return ResourceErrorResponse(c, err)
	}
	return SuccessResponse(c, nil)
}

func (g *PickerGroup) CancelSession(c echo.Context) error {
	if err := g.service.CancelSession(c.Param("session_id")); err != nil {
		return ResourceErrorResponse(c, err)
	}
	return SuccessResponse(c, nil)
}
