package apiv1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anthonypate54/familynest/pkg/types"
)

type PermissionController interface {
	Permissions() types.PermissionState
	SetPermission(kind types.Kind, status types.PermissionStatus) error
}

type SetPermissionRequest struct {
	Status string `json:"status"`
}

type PermissionsGroup struct {
	routerGroup *echo.Group
	service     PermissionController
}

func NewPermissionsGroup(routerGroup *echo.Group, service PermissionController) *PermissionsGroup {
	g := &PermissionsGroup{routerGroup: routerGroup, service: service}
	g.routerGroup.GET("", g.ListPermissions)
	g.routerGroup.PUT("/:kind", g.SetPermission)
	return g
}

func (g *PermissionsGroup) ListPermissions(c echo.Context) error {
	return SuccessResponse(c, g.service.Permissions().Map())
}

// SetPermission records the outcome of the external permission prompt.
func (g *PermissionsGroup) SetPermission(c echo.Context) error {
	kind, err := types.ParseKind(c.Param("kind"))
	if err != nil {
		return ResourceErrorResponse(c, err)
	}

	var req SetPermissionRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	status, err := types.ParsePermissionStatus(req.Status)
	if err != nil {
		return ResourceErrorResponse(c, err)
	}

	if err := g.service.SetPermission(kind, status); err != nil {
		return ResourceErrorResponse(c, err)
	}
	return SuccessResponse(c, g.service.Permissions().Map())
}
