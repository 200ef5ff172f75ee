package apiv1

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/anthonypate54/familynest/pkg/types"
)

type ResourceLister interface {
	ListResources(ctx context.Context, kind types.Kind, source types.SourceName, maxSizeBytes *int64) ([]types.Resource, error)
}

type ResourcesGroup struct {
	routerGroup *echo.Group
	service     ResourceLister
}

func NewResourcesGroup(routerGroup *echo.Group, service ResourceLister) *ResourcesGroup {
	g := &ResourcesGroup{routerGroup: routerGroup, service: service}
	g.registerRoutes()
	return g
}

func (g *ResourcesGroup) registerRoutes() {
	g.routerGroup.GET("", g.ListResources)
}

// ListResources handles GET /resources?kind=photo&source=catalog&max_size_bytes=N
func (g *ResourcesGroup) ListResources(c echo.Context) error {
	kind, err := types.ParseKind(c.QueryParam("kind"))
	if err != nil {
		return ResourceErrorResponse(c, err)
	}

	source, err := types.ParseSourceName(c.QueryParam("source"))
	if err != nil {
		return ResourceErrorResponse(c, err)
	}

	var maxSize *int64
	if raw := c.QueryParam("max_size_bytes"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return ErrorResponse(c, http.StatusBadRequest, "max_size_bytes must be an integer")
		}
		maxSize = &v
	}

	resources, err := g.service.ListResources(c.Request().Context(), kind, source, maxSize)
	if err != nil {
		return ResourceErrorResponse(c, err)
	}

	return SuccessResponse(c, resources)
}
