package apiv1

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/anthonypate54/familynest/pkg/types"
)

type DocumentBrowser interface {
	BrowseDocuments(ctx context.Context) ([]types.Resource, error)
	BrowseSingleDocument(ctx context.Context) ([]types.Resource, error)
}

// BrowseGroup blocks each request until the external picker completes or
// cancels the session it opens.
type BrowseGroup struct {
	routerGroup *echo.Group
	service     DocumentBrowser
}

func NewBrowseGroup(routerGroup *echo.Group, service DocumentBrowser) *BrowseGroup {
	g := &BrowseGroup{routerGroup: routerGroup, service: service}
	g.routerGroup.POST("", g.Browse)
	g.routerGroup.POST("/single", g.BrowseSingle)
	return g
}

func (g *BrowseGroup) Browse(c echo.Context) error {
	resources, err := g.service.BrowseDocuments(c.Request().Context())
	if err != nil {
		return ResourceErrorResponse(c, err)
	}
	return SuccessResponse(c, resources)
}

func (g *BrowseGroup) BrowseSingle(c echo.Context) error {
	resources, err := g.service.BrowseSingleDocument(c.Request().Context())
	if err != nil {
		return ResourceErrorResponse(c, err)
	}
	return SuccessResponse(c, resources)
}
