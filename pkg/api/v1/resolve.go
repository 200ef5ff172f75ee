package apiv1

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anthonypate54/familynest/pkg/types"
)

type PathResolver interface {
	ResolvePath(ctx context.Context, identity string, kind types.IdentityKind) (string, error)
}

type ResolveRequest struct {
	ID           string `json:"id"`
	IdentityKind string `json:"identity_kind"` // optional; classified from id when empty
}

type ResolveResponse struct {
	Path string `json:"path"`
}

type ResolveGroup struct {
	routerGroup *echo.Group
	service     PathResolver
}

func NewResolveGroup(routerGroup *echo.Group, service PathResolver) *ResolveGroup {
	g := &ResolveGroup{routerGroup: routerGroup, service: service}
	g.routerGroup.POST("", g.Resolve)
	return g
}

func (g *ResolveGroup) Resolve(c echo.Context) error {
	var req ResolveRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.ID == "" {
		return ErrorResponse(c, http.StatusBadRequest, "id is required")
	}

	path, err := g.service.ResolvePath(c.Request().Context(), req.ID, types.IdentityKind(req.IdentityKind))
	if err != nil {
		return ResourceErrorResponse(c, err)
	}

	return SuccessResponse(c, ResolveResponse{Path: path})
}
