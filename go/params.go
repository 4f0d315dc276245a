package shopserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	accessdomain "github.com/Apurer/go-gin-shop-server/internal/domains/access/domain"
	apierrors "github.com/Apurer/go-gin-shop-server/internal/shared/errors"
)

// HeaderIdempotencyKey lets clients retry a checkout safely.
const HeaderIdempotencyKey = "Idempotency-Key"

func currentActor(c *gin.Context) (accessdomain.Actor, bool) {
	actor, ok := accessdomain.ActorFromContext(c.Request.Context())
	if !ok {
		apierrors.Abort(c, apierrors.ErrUnauthorized.WithDetail(accessdomain.ErrMissingActor.Error()))
		return accessdomain.Actor{}, false
	}
	return actor, true
}

// authorizedActor checks capability up front, for handlers whose downstream
// call runs as someone other than the caller.
func authorizedActor(c *gin.Context, responder *apierrors.Responder, capability accessdomain.Capability) (accessdomain.Actor, bool) {
	actor, err := accessdomain.RequireActor(c.Request.Context(), capability)
	if err != nil {
		responder.RespondError(c, err)
		return accessdomain.Actor{}, false
	}
	return actor, true
}

func bindUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		apierrors.Abort(c, apierrors.ErrBadRequest.
			WithDetail("invalid "+name+": "+err.Error()).
			WithExtension("parameter", name))
		return uuid.Nil, false
	}
	return id, true
}

// bindQuery binds optional form-style query parameters into dests keyed by
// parameter name.
func bindQuery(c *gin.Context, dests map[string]any) bool {
	query := c.Request.URL.Query()
	for name, dest := range dests {
		if err := runtime.BindQueryParameter("form", true, false, name, query, dest); err != nil {
			apierrors.Abort(c, apierrors.ErrBadRequest.
				WithDetail("invalid "+name+": "+err.Error()).
				WithExtension("parameter", name))
			return false
		}
	}
	return true
}

func healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
