package shopserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	accessdomain "github.com/Apurer/go-gin-shop-server/internal/domains/access/domain"
	salehttpmapper "github.com/Apurer/go-gin-shop-server/internal/domains/sales/adapters/http/mapper"
	salesports "github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
	apierrors "github.com/Apurer/go-gin-shop-server/internal/shared/errors"
)

// ReconciliationAPI reports ledger drift and the history of recorded runs.
type ReconciliationAPI struct {
	service   salesports.Service
	runner    salesports.ReconciliationRunner
	responder *apierrors.Responder
}

func NewReconciliationAPI(service salesports.Service, runner salesports.ReconciliationRunner, responder *apierrors.Responder) ReconciliationAPI {
	return ReconciliationAPI{service: service, runner: runner, responder: responder}
}

// Get /api/reconciliation
// Check the caller's tenant without recording the result
func (api *ReconciliationAPI) Reconcile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	report, err := api.service.Reconcile(c.Request.Context(), actor)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, salehttpmapper.FromReport(report))
}

// Get /api/reconciliation/runs
func (api *ReconciliationAPI) ListRuns(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var limit int
	if !bindQuery(c, map[string]any{"limit": &limit}) {
		return
	}
	reports, err := api.service.ListReconciliations(c.Request.Context(), actor, limit)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, salehttpmapper.FromReportList(reports))
}

// Post /api/reconciliation/runs
// Run and record a reconciliation for the caller's tenant
func (api *ReconciliationAPI) StartRun(c *gin.Context) {
	// The runner acts as the tenant's system actor, so authorize the caller here.
	actor, ok := authorizedActor(c, api.responder, accessdomain.CapabilityEdit)
	if !ok {
		return
	}
	report, err := api.runner.RunReconciliation(c.Request.Context(), actor.TenantID)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, salehttpmapper.FromReport(report))
}
