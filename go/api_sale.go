package shopserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apierrors "github.com/Apurer/go-gin-shop-server/internal/shared/errors"

	salehttpmapper "github.com/Apurer/go-gin-shop-server/internal/domains/sales/adapters/http/mapper"
	salestypes "github.com/Apurer/go-gin-shop-server/internal/domains/sales/application/types"
	salesports "github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
)

// SaleAPI exposes the sale-transaction engine over HTTP.
type SaleAPI struct {
	service   salesports.Service
	responder *apierrors.Responder
}

func NewSaleAPI(service salesports.Service, responder *apierrors.Responder) SaleAPI {
	return SaleAPI{service: service, responder: responder}
}

// Post /api/sales
// Check out a cart
func (api *SaleAPI) CreateSale(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var payload salehttpmapper.CreateSale
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
	sale, err := api.service.CreateSale(c.Request.Context(), actor, salehttpmapper.ToCreateSaleInput(payload, key))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, salehttpmapper.FromSale(sale))
}

// Get /api/sales
// List sale history
func (api *SaleAPI) ListSales(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var (
		query      salestypes.ListSalesQuery
		customerID uuid.UUID
	)
	if !bindQuery(c, map[string]any{
		"search":        &query.Search,
		"sort":          &query.Sort,
		"paymentType":   &query.PaymentTypes,
		"customerId":    &customerID,
		"includeVoided": &query.IncludeVoided,
		"limit":         &query.Limit,
		"offset":        &query.Offset,
	}) {
		return
	}
	if customerID != uuid.Nil {
		query.CustomerID = &customerID
	}
	sales, err := api.service.ListSales(c.Request.Context(), actor, query)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, salehttpmapper.FromSaleList(sales))
}

// Get /api/sales/:saleId
func (api *SaleAPI) GetSale(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := bindUUIDParam(c, "saleId")
	if !ok {
		return
	}
	sale, err := api.service.GetSale(c.Request.Context(), actor, id)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, salehttpmapper.FromSale(sale))
}

// Patch /api/sales/:saleId
// Amend discount, payment type or lines of a sale
func (api *SaleAPI) AmendSale(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := bindUUIDParam(c, "saleId")
	if !ok {
		return
	}
	var payload salehttpmapper.AmendSale
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	sale, err := api.service.AmendSale(c.Request.Context(), actor, id, salehttpmapper.ToAmendSaleInput(payload))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, salehttpmapper.FromSale(sale))
}

// Delete /api/sales/:saleId
// Void a sale, restoring stock and credit. The body is optional.
func (api *SaleAPI) CancelSale(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := bindUUIDParam(c, "saleId")
	if !ok {
		return
	}
	var payload salehttpmapper.CancelSale
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			respondBadRequest(c, err)
			return
		}
	}
	sale, err := api.service.CancelSale(c.Request.Context(), actor, id, salestypes.CancelSaleInput{Reason: payload.Reason})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, salehttpmapper.FromSale(sale))
}
