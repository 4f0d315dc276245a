package shopserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	itemhttpmapper "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/adapters/http/mapper"
	inventorytypes "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/application/types"
	inventoryports "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/ports"
	apierrors "github.com/Apurer/go-gin-shop-server/internal/shared/errors"
)

// ItemAPI manages the tenant's catalogue and stock ledger.
type ItemAPI struct {
	service   inventoryports.Service
	responder *apierrors.Responder
}

func NewItemAPI(service inventoryports.Service, responder *apierrors.Responder) ItemAPI {
	return ItemAPI{service: service, responder: responder}
}

// Post /api/items
func (api *ItemAPI) CreateItem(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var payload itemhttpmapper.CreateItem
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	item, err := api.service.CreateItem(c.Request.Context(), actor, itemhttpmapper.ToCreateItemInput(payload))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, itemhttpmapper.FromItem(item))
}

// Get /api/items
// Filters: search (name or sku), category, stock (low|out), sort (recent|oldest)
func (api *ItemAPI) ListItems(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var query inventorytypes.ListItemsQuery
	if !bindQuery(c, map[string]any{
		"search":   &query.Search,
		"category": &query.Category,
		"stock":    &query.Stock,
		"sort":     &query.Sort,
		"limit":    &query.Limit,
		"offset":   &query.Offset,
	}) {
		return
	}
	items, err := api.service.ListItems(c.Request.Context(), actor, query)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemhttpmapper.FromItemList(items))
}

// Get /api/items/:itemId
func (api *ItemAPI) GetItem(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := bindUUIDParam(c, "itemId")
	if !ok {
		return
	}
	item, err := api.service.GetItem(c.Request.Context(), actor, id)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemhttpmapper.FromItem(item))
}

// Put /api/items/:itemId
func (api *ItemAPI) UpdateItem(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := bindUUIDParam(c, "itemId")
	if !ok {
		return
	}
	var payload itemhttpmapper.UpdateItem
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	item, err := api.service.UpdateItem(c.Request.Context(), actor, itemhttpmapper.ToUpdateItemInput(id, payload))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemhttpmapper.FromItem(item))
}

// Delete /api/items/:itemId
func (api *ItemAPI) DeleteItem(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := bindUUIDParam(c, "itemId")
	if !ok {
		return
	}
	if err := api.service.DeleteItem(c.Request.Context(), actor, id); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Post /api/items/:itemId/stock
// Restock or correct stock with a signed delta
func (api *ItemAPI) AdjustStock(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := bindUUIDParam(c, "itemId")
	if !ok {
		return
	}
	var payload itemhttpmapper.AdjustStock
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	movement, err := api.service.AdjustStock(c.Request.Context(), actor, itemhttpmapper.ToAdjustStockInput(id, payload))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, itemhttpmapper.FromMovement(movement))
}

// Get /api/items/:itemId/movements
func (api *ItemAPI) ListMovements(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := bindUUIDParam(c, "itemId")
	if !ok {
		return
	}
	movements, err := api.service.ListMovements(c.Request.Context(), actor, id)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemhttpmapper.FromMovements(movements))
}
