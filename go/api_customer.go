package shopserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	customerhttpmapper "github.com/Apurer/go-gin-shop-server/internal/domains/customers/adapters/http/mapper"
	customertypes "github.com/Apurer/go-gin-shop-server/internal/domains/customers/application/types"
	customerports "github.com/Apurer/go-gin-shop-server/internal/domains/customers/ports"
	apierrors "github.com/Apurer/go-gin-shop-server/internal/shared/errors"
)

// CustomerAPI manages customers and exposes their credit ledger.
type CustomerAPI struct {
	service   customerports.Service
	responder *apierrors.Responder
}

func NewCustomerAPI(service customerports.Service, responder *apierrors.Responder) CustomerAPI {
	return CustomerAPI{service: service, responder: responder}
}

// Post /api/customers
func (api *CustomerAPI) CreateCustomer(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var payload customerhttpmapper.CreateCustomer
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	customer, err := api.service.CreateCustomer(c.Request.Context(), actor, customerhttpmapper.ToCreateCustomerInput(payload))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customerhttpmapper.FromCustomer(customer))
}

// Get /api/customers
func (api *CustomerAPI) ListCustomers(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var query customertypes.ListCustomersQuery
	if !bindQuery(c, map[string]any{
		"search": &query.Search,
		"sort":   &query.Sort,
		"limit":  &query.Limit,
		"offset": &query.Offset,
	}) {
		return
	}
	customers, err := api.service.ListCustomers(c.Request.Context(), actor, query)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customerhttpmapper.FromCustomerList(customers))
}

// Get /api/customers/:customerId
func (api *CustomerAPI) GetCustomer(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := bindUUIDParam(c, "customerId")
	if !ok {
		return
	}
	customer, err := api.service.GetCustomer(c.Request.Context(), actor, id)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customerhttpmapper.FromCustomer(customer))
}

// Put /api/customers/:customerId
func (api *CustomerAPI) UpdateCustomer(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := bindUUIDParam(c, "customerId")
	if !ok {
		return
	}
	var payload customerhttpmapper.UpdateCustomer
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	customer, err := api.service.UpdateCustomer(c.Request.Context(), actor, customerhttpmapper.ToUpdateCustomerInput(id, payload))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customerhttpmapper.FromCustomer(customer))
}

// Delete /api/customers/:customerId
// Refused while the customer owes credit
func (api *CustomerAPI) DeleteCustomer(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := bindUUIDParam(c, "customerId")
	if !ok {
		return
	}
	if err := api.service.DeleteCustomer(c.Request.Context(), actor, id); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /api/customers/:customerId/credit
func (api *CustomerAPI) ListCreditEntries(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := bindUUIDParam(c, "customerId")
	if !ok {
		return
	}
	entries, err := api.service.ListCreditEntries(c.Request.Context(), actor, id)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customerhttpmapper.FromCreditEntries(entries))
}
