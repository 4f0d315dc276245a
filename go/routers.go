package shopserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/go-gin-shop-server/internal/platform/auth"
)

// Route is the information for every URI.
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions bundles the handlers of every API group.
type ApiHandleFunctions struct {
	SaleAPI           SaleAPI
	ItemAPI           ItemAPI
	CustomerAPI       CustomerAPI
	ReconciliationAPI ReconciliationAPI
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions, authConfig auth.Config) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions, authConfig)
}

// NewRouterWithGinEngine adds the API routes to an existing engine. /healthz is
// public; everything under /api needs a resolvable actor.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions, authConfig auth.Config) *gin.Engine {
	router.GET("/healthz", healthz)
	api := router.Group("/api", auth.Middleware(authConfig))
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		switch route.Method {
		case http.MethodGet:
			api.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			api.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			api.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodPatch:
			api.PATCH(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			api.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

// DefaultHandleFunc answers routes without a handler.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"CreateSale", http.MethodPost, "/sales", handleFunctions.SaleAPI.CreateSale},
		{"ListSales", http.MethodGet, "/sales", handleFunctions.SaleAPI.ListSales},
		{"GetSale", http.MethodGet, "/sales/:saleId", handleFunctions.SaleAPI.GetSale},
		{"AmendSale", http.MethodPatch, "/sales/:saleId", handleFunctions.SaleAPI.AmendSale},
		{"CancelSale", http.MethodDelete, "/sales/:saleId", handleFunctions.SaleAPI.CancelSale},

		{"CreateItem", http.MethodPost, "/items", handleFunctions.ItemAPI.CreateItem},
		{"ListItems", http.MethodGet, "/items", handleFunctions.ItemAPI.ListItems},
		{"GetItem", http.MethodGet, "/items/:itemId", handleFunctions.ItemAPI.GetItem},
		{"UpdateItem", http.MethodPut, "/items/:itemId", handleFunctions.ItemAPI.UpdateItem},
		{"DeleteItem", http.MethodDelete, "/items/:itemId", handleFunctions.ItemAPI.DeleteItem},
		{"AdjustStock", http.MethodPost, "/items/:itemId/stock", handleFunctions.ItemAPI.AdjustStock},
		{"ListMovements", http.MethodGet, "/items/:itemId/movements", handleFunctions.ItemAPI.ListMovements},

		{"CreateCustomer", http.MethodPost, "/customers", handleFunctions.CustomerAPI.CreateCustomer},
		{"ListCustomers", http.MethodGet, "/customers", handleFunctions.CustomerAPI.ListCustomers},
		{"GetCustomer", http.MethodGet, "/customers/:customerId", handleFunctions.CustomerAPI.GetCustomer},
		{"UpdateCustomer", http.MethodPut, "/customers/:customerId", handleFunctions.CustomerAPI.UpdateCustomer},
		{"DeleteCustomer", http.MethodDelete, "/customers/:customerId", handleFunctions.CustomerAPI.DeleteCustomer},
		{"ListCreditEntries", http.MethodGet, "/customers/:customerId/credit", handleFunctions.CustomerAPI.ListCreditEntries},

		{"Reconcile", http.MethodGet, "/reconciliation", handleFunctions.ReconciliationAPI.Reconcile},
		{"ListReconciliationRuns", http.MethodGet, "/reconciliation/runs", handleFunctions.ReconciliationAPI.ListRuns},
		{"StartReconciliationRun", http.MethodPost, "/reconciliation/runs", handleFunctions.ReconciliationAPI.StartRun},
	}
}
