//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	shopserver "github.com/Apurer/go-gin-shop-server/go"
	customermemory "github.com/Apurer/go-gin-shop-server/internal/domains/customers/adapters/memory"
	customerobs "github.com/Apurer/go-gin-shop-server/internal/domains/customers/adapters/observability"
	customerapp "github.com/Apurer/go-gin-shop-server/internal/domains/customers/application"
	inventorymemory "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/adapters/memory"
	inventoryobs "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/adapters/observability"
	inventoryapp "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/application"
	inventorydomain "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/domain"
	salesmemory "github.com/Apurer/go-gin-shop-server/internal/domains/sales/adapters/memory"
	salesobs "github.com/Apurer/go-gin-shop-server/internal/domains/sales/adapters/observability"
	salesworkflows "github.com/Apurer/go-gin-shop-server/internal/domains/sales/adapters/workflows"
	salesapp "github.com/Apurer/go-gin-shop-server/internal/domains/sales/application"
	salesdomain "github.com/Apurer/go-gin-shop-server/internal/domains/sales/domain"
	salesports "github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
	"github.com/Apurer/go-gin-shop-server/internal/platform/auth"
	"github.com/Apurer/go-gin-shop-server/internal/platform/memdb"
	pacttest "github.com/Apurer/go-gin-shop-server/test/pact"
)

func TestShopProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateItemInStock: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedItem(t)
			}
			return nil, nil
		},
		pacttest.StateSaleExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedItem(t)
				app.seedSale(t)
			}
			return nil, nil
		},
		pacttest.StateSaleMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset(t)
			return nil
		},
	})
	require.NoError(t, err)
}

// contractProviderApp serves the real router over fresh in-memory stores that
// each provider state rebuilds.
type contractProviderApp struct {
	mu     sync.RWMutex
	router *gin.Engine
	items  *inventorymemory.Repository
	uow    *salesmemory.UnitOfWork
	server *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()
	app := &contractProviderApp{}
	app.reset(t)
	app.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.mu.RLock()
		router := app.router
		app.mu.RUnlock()
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(app.server.Close)
	return app
}

func (a *contractProviderApp) reset(t testing.TB) {
	t.Helper()
	db := memdb.New()
	items := inventorymemory.NewRepository(db)
	customers := customermemory.NewRepository(db)
	uow := salesmemory.NewUnitOfWork(db, items, customers)
	sales := salesobs.New(salesapp.NewService(uow, salesapp.WithReportStore(salesmemory.NewReportStore(db))))

	responder := shopserver.NewResponder(nil)
	handlers := shopserver.ApiHandleFunctions{
		SaleAPI:           shopserver.NewSaleAPI(sales, responder),
		ItemAPI:           shopserver.NewItemAPI(inventoryobs.New(inventoryapp.NewService(items)), responder),
		CustomerAPI:       shopserver.NewCustomerAPI(customerobs.New(customerapp.NewService(customers)), responder),
		ReconciliationAPI: shopserver.NewReconciliationAPI(sales, salesworkflows.NewInlineReconciliation(sales), responder),
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router = shopserver.NewRouterWithGinEngine(router, handlers, auth.Config{Disabled: true})

	a.mu.Lock()
	defer a.mu.Unlock()
	a.router, a.items, a.uow = router, items, uow
}

func (a *contractProviderApp) seedItem(t testing.TB) {
	t.Helper()
	item, err := inventorydomain.NewItem(
		pacttest.TenantID, pacttest.ItemName, "grains",
		decimal.RequireFromString(pacttest.ItemUnitPrice), pacttest.ItemStock,
		nil, nil, pacttest.UserID,
	)
	require.NoError(t, err)
	item.ID = pacttest.ItemID
	_, err = a.items.Create(context.Background(), item, pacttest.UserID)
	require.NoError(t, err)
}

// seedSale stores a sale under the fixed contract id. It bypasses the engine
// so the id is stable, and books the matching stock movement alongside.
func (a *contractProviderApp) seedSale(t testing.TB) {
	t.Helper()
	sale, err := salesdomain.NewSale(salesdomain.Draft{
		TenantID:  pacttest.TenantID,
		CreatedBy: pacttest.UserID,
		Lines: []salesdomain.Line{{
			ItemID:          pacttest.ItemID,
			ItemName:        pacttest.ItemName,
			Quantity:        2,
			UnitPriceAtSale: decimal.RequireFromString(pacttest.ItemUnitPrice),
		}},
		PaymentType: salesdomain.PaymentCash,
	}, time.Now().UTC())
	require.NoError(t, err)
	sale.ID = pacttest.ExistingSale
	saleID := sale.ID

	err = a.uow.Do(context.Background(), func(ctx context.Context, tx salesports.Tx) error {
		if _, err := tx.Items().AdjustStock(ctx, inventorydomain.StockAdjustment{
			TenantID: pacttest.TenantID,
			ItemID:   pacttest.ItemID,
			Delta:    -2,
			Reason:   inventorydomain.ReasonSale,
			SaleID:   &saleID,
			ActorID:  pacttest.UserID,
		}); err != nil {
			return err
		}
		return tx.Sales().Insert(ctx, sale)
	})
	require.NoError(t, err)
}
