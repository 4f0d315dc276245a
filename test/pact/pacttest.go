//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/uuid"
)

const (
	ProviderName = "shop-api"
	ConsumerName = "shop-till"

	StateItemInStock = "item rice is in stock"
	StateSaleExists  = "a cash sale of rice exists"
	StateSaleMissing = "no sale with the missing id"
)

var (
	TenantID      = uuid.MustParse("6f1c3a52-2d0e-4c8e-9a55-0d1f0d9c1a01")
	UserID        = uuid.MustParse("0a8e7c44-91b3-4f0b-8d3e-4b8f2a7d6c02")
	ItemID        = uuid.MustParse("3d5b2f10-7a41-4e6c-b2d9-5c0e1f8a9b03")
	ExistingSale  = uuid.MustParse("b9e4d7a2-1c36-4f58-a0e7-2d6b3c9f8e04")
	MissingSaleID = uuid.MustParse("00000000-0000-4000-8000-000000000404")
)

const (
	ItemName      = "Rice 5kg"
	ItemUnitPrice = "12.00"
	ItemStock     = 20
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the till consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleCheckout is the cart the till submits in every create interaction.
func ExampleCheckout() map[string]any {
	return map[string]any{
		"items":       []map[string]any{{"itemId": ItemID.String(), "quantity": 2}},
		"paymentType": "cash",
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
