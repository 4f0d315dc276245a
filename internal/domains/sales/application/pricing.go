package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/application/types"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
)

// mergeCart folds repeated items into one line, keeping first-seen order, so
// availability is checked against the full requested quantity.
func mergeCart(cart []types.CartLine) ([]types.CartLine, error) {
	if len(cart) == 0 {
		return nil, domain.ErrEmptyCart
	}
	merged := make([]types.CartLine, 0, len(cart))
	index := make(map[uuid.UUID]int, len(cart))
	for _, line := range cart {
		if line.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		if i, ok := index[line.ItemID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.ItemID] = len(merged)
		merged = append(merged, line)
	}
	return merged, nil
}

// validateCart resolves every line against the tenant's items, checks the
// requested quantity is on hand, and snapshots name and price. Prices come from
// the item unless prior holds a snapshot for it (used when amending).
func validateCart(ctx context.Context, items ports.ItemStore, tenantID uuid.UUID, cart []types.CartLine, prior map[uuid.UUID]domain.Line) ([]domain.Line, error) {
	lines := make([]domain.Line, 0, len(cart))
	for _, req := range cart {
		item, err := items.GetByID(ctx, tenantID, req.ItemID)
		if err != nil {
			return nil, err
		}
		if item.StockQuantity < req.Quantity {
			return nil, fmt.Errorf("%w: %q has %d, requested %d", ports.ErrInsufficientStock, item.Name, item.StockQuantity, req.Quantity)
		}
		line := domain.Line{
			ItemID:          item.ID,
			ItemName:        item.Name,
			Quantity:        req.Quantity,
			UnitPriceAtSale: item.UnitPrice,
		}
		if snapshot, ok := prior[item.ID]; ok {
			line.ItemName = snapshot.ItemName
			line.UnitPriceAtSale = snapshot.UnitPriceAtSale
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func cartFromLines(lines []domain.Line) []types.CartLine {
	cart := make([]types.CartLine, 0, len(lines))
	for _, line := range lines {
		cart = append(cart, types.CartLine{ItemID: line.ItemID, Quantity: line.Quantity})
	}
	return cart
}

func parsePaymentType(raw string) (domain.PaymentType, error) {
	p := domain.PaymentType(strings.ToLower(strings.TrimSpace(raw)))
	if p == "" {
		return domain.PaymentCash, nil
	}
	if !domain.ValidPaymentType(p) {
		return "", domain.ErrInvalidPaymentType
	}
	return p, nil
}
