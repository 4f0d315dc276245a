package application

import (
	"bytes"
	"context"
	"errors"
	"slices"

	accessdomain "github.com/Apurer/go-gin-shop-server/internal/domains/access/domain"
	customerdomain "github.com/Apurer/go-gin-shop-server/internal/domains/customers/domain"
	inventorydomain "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
)

// applyEffects books the stock decrements and customer credit of a completed sale.
func applyEffects(ctx context.Context, tx ports.Tx, actor accessdomain.Actor, sale *domain.Sale) error {
	saleID := sale.ID
	for _, line := range lockOrder(sale.Lines) {
		if _, err := tx.Items().AdjustStock(ctx, inventorydomain.StockAdjustment{
			TenantID: sale.TenantID,
			ItemID:   line.ItemID,
			Delta:    -line.Quantity,
			Reason:   inventorydomain.ReasonSale,
			SaleID:   &saleID,
			ActorID:  actor.UserID,
		}); err != nil {
			return err
		}
	}
	amount := sale.CreditAmount()
	if amount.IsZero() {
		return nil
	}
	_, err := tx.Customers().AdjustCredit(ctx, customerdomain.CreditAdjustment{
		TenantID:   sale.TenantID,
		CustomerID: *sale.CustomerID,
		Delta:      amount,
		Reason:     customerdomain.ReasonSaleCredit,
		SaleID:     &saleID,
		ActorID:    actor.UserID,
	})
	return err
}

// reverseEffects undoes applyEffects for a sale that is still completed.
// Items and customers deleted since the sale are skipped.
func reverseEffects(ctx context.Context, tx ports.Tx, actor accessdomain.Actor, sale *domain.Sale) error {
	saleID := sale.ID
	for _, line := range lockOrder(sale.Lines) {
		_, err := tx.Items().AdjustStock(ctx, inventorydomain.StockAdjustment{
			TenantID: sale.TenantID,
			ItemID:   line.ItemID,
			Delta:    line.Quantity,
			Reason:   inventorydomain.ReasonSaleReversal,
			SaleID:   &saleID,
			ActorID:  actor.UserID,
		})
		if err != nil && !errors.Is(err, ports.ErrItemNotFound) {
			return err
		}
	}
	amount := sale.CreditAmount()
	if amount.IsZero() {
		return nil
	}
	_, err := tx.Customers().AdjustCredit(ctx, customerdomain.CreditAdjustment{
		TenantID:   sale.TenantID,
		CustomerID: *sale.CustomerID,
		Delta:      amount.Neg(),
		Reason:     customerdomain.ReasonSaleReversal,
		SaleID:     &saleID,
		ActorID:    actor.UserID,
	})
	if err != nil && !errors.Is(err, ports.ErrCustomerNotFound) {
		return err
	}
	return nil
}

// lockOrder sorts lines by item id so concurrent sales touch stock rows in the
// same order.
func lockOrder(lines []domain.Line) []domain.Line {
	ordered := slices.Clone(lines)
	slices.SortFunc(ordered, func(a, b domain.Line) int {
		return bytes.Compare(a.ItemID[:], b.ItemID[:])
	})
	return ordered
}
