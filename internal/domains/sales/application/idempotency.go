package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/application/types"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/domain"
)

type normalizedLine struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

type normalizedCreateSale struct {
	CustomerID  string           `json:"customerId,omitempty"`
	WalkInLabel string           `json:"walkInLabel,omitempty"`
	Lines       []normalizedLine `json:"lines"`
	Discount    string           `json:"discount"`
	PaymentType string           `json:"paymentType"`
}

// FingerprintCreateSale hashes the semantic content of a checkout request so
// retries with an idempotency key can be told apart from reuse of the key.
func FingerprintCreateSale(input types.CreateSaleInput) (string, error) {
	normalized := normalizedCreateSale{
		Discount:    input.Discount.Round(2).String(),
		PaymentType: strings.ToLower(strings.TrimSpace(input.PaymentType)),
	}
	if normalized.PaymentType == "" {
		normalized.PaymentType = string(domain.PaymentCash)
	}
	if input.CustomerID != nil {
		normalized.CustomerID = input.CustomerID.String()
	} else {
		normalized.WalkInLabel = strings.TrimSpace(input.WalkInLabel)
	}
	cart, err := mergeCart(input.Lines)
	if err != nil {
		cart = input.Lines
	}
	for _, line := range cart {
		normalized.Lines = append(normalized.Lines, normalizedLine{
			ItemID:   line.ItemID.String(),
			Quantity: line.Quantity,
		})
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
