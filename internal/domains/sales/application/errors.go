package application

import (
	"errors"
	"fmt"

	accessdomain "github.com/Apurer/go-gin-shop-server/internal/domains/access/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
)

var (
	// ErrInvalidInput signals the request violated a sale invariant other than the discount rule.
	ErrInvalidInput = errors.New("invalid sale input")
	// ErrPermissionDenied is returned before any read or write when the actor lacks the capability.
	ErrPermissionDenied = accessdomain.ErrPermissionDenied
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrMissingTenant) ||
		errors.Is(err, domain.ErrEmptyCart) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrNegativePrice) ||
		errors.Is(err, domain.ErrInvalidPaymentType) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// IsRetryable reports whether err means the whole operation may be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ports.ErrTransactionFailed)
}
