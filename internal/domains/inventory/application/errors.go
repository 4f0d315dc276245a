package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-shop-server/internal/domains/inventory/domain"
)

// ErrInvalidInput signals the request violated a domain invariant.
var ErrInvalidInput = errors.New("invalid item input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrMissingTenant) ||
		errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrNegativePrice) ||
		errors.Is(err, domain.ErrNegativeStock) ||
		errors.Is(err, domain.ErrNegativeThreshold) ||
		errors.Is(err, domain.ErrZeroDelta) ||
		errors.Is(err, domain.ErrInvalidReason) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
