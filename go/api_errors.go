package shopserver

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	accessdomain "github.com/Apurer/go-gin-shop-server/internal/domains/access/domain"
	customerapp "github.com/Apurer/go-gin-shop-server/internal/domains/customers/application"
	customerdomain "github.com/Apurer/go-gin-shop-server/internal/domains/customers/domain"
	inventoryapp "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/application"
	inventoryports "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/ports"
	salesapp "github.com/Apurer/go-gin-shop-server/internal/domains/sales/application"
	salesdomain "github.com/Apurer/go-gin-shop-server/internal/domains/sales/domain"
	salesports "github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
	apierrors "github.com/Apurer/go-gin-shop-server/internal/shared/errors"
)

// errorRule binds a sentinel to the problem template returned for it.
type errorRule struct {
	target  error
	problem apierrors.ProblemDetail
}

func sentinelMapper(rules ...errorRule) apierrors.ErrorMapper {
	return func(err error) (apierrors.ProblemDetail, bool) {
		for _, r := range rules {
			if errors.Is(err, r.target) {
				return r.problem.WithDetail(err.Error()), true
			}
		}
		return apierrors.ProblemDetail{}, false
	}
}

func accessErrors() apierrors.ErrorMapper {
	return sentinelMapper(
		errorRule{accessdomain.ErrPermissionDenied, apierrors.ErrForbidden},
		errorRule{accessdomain.ErrMissingActor, apierrors.ErrUnauthorized},
	)
}

// salesErrors is checked before inventory and customers because a sale can
// surface their not-found errors with sale-specific meaning.
func salesErrors() apierrors.ErrorMapper {
	return sentinelMapper(
		errorRule{salesports.ErrTransactionFailed, apierrors.ErrTransactionFailed},
		errorRule{salesports.ErrSaleNotFound, apierrors.ErrNotFound.WithCode("sale_not_found")},
		errorRule{salesports.ErrItemNotFound, apierrors.ErrNotFound.WithCode("item_not_found")},
		errorRule{salesports.ErrCustomerNotFound, apierrors.ErrNotFound.WithCode("customer_not_found")},
		errorRule{salesports.ErrInsufficientStock, apierrors.ErrValidation.WithCode("insufficient_stock")},
		errorRule{salesdomain.ErrInvalidDiscount, apierrors.ErrValidation.WithCode("invalid_discount")},
		errorRule{salesdomain.ErrAlreadyCancelled, apierrors.ErrConflict.WithCode("already_cancelled")},
		errorRule{salesports.ErrIdempotencyConflict, apierrors.ErrConflict.WithCode("idempotency_conflict")},
		errorRule{salesapp.ErrInvalidInput, apierrors.ErrValidation},
	)
}

func inventoryErrors() apierrors.ErrorMapper {
	return sentinelMapper(
		errorRule{inventoryports.ErrDuplicateSKU, apierrors.ErrConflict.WithCode("duplicate_sku")},
		errorRule{inventoryapp.ErrInvalidInput, apierrors.ErrValidation},
	)
}

func customerErrors() apierrors.ErrorMapper {
	return sentinelMapper(
		errorRule{customerdomain.ErrOutstandingBalance, apierrors.ErrConflict.WithCode("outstanding_balance")},
		errorRule{customerapp.ErrInvalidInput, apierrors.ErrValidation},
	)
}

// NewResponder builds the responder shared by every handler.
func NewResponder(logger *slog.Logger) *apierrors.Responder {
	return apierrors.NewResponder(logger, accessErrors(), salesErrors(), inventoryErrors(), customerErrors())
}

func respondBadRequest(c *gin.Context, err error) {
	apierrors.Abort(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}
