package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOutOfStock = errors.New("out of stock")

func respond(t *testing.T, r *Responder, err error) (*httptest.ResponseRecorder, ProblemDetail) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/sales", nil)

	r.RespondError(c, err)

	var body ProblemDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestResponder_UsesFirstMatchingMapper(t *testing.T) {
	r := NewResponder(nil, func(err error) (ProblemDetail, bool) {
		if errors.Is(err, errOutOfStock) {
			return ErrValidation.WithCode("insufficient_stock").WithDetail(err.Error()), true
		}
		return ProblemDetail{}, false
	})

	w, body := respond(t, r, errOutOfStock)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ContentTypeProblemJSON, w.Header().Get("Content-Type"))
	assert.Equal(t, "insufficient_stock", body.Code)
	assert.Equal(t, "/api/sales", body.Instance)
	assert.False(t, body.Retryable)
}

func TestResponder_TransactionFailedIsRetryable(t *testing.T) {
	r := NewResponder(nil, func(error) (ProblemDetail, bool) { return ErrTransactionFailed, true })

	w, body := respond(t, r, errors.New("serialization failure"))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.True(t, body.Retryable)
	assert.Equal(t, "transaction_failed", body.Code)
}

func TestResponder_UnmappedErrorHidesDetail(t *testing.T) {
	w, body := respond(t, NewResponder(nil), errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, body.Detail)
	assert.Equal(t, "internal", body.Code)
}

func TestResponder_PassesThroughProblemErrors(t *testing.T) {
	w, body := respond(t, NewResponder(nil), NewConflictProblem("already_cancelled", "sale is voided"))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already_cancelled", body.Code)
	assert.Equal(t, http.StatusConflict, HTTPStatusFromError(NewConflictProblem("x", "y")))
}

func TestWithExtension_DoesNotMutateTemplate(t *testing.T) {
	p := NewValidationProblem(map[string]string{"quantity": "must be positive"})

	assert.Contains(t, p.Extensions, "fields")
	assert.Nil(t, ErrValidation.Extensions)
}
