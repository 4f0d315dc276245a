package errors

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for problem responses.
const ContentTypeProblemJSON = "application/problem+json"

// ErrorMapper translates a domain error into a problem; ok is false when the
// mapper does not recognise err.
type ErrorMapper func(err error) (ProblemDetail, bool)

// Responder writes problem documents, consulting its mappers in order before
// falling back to a 500.
type Responder struct {
	logger  *slog.Logger
	mappers []ErrorMapper
}

// NewResponder builds a responder. A nil logger disables logging of
// unmapped errors.
func NewResponder(logger *slog.Logger, mappers ...ErrorMapper) *Responder {
	return &Responder{logger: logger, mappers: mappers}
}

// AddMapper appends mapper to the chain.
func (r *Responder) AddMapper(mapper ErrorMapper) {
	r.mappers = append(r.mappers, mapper)
}

// Respond writes problem and aborts the gin chain.
func (r *Responder) Respond(c *gin.Context, problem ProblemDetail) {
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	if problem.Retryable {
		c.Header("Retry-After", "1")
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// RespondError maps err and writes the resulting problem.
func (r *Responder) RespondError(c *gin.Context, err error) {
	r.Respond(c, r.Problem(c, err))
}

// Problem resolves err to the problem that would be written for it.
func (r *Responder) Problem(c *gin.Context, err error) ProblemDetail {
	var problem ProblemDetail
	if errors.As(err, &problem) {
		return problem
	}
	for _, mapper := range r.mappers {
		if p, ok := mapper(err); ok {
			return p
		}
	}
	if r.logger != nil {
		r.logger.ErrorContext(c.Request.Context(), "unmapped error",
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()))
	}
	return ErrInternal
}

// Abort is a gin-friendly helper for middleware that rejects a request
// before any handler runs.
func Abort(c *gin.Context, problem ProblemDetail) {
	(&Responder{}).Respond(c, problem)
}

// HTTPStatusFromError extracts the status of a ProblemDetail error.
func HTTPStatusFromError(err error) int {
	var problem ProblemDetail
	if errors.As(err, &problem) {
		return problem.Status
	}
	return http.StatusInternalServerError
}
