package graph

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/twilightcoders/cardgames/internal/gametype"
)

// Error codes reported in extensions.code.
const (
	CodeValidation = "VALIDATION_FAILED"
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"
	CodeForbidden  = "FORBIDDEN"
	CodeInternal   = "INTERNAL"
)

// resolverError is returned unwrapped from resolvers so the executor picks up its extensions.
type resolverError struct {
	code       string
	message    string
	extensions map[string]interface{}
}

func newError(code, message string) *resolverError {
	return &resolverError{code: code, message: message}
}

func (e *resolverError) Error() string {
	return e.message
}

func (e *resolverError) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": e.code}
	for k, v := range e.extensions {
		ext[k] = v
	}
	return ext
}

func validationError(violations ...gametype.Violation) *resolverError {
	verr := &gametype.ValidationError{Violations: violations}
	return &resolverError{
		code:       CodeValidation,
		message:    verr.Error(),
		extensions: map[string]interface{}{"violations": violations},
	}
}

// toGraphQLError maps store errors onto typed GraphQL errors. Unknown failures are logged
// and reported without internal detail.
func (r *Resolver) toGraphQLError(err error) error {
	var verr *gametype.ValidationError
	var cerr *gametype.ConflictError
	switch {
	case errors.As(err, &verr):
		return validationError(verr.Violations...)
	case errors.As(err, &cerr):
		return &resolverError{
			code:       CodeConflict,
			message:    cerr.Error(),
			extensions: map[string]interface{}{"field": cerr.Field},
		}
	case errors.Is(err, gametype.ErrNotFound):
		return newError(CodeNotFound, err.Error())
	default:
		r.log.WithError(err).Error("game type resolver failed")
		return newError(CodeInternal, "internal error")
	}
}

// panicLogger routes resolver panics into logrus.
type panicLogger struct {
	log *logrus.Logger
}

func (l *panicLogger) LogPanic(_ context.Context, value interface{}) {
	l.log.WithField("panic", value).Error("graphql resolver panic")
}
