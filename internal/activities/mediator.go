package activities

import (
	"example.com/reactivities/internal/mediator"
	"example.com/reactivities/internal/validation"
)

// NewMediator wires every activity handler behind the given middlewares.
// Validation always runs innermost, directly before the handler.
func NewMediator(store Store, middlewares []mediator.Middleware, opts ...Option) (*mediator.Mediator, error) {
	registry := validation.NewRegistry()
	RegisterValidators(registry)

	b := mediator.NewBuilder().
		Use(middlewares...).
		Use(validation.Middleware(registry))
	NewHandlers(store, opts...).Register(b)
	return b.Build()
}
