package simplestate

import "errors"

// ErrNoProvider is returned when a consumer looks up a store that was never
// placed in its context.
var ErrNoProvider = errors.New("simplestate: no provider in scope")

// ErrChildCount is returned when a provider or consumer is rendered with
// anything other than exactly one child.
var ErrChildCount = errors.New("simplestate: exactly one child is required")

// ErrProjection is returned when a projection is omitted but the requested
// type cannot hold the unprojected value.
var ErrProjection = errors.New("simplestate: projection type mismatch")

// ErrUnknownMessage is the panic value used when a message is neither an
// Action nor an Effect over the store's state type.
var ErrUnknownMessage = errors.New("simplestate: unknown message")
