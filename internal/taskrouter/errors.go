package taskrouter

import "errors"

// Router errors
var (
	// ErrNoRoutes is returned by New when no route table is supplied.
	ErrNoRoutes = errors.New("task router needs a route table")

	// ErrMissingDependency is returned by New when a store is nil.
	ErrMissingDependency = errors.New("task router dependency is missing")

	// ErrMissingType is returned when a message has no type.
	ErrMissingType = errors.New("message must contain a type")

	// ErrMissingURL is returned when a message carries no page URL.
	ErrMissingURL = errors.New("message must contain a page url")

	// ErrNoRoute is returned when no route is defined for the message type.
	ErrNoRoute = errors.New("no route defined for message type")
)
