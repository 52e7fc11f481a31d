package domain

import "errors"

var (
	// ErrInvalidArgument marks malformed caller input (bad pagination bounds,
	// unparsable ids).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFoundOrForbidden is returned when a conditional write matched no
	// document. Ownership, soft-delete and status predicates all funnel into
	// this one error so callers cannot tell "not found" from "not yours".
	ErrNotFoundOrForbidden = errors.New("todo not found or not accessible")

	// ErrMissingOwner means the listing join found no user record for a todo.
	// Every todo must have a resolvable owner; this indicates corrupt data
	// upstream, not a caller mistake.
	ErrMissingOwner = errors.New("todo owner record missing")
)
