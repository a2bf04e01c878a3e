package services

import "errors"

// Failure classes surfaced by the service layer. Handlers map these
// to HTTP statuses; anything unclassified bubbles up as a 500.
var (
	// ErrDuplicateEmail is returned when registering an email that is
	// already present in the credential store.
	ErrDuplicateEmail = errors.New("user already exists")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password; callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnknownSubject is returned when a structurally valid token
	// references an identity absent from the credential store.
	ErrUnknownSubject = errors.New("token subject does not exist")

	// ErrUserNotFound is returned for reads of an absent mirror row.
	ErrUserNotFound = errors.New("user not found")

	// ErrOrderNotFound is returned for truly absent orders, before
	// any ownership decision.
	ErrOrderNotFound = errors.New("order not found")

	// ErrAccessDenied is returned when the caller does not own the
	// order it is acting on.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidStatus rejects a status outside the five order states.
	ErrInvalidStatus = errors.New("invalid order status")

	// ErrOrderLocked rejects edits to cancelled or delivered orders.
	ErrOrderLocked = errors.New("cannot edit cancelled or delivered orders")
)
