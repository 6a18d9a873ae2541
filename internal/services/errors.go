package services

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Engine error taxonomy. Every failure is one of these, wrapped with
// context; no operation leaves partial writes behind.
var (
	// ErrInvalidState is returned when an operation is attempted against a
	// project, escrow or dispute whose status does not permit it.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidInput is returned for malformed amounts, unknown dispute
	// actions, or settlement amounts that do not reconcile.
	ErrInvalidInput = errors.New("invalid input")
	// ErrForbidden is returned when the actor is not the required role or
	// participant.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when a referenced aggregate does not exist.
	ErrNotFound = errors.New("not found")
)

// notFound maps a missing-row error onto ErrNotFound, preserving other errors.
func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}
