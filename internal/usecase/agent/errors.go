// Package agent implements the specialized agents served under /agents and
// the keyword router behind /agent/ask. Each agent wraps one or two external
// collaborators and falls back to a deterministic answer when they are
// missing or failing.
package agent

import (
	"errors"

	"truthlens/internal/domain/entity"
	"truthlens/internal/infra/fetcher"
)

// Sentinel errors for agent input validation.
var (
	// ErrEmptyText indicates that an agent needing text received none.
	ErrEmptyText = errors.New("text is required")

	// ErrEmptyQuery indicates that the router or a search received no query.
	ErrEmptyQuery = errors.New("query is required")

	// ErrInvalidCoordinates indicates a latitude or longitude out of range.
	ErrInvalidCoordinates = errors.New("latitude must be within [-90, 90] and longitude within [-180, 180]")

	// ErrInvalidMode indicates an unknown news fetch mode.
	ErrInvalidMode = errors.New("mode must be one of trending, search, url")

	// ErrMissingURL indicates that url mode was requested without a url.
	ErrMissingURL = errors.New("url is required")
)

// errUnparsedReply means the model answered without the fields asked for.
var errUnparsedReply = errors.New("model reply is missing a required field")

// IsInputError reports whether err was caused by the request rather than by
// a collaborator. HTTP handlers answer these with 400.
func IsInputError(err error) bool {
	switch {
	case errors.Is(err, ErrEmptyText),
		errors.Is(err, ErrEmptyQuery),
		errors.Is(err, ErrInvalidCoordinates),
		errors.Is(err, ErrInvalidMode),
		errors.Is(err, ErrMissingURL),
		errors.Is(err, entity.ErrValidationFailed):
		return true
	}
	return fetcher.IsClientError(err)
}
