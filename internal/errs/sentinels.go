// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across store/service layers. Services wrap these with
// fmt.Errorf("...: %w", ...) so callers can discriminate via errors.Is.
var (
	// ErrNotFound indicates the referenced entity does not exist at its path.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates create was called for an id already present.
	ErrAlreadyExists = errors.New("already exists")

	// ErrAlreadyJoined indicates an association that already holds
	// (user already a session participant, already a team member).
	ErrAlreadyJoined = errors.New("already joined")

	// ErrInvariant indicates a structural precondition failed (inverted time
	// bounds, team not attached to a session, artifact not in the session's set).
	ErrInvariant = errors.New("invariant violation")

	// ErrReferenced indicates a delete/removal blocked by a live dependent
	// reference (artifact still found by a participant, session still populated).
	ErrReferenced = errors.New("still referenced")

	// ErrOrdering indicates an operation attempted out of the required
	// lifecycle order (leaving a session while still on a team).
	ErrOrdering = errors.New("lifecycle ordering violation")
)
