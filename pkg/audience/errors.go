package audience

import "errors"

var (
	// ErrInvalidDescriptor is returned for structurally invalid audience
	// descriptors, before any directory query is issued.
	ErrInvalidDescriptor = errors.New("audience: invalid descriptor")

	// ErrNoRecipients is returned when a descriptor resolves to an empty
	// recipient set.
	ErrNoRecipients = errors.New("audience: no matching recipients")

	// ErrDirectoryUnavailable wraps directory query failures.
	ErrDirectoryUnavailable = errors.New("audience: directory query failed")
)
