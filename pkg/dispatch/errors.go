package dispatch

import "errors"

var (
	// ErrInvalidRequest is returned for structurally invalid dispatch
	// requests, before any store or directory access.
	ErrInvalidRequest = errors.New("dispatch: invalid request")

	// ErrTemplateNotFound means the referenced template does not exist.
	ErrTemplateNotFound = errors.New("dispatch: template not found")

	// ErrTemplateInactive means the template exists but is disabled.
	ErrTemplateInactive = errors.New("dispatch: template is inactive")

	// ErrChannelMismatch means the requested channel differs from the
	// template's channel.
	ErrChannelMismatch = errors.New("dispatch: channel does not match template channel")

	// ErrChannelUnsupported means no adapter is registered for the channel.
	ErrChannelUnsupported = errors.New("dispatch: no adapter registered for channel")

	// ErrMissingVariables means the request omits variables the template
	// declares.
	ErrMissingVariables = errors.New("dispatch: request is missing declared template variables")

	// ErrRecordNotFound means no notification record exists for the id.
	ErrRecordNotFound = errors.New("dispatch: notification record not found")

	// ErrInvalidTransition guards the record lifecycle: terminal records
	// never move again.
	ErrInvalidTransition = errors.New("dispatch: invalid status transition")
)
