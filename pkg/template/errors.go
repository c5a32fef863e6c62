package template

import "errors"

var (
	// ErrUnbalancedDelimiters is returned when the counts of {{ and }} differ.
	ErrUnbalancedDelimiters = errors.New("template: unbalanced delimiters")

	// ErrUnmatchedBlock is returned when an #if, #unless, or #each tag has no
	// matching closing tag (or vice versa).
	ErrUnmatchedBlock = errors.New("template: unmatched block tag")
)
