package options

import "errors"

var (
	errInvalidNestingDepth = errors.New("options: MaxNestingDepth must be positive")
	errNoFallbackCharsets  = errors.New("options: at least one fallback charset is required")
)
