package internalerr

import "errors"

// Sentinel errors for the failure taxonomy. Callers branch with errors.Is.
var (
	ErrEmptyInput           = errors.New("empty input")
	ErrUnsupportedLanguage  = errors.New("unsupported language")
	ErrLanguageRequired     = errors.New("language required")
	ErrBackendUnavailable   = errors.New("backend unavailable")
	ErrMalformedTokenStream = errors.New("malformed token stream")
	ErrInvalidAttribute     = errors.New("invalid attribute")
)
