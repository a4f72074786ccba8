package oauth

import "errors"

// Configuration errors surfaced as structured JSON to the URL endpoint's
// caller rather than as transport faults.
var (
	ErrUnknownDatabase  = errors.New("invalid database")
	ErrProviderNotFound = errors.New("oauth provider not found")
	ErrProviderDisabled = errors.New("oauth provider not enabled")
)
