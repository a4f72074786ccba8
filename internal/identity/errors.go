package identity

import "errors"

var (
	// ErrAccessDenied covers every way the provider token can fail to prove
	// an identity: missing, rejected by the provider, or signup disabled for
	// an unknown external account. Callers surface it as a generic code.
	ErrAccessDenied = errors.New("access denied")
)
