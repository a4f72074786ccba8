// Package oauth implements the provider-facing half of the bridge: the
// application state round-tripped through the provider and the authorization
// URL handed to the frontend.
package oauth

import (
	"encoding/json"
	"errors"
	"fmt"
)

// StateToken is the context the bridge threads through the provider redirect.
// It is serialized into the authorization URL's state parameter and comes
// back untouched on the callback. Short field names keep the URL compact.
type StateToken struct {
	Database   string `json:"d"`
	ProviderID int64  `json:"p"`
	RedirectTo string `json:"r"`
	Frontend   bool   `json:"frontend"`
}

var ErrMalformedState = errors.New("malformed state parameter")

// EncodeState serializes a StateToken for the authorization URL. The JSON is
// query-escaped by the URL encoder, so no further wrapping is needed.
func EncodeState(s StateToken) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode state: %w", err)
	}
	return string(raw), nil
}

// DecodeState parses the raw state parameter from a callback. Anything that
// is not a JSON object with the expected shape is an error; callers must not
// guess at half-parsed state.
func DecodeState(raw string) (*StateToken, error) {
	if raw == "" {
		return nil, ErrMalformedState
	}
	var s StateToken
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	return &s, nil
}
