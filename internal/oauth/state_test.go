package oauth

import (
	"errors"
	"testing"
)

func TestStateRoundTrip(t *testing.T) {
	in := StateToken{
		Database:   "odoo",
		ProviderID: 3,
		RedirectTo: "http://localhost:3000/oauth-callback",
		Frontend:   true,
	}

	raw, err := EncodeState(in)
	if err != nil {
		t.Fatalf("EncodeState error: %v", err)
	}

	out, err := DecodeState(raw)
	if err != nil {
		t.Fatalf("DecodeState error: %v", err)
	}
	if *out != in {
		t.Errorf("state round trip mismatch: got %+v, want %+v", *out, in)
	}
}

func TestDecodeState_Malformed(t *testing.T) {
	for _, raw := range []string{"", "not-json", `{"d": "odoo", "p":`, `[1,2,3]`} {
		if _, err := DecodeState(raw); !errors.Is(err, ErrMalformedState) {
			t.Errorf("DecodeState(%q) = %v, want ErrMalformedState", raw, err)
		}
	}
}

func TestDecodeState_MissingFrontendFlag(t *testing.T) {
	// A well-formed state without the discriminator is a valid legacy-flow
	// token, not a decode error.
	out, err := DecodeState(`{"d": "odoo", "p": 3, "r": "http://example.com"}`)
	if err != nil {
		t.Fatalf("DecodeState error: %v", err)
	}
	if out.Frontend {
		t.Error("frontend flag should default to false")
	}
}
