package auth

import (
	"fmt"
	"net/url"

	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/notify"
)

// transientParams are the redirect query parameters consumed by
// [ConsumeRedirect]. They must be stripped from the visible location after
// consumption so a refresh does not replay the transition.
var transientParams = []string{
	Spotify.AuthParam(),
	YTMusic.AuthParam(),
	"token",
	"error",
	"message",
}

// Completed signals a provider's consent flow delivered a credential that was
// committed to the store.
type Completed struct {
	Provider   Provider
	OtherReady bool // whether the opposite provider was already authenticated
}

func (e Completed) Message() string {
	if e.OtherReady {
		return fmt.Sprintf("%s authentication successful! You can now transfer playlists.", e.Provider.DisplayName())
	}
	return fmt.Sprintf("%s authentication successful! Now authenticate with %s.", e.Provider.DisplayName(), e.Provider.Other().DisplayName())
}

// DecodeFailed signals a delivered redirect token could not be decoded or
// parsed. Nothing was stored; the provider's state is unchanged.
type DecodeFailed struct {
	Provider Provider
}

func (e DecodeFailed) Message() string {
	return fmt.Sprintf("Error processing %s authentication. Please try again.", e.Provider.DisplayName())
}

// FlowError signals the backend reported a consent-flow failure via the
// error/message redirect parameters. AuthState is untouched.
type FlowError struct {
	Code   string
	Detail string
}

func (e FlowError) Message() string {
	detail := e.Detail
	if detail == "" {
		detail = "Authentication failed"
	}
	return fmt.Sprintf("Authentication Error: %s", detail)
}

// Cleared signals an explicit user reset of all authentication state.
type Cleared struct{}

func (Cleared) Message() string {
	return "Authentication cleared. Please re-authenticate with both services."
}

// SessionStatus is the greeting derived from restored state at session start.
type SessionStatus struct {
	SourceReady bool
	DestReady   bool
}

func (e SessionStatus) Message() string {
	switch {
	case e.SourceReady && e.DestReady:
		return "Both services authenticated! You can now transfer playlists."
	case e.SourceReady || e.DestReady:
		return "Partial authentication complete. Please authenticate with both services."
	default:
		return "Welcome! Please authenticate with Spotify and YouTube Music."
	}
}

// ConsumeRedirect evaluates inbound redirect query parameters and commits any
// delivered credential to the store.
//
// All three redirect shapes are evaluated independently on every call — both
// providers' success cases and the error case — even though in practice a
// redirect carries at most one of them:
//
//  1. "{provider}_auth=success&token=<blob>": decode, parse, and store the
//     credential atomically; on failure nothing is written and the provider's
//     prior state stands.
//  2. "{provider}_auth=success" with no token: nothing is stored. A redirect
//     alone proves nothing, so the provider stays unauthenticated.
//  3. "error=<code>[&message=<text>]": reported to the user, state untouched.
//
// Returned events carry the user-facing outcome in arrival order; consumed
// reports whether any transient parameter was present (the caller must then
// strip them from the visible location).
func ConsumeRedirect(q url.Values, store Store) (events []notify.Event, consumed bool) {
	tracker := NewTracker(store)

	for _, provider := range Providers {
		if q.Get(provider.AuthParam()) != "success" {
			continue
		}
		consumed = true

		encoded := q.Get("token")
		if encoded == "" {
			// Fail closed: no credential delivered, nothing to mark.
			continue
		}

		cred, err := DecodeToken(encoded)
		if err != nil {
			events = append(events, DecodeFailed{Provider: provider})
			continue
		}

		if err := store.Put(provider, cred); err != nil {
			events = append(events, DecodeFailed{Provider: provider})
			continue
		}

		events = append(events, Completed{
			Provider:   provider,
			OtherReady: tracker.StatusOf(provider.Other()) == StatusAuthenticated,
		})
	}

	if code := q.Get("error"); code != "" {
		consumed = true
		events = append(events, FlowError{Code: code, Detail: q.Get("message")})
	}

	return events, consumed
}

// StripTransient returns a copy of q with all consumed redirect parameters
// removed, leaving unrelated parameters intact.
func StripTransient(q url.Values) url.Values {
	stripped := url.Values{}
	for key, vals := range q {
		stripped[key] = vals
	}
	for _, param := range transientParams {
		stripped.Del(param)
	}
	return stripped
}
