// package auth implements dual-provider credential handling for the transfer client.
//
// Exactly two OAuth-protected providers exist: Spotify (the transfer source)
// and YouTube Music (the destination). The backend performs the OAuth dance
// and hands the resulting token back to this client as a base64-encoded JSON
// blob embedded in a redirect URL. This package decodes those blobs, persists
// them per provider, and derives authentication status from their presence.
package auth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/shared"
	"golang.org/x/oauth2"
)

// Provider identifies one of the two music services being linked.
//
// The set is fixed: transfers always run Spotify → YouTube Music.
type Provider string

const (
	// Spotify is the transfer source.
	Spotify Provider = "spotify"
	// YTMusic is the transfer destination.
	YTMusic Provider = "ytmusic"
)

// Providers lists both providers in source-first order.
var Providers = []Provider{Spotify, YTMusic}

// DisplayName returns the provider name as shown to the user.
func (p Provider) DisplayName() string {
	switch p {
	case Spotify:
		return "Spotify"
	case YTMusic:
		return "YouTube Music"
	default:
		return string(p)
	}
}

// AuthParam returns the redirect query parameter signalling a completed
// consent flow for this provider ("spotify_auth" or "ytmusic_auth").
func (p Provider) AuthParam() string {
	return string(p) + "_auth"
}

// Other returns the opposite provider.
func (p Provider) Other() Provider {
	if p == Spotify {
		return YTMusic
	}
	return Spotify
}

// ParseProvider converts a string into a Provider.
func ParseProvider(s string) (Provider, error) {
	switch s {
	case "spotify":
		return Spotify, nil
	case "ytmusic", "youtube", "yt":
		return YTMusic, nil
	default:
		return "", fmt.Errorf("%w: unknown provider '%s' (must be 'spotify' or 'ytmusic')", shared.ErrInvalidArgument, s)
	}
}

// Credential is the structured token payload delivered by the backend after a
// provider consent flow. Fields mirror what the backend's OAuth libraries
// emit; the client stores them as received and never synthesizes a credential
// on its own.
type Credential struct {
	AccessToken  string   `json:"access_token"`
	TokenType    string   `json:"token_type,omitempty"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	Scope        string   `json:"scope,omitempty"`
	Scopes       []string `json:"scopes,omitempty"`
	ExpiresIn    int64    `json:"expires_in,omitempty"`
	ExpiresAt    int64    `json:"expires_at,omitempty"`
}

// Validate checks structural validity. A credential without an access token
// proves nothing and is treated as corrupt.
func (c *Credential) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: credential is nil", shared.ErrInvalidCredentials)
	}
	if c.AccessToken == "" {
		return fmt.Errorf("%w: missing access_token", shared.ErrInvalidCredentials)
	}
	return nil
}

// Token converts the credential to an [oauth2.Token].
//
// Used for display only (e.g. expiry in `auth status`); authentication status
// is never derived from expiry client-side — the backend validates tokens at
// transfer time.
func (c *Credential) Token() *oauth2.Token {
	t := &oauth2.Token{
		AccessToken:  c.AccessToken,
		TokenType:    c.TokenType,
		RefreshToken: c.RefreshToken,
	}
	if c.ExpiresAt > 0 {
		t.Expiry = time.Unix(c.ExpiresAt, 0)
	}
	return t
}

// DecodeToken decodes a redirect token blob into a Credential.
//
// The blob is urlsafe base64 wrapping JSON (the backend uses Python's
// urlsafe_b64encode); standard-alphabet and unpadded encodings are accepted
// for compatibility. Any decode or parse failure returns a wrapped
// [shared.ErrDecodeFailed] and no credential.
func DecodeToken(encoded string) (*Credential, error) {
	if encoded == "" {
		return nil, fmt.Errorf("%w: empty token", shared.ErrDecodeFailed)
	}

	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		if raw, err = base64.RawURLEncoding.DecodeString(encoded); err != nil {
			if raw, err = base64.StdEncoding.DecodeString(encoded); err != nil {
				return nil, fmt.Errorf("%w: %v", shared.ErrDecodeFailed, err)
			}
		}
	}

	var cred Credential
	if err := json.Unmarshal(raw, &cred); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDecodeFailed, err)
	}

	if err := cred.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDecodeFailed, err)
	}

	return &cred, nil
}

// EncodeToken encodes a Credential into the redirect token transport encoding.
//
// Inverse of [DecodeToken]: decoding the result yields an equivalent credential.
func EncodeToken(cred *Credential) (string, error) {
	if err := cred.Validate(); err != nil {
		return "", err
	}

	raw, err := json.Marshal(cred)
	if err != nil {
		return "", fmt.Errorf("failed to marshal credential: %w", err)
	}

	return base64.URLEncoding.EncodeToString(raw), nil
}
