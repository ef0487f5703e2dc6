// package transfer implements the one-shot playlist transfer operation.
//
// The core abstraction is Orchestrator, which validates local preconditions,
// assembles the transfer request from stored credentials, submits it to the
// backend, and maps the response onto a closed set of [Outcome] variants so
// downstream rendering is exhaustive instead of probing optional fields.
package transfer

import (
	"encoding/json"
	"fmt"

	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/auth"
)

// Request is the transfer API request body. Credentials are inlined: this
// client is the credential custodian and the backend holds no session state.
//
// YTPlaylistName is omitted entirely when the user supplied no override; the
// backend then defaults to the source playlist's name.
type Request struct {
	PlaylistIdentifier string           `json:"playlist_identifier"`
	YTPlaylistName     string           `json:"yt_playlist_name,omitempty"`
	SpotifyToken       *auth.Credential `json:"spotify_token"`
	YTMusicToken       *auth.Credential `json:"ytmusic_token"`
}

// Response is the transfer API response body. All fields are optional on the
// wire; SongsAddedCount is a pointer because its absence and zero are
// different statements.
type Response struct {
	Message           string `json:"message"`
	PlaylistID        string `json:"playlist_id"`
	SongsAddedCount   *int   `json:"songs_added_count"`
	SpotifyTrackCount int    `json:"spotify_track_count"`
	Warning           string `json:"warning"`
	YTMusicStatus     any    `json:"status_from_ytmusicapi"`
	NotFoundLog       []any  `json:"not_found_log"`
	Error             string `json:"error"`
	Detail            string `json:"detail"`
}

// errText picks the best available diagnostic from an error response body:
// the structured error field, then the detail field, then a generic phrase.
func (r *Response) errText() string {
	if r.Error != "" {
		return r.Error
	}
	if r.Detail != "" {
		return r.Detail
	}
	return "Unknown error during transfer."
}

// Outcome is the closed set of transfer results. Every variant is a
// [notify.Event]; the orchestrator returns exactly one per attempt.
type Outcome interface {
	Message() string
	outcome()
}

// MissingInput rejects an attempt with no source playlist identifier.
// Resolved locally; no network call was made.
type MissingInput struct{}

func (MissingInput) outcome() {}
func (MissingInput) Message() string {
	return "Please enter a Spotify Playlist URL or ID."
}

// NotAuthenticated rejects an attempt while a provider has no stored
// credential. Resolved locally; no network call was made.
type NotAuthenticated struct {
	Provider auth.Provider
}

func (NotAuthenticated) outcome() {}
func (o NotAuthenticated) Message() string {
	return fmt.Sprintf("%s not authenticated. Please authenticate with %s first.", o.Provider.DisplayName(), o.Provider.DisplayName())
}

// CorruptCredentials reports that a stored credential failed to parse. The
// store has already evicted both entries; the user must re-authenticate.
type CorruptCredentials struct{}

func (CorruptCredentials) outcome() {}
func (CorruptCredentials) Message() string {
	return "Error parsing stored tokens. Please re-authenticate."
}

// Started marks the beginning of a submission.
type Started struct{}

func (Started) outcome() {}
func (Started) Message() string {
	return "Starting playlist transfer..."
}

// Success is a completed transfer. The rendered message is assembled from
// whichever detail fields the backend supplied.
type Success struct {
	ServerMessage string
	PlaylistID    string
	SongsAdded    int
	TrackTotal    int
	HasCounts     bool
}

func (Success) outcome() {}
func (o Success) Message() string {
	msg := o.ServerMessage
	if msg == "" {
		msg = "Playlist transfer process completed."
	}
	if o.PlaylistID != "" {
		msg += fmt.Sprintf(" YouTube Music Playlist ID: %s.", o.PlaylistID)
	}
	if o.HasCounts {
		msg += fmt.Sprintf(" Songs processed/added: %d/%d.", o.SongsAdded, o.TrackTotal)
	}
	return msg
}

// Warning is an HTTP-successful transfer where the backend flagged a partial
// result. Its text supersedes the success message entirely.
type Warning struct {
	Text   string
	Detail any
}

func (Warning) outcome() {}
func (o Warning) Message() string {
	detail, err := json.Marshal(o.Detail)
	if err != nil {
		detail = []byte("null")
	}
	return fmt.Sprintf("%s (Details: %s)", o.Text, string(detail))
}

// AuthFailure is an HTTP 401 rejection. By the time this outcome is returned
// both providers' credentials have been cleared: the client cannot tell which
// token the backend refused, so it fails closed on both.
type AuthFailure struct {
	Status    int
	ErrorText string
}

func (AuthFailure) outcome() {}
func (o AuthFailure) Message() string {
	return fmt.Sprintf("Error: %s (Status: %d)", o.ErrorText, o.Status)
}

// Failure is any other failed attempt. Status carries the HTTP status code,
// or 0 when no response was received at all (transport failure). AuthState is
// untouched either way, so the user can retry without re-authenticating.
type Failure struct {
	Text   string
	Status int
}

func (Failure) outcome() {}
func (o Failure) Message() string {
	if o.Status == 0 {
		return fmt.Sprintf("Transfer request failed: %s.", o.Text)
	}
	return fmt.Sprintf("Error: %s (Status: %d)", o.Text, o.Status)
}
