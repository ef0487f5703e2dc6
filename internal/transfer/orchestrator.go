package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/auth"
	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/services"
	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/shared"
)

// Client submits a transfer payload to the backend. Satisfied by
// [services.APIClient].
type Client interface {
	Transfer(ctx context.Context, payload []byte) (*services.APIResponse, error)
}

// Orchestrator runs playlist transfers. At most one transfer is in flight at
// a time; concurrent Run calls past the first fail with
// [shared.ErrTransferInFlight] instead of queueing.
type Orchestrator struct {
	store    auth.Store
	client   Client
	logger   *log.Logger
	history  *HistoryRepository
	inFlight atomic.Bool
}

// NewOrchestrator builds an Orchestrator over a credential store and an API
// client.
func NewOrchestrator(store auth.Store, client Client, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}

	return &Orchestrator{
		store:  store,
		client: client,
		logger: logger,
	}
}

// SetHistory attaches a history repository; every attempt that reaches the
// backend is then recorded.
func (o *Orchestrator) SetHistory(history *HistoryRepository) {
	o.history = history
}

// InFlight reports whether a transfer is currently running.
func (o *Orchestrator) InFlight() bool {
	return o.inFlight.Load()
}

// Run executes a single transfer of the playlist named by identifier (a
// Spotify playlist URL or bare ID) into a YouTube Music playlist, optionally
// named destName.
//
// Preconditions are checked locally before any network traffic: a non-empty
// identifier, then a stored credential for each provider. A violated
// precondition returns the matching Outcome with no request sent. The error
// return is reserved for invocation problems (another transfer in flight,
// request assembly); every backend or transport result is expressed as an
// Outcome with a nil error.
func (o *Orchestrator) Run(ctx context.Context, identifier, destName string) (Outcome, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, shared.ErrTransferInFlight
	}
	defer o.inFlight.Store(false)

	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return MissingInput{}, nil
	}

	spotifyCred, err := o.store.Get(auth.Spotify)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			return CorruptCredentials{}, nil
		}

		return nil, err
	}

	if spotifyCred == nil {
		return NotAuthenticated{Provider: auth.Spotify}, nil
	}

	ytCred, err := o.store.Get(auth.YTMusic)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			return CorruptCredentials{}, nil
		}

		return nil, err
	}

	if ytCred == nil {
		return NotAuthenticated{Provider: auth.YTMusic}, nil
	}

	payload, err := json.Marshal(Request{
		PlaylistIdentifier: identifier,
		YTPlaylistName:     strings.TrimSpace(destName),
		SpotifyToken:       spotifyCred,
		YTMusicToken:       ytCred,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrInvalidInput, err.Error())
	}

	o.logger.Info("starting transfer", "playlist", identifier)

	apiResp, err := o.client.Transfer(ctx, payload)
	if err != nil {
		o.logger.Error("transfer request failed", "error", err)

		return o.record(identifier, destName, Failure{Text: err.Error()}), nil
	}

	var resp Response
	if len(apiResp.Body) > 0 {
		// A body that fails to decode is treated as absent; the status
		// code still decides the outcome.
		if err := json.Unmarshal(apiResp.Body, &resp); err != nil {
			o.logger.Warn("undecodable transfer response", "status", apiResp.StatusCode, "error", err)
		}
	}

	return o.record(identifier, destName, o.resolve(apiResp.StatusCode, &resp)), nil
}

// record writes the attempt to history when a repository is attached.
func (o *Orchestrator) record(identifier, destName string, outcome Outcome) Outcome {
	if o.history == nil {
		return outcome
	}

	if err := o.history.Record(identifier, destName, outcome); err != nil {
		o.logger.Warn("failed to record transfer history", "error", err)
	}

	return outcome
}

// resolve maps a decoded backend response onto an Outcome.
func (o *Orchestrator) resolve(status int, resp *Response) Outcome {
	if status >= 200 && status < 300 {
		if len(resp.NotFoundLog) > 0 {
			// Diagnostic only. Unmatched songs never surface in the
			// user-facing result.
			o.logger.Warn("songs not found on YouTube Music", "count", len(resp.NotFoundLog), "songs", resp.NotFoundLog)
		}

		if resp.Warning != "" {
			return Warning{Text: resp.Warning, Detail: resp.YTMusicStatus}
		}

		out := Success{
			ServerMessage: resp.Message,
			PlaylistID:    resp.PlaylistID,
			TrackTotal:    resp.SpotifyTrackCount,
		}

		if resp.SongsAddedCount != nil {
			out.HasCounts = true
			out.SongsAdded = *resp.SongsAddedCount
		}

		return out
	}

	if status == 401 {
		// The backend refused a token but not which one; drop both so
		// the next attempt starts from a clean slate.
		if err := o.store.ClearAll(); err != nil {
			o.logger.Error("failed to clear credentials", "error", err)
		}

		return AuthFailure{Status: status, ErrorText: resp.errText()}
	}

	return Failure{Text: resp.errText(), Status: status}
}
