package server

import (
	"fmt"
	"html"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/auth"
	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/notify"
)

// CallbackHandler terminates backend consent flows.
// Implements the Handler interface for registration with a Router.
//
// The backend redirects the browser here with the flow result encoded in
// query parameters. The handler consumes them exactly once: delivered
// credentials are committed to the store, outcome events are published, and
// the response is a See Other redirect to the bare path with the transient
// parameters stripped, so a refresh of the landing page replays nothing.
type CallbackHandler struct {
	store    auth.Store
	notifier *notify.Notifier
	logger   *log.Logger
	events   chan notify.Event
}

// NewCallbackHandler creates a callback handler over the given store.
// Outcome events go to the notifier and to the [CallbackHandler.Events]
// channel.
func NewCallbackHandler(store auth.Store, notifier *notify.Notifier, logger *log.Logger) *CallbackHandler {
	if logger == nil {
		logger = log.Default()
	}

	return &CallbackHandler{
		store:    store,
		notifier: notifier,
		logger:   logger,
		events:   make(chan notify.Event, 8),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/"}
}

// Events returns the channel carrying each consumed redirect's outcome
// events. Used by the login flow to learn when a consent flow has landed.
// Events are dropped, not blocked on, when nobody is receiving.
func (h *CallbackHandler) Events() <-chan notify.Event {
	return h.events
}

// ServeHTTP consumes redirect parameters when present, otherwise renders the
// current authentication status page.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()

	events, consumed := auth.ConsumeRedirect(query, h.store)
	for _, event := range events {
		h.notifier.Publish(event)
		h.logger.Info("consumed redirect", "outcome", fmt.Sprintf("%T", event))

		select {
		case h.events <- event:
		default:
		}
	}

	if consumed {
		target := "/"
		if stripped := auth.StripTransient(query); len(stripped) > 0 {
			target += "?" + stripped.Encode()
		}

		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	h.renderStatus(w)
}

func (h *CallbackHandler) renderStatus(w http.ResponseWriter) {
	tracker := auth.NewTracker(h.store)

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)

	rows := ""
	for _, provider := range auth.Providers {
		status := tracker.StatusOf(provider)

		class := "pending"
		if status == auth.StatusAuthenticated {
			class = "done"
		}

		rows += fmt.Sprintf(`<p class=%q>%s: %s</p>`, class, html.EscapeString(provider.DisplayName()), html.EscapeString(status.String()))
	}

	message := h.notifier.Current()
	if message == "" {
		message = "Waiting for authentication..."
	}

	fmt.Fprintf(w, `
<!DOCTYPE html>
<html>
<head>
    <title>Spotify to YouTube Music</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0.25rem 0; }
        .done { color: #1DB954; }
        .pending { color: #b45309; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%s</h1>
        %s
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`, html.EscapeString(message), rows)
}
