package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/auth"
	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/server"
	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/shared"
)

// loginTimeout bounds how long `auth login` waits for the browser consent
// flow to land on the local callback server.
const loginTimeout = 2 * time.Minute

// AuthLogin authenticates one provider: it starts the local callback server,
// opens the browser to the backend's authorize endpoint, and waits for the
// redirect to deliver a credential.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	providerArg := cmd.StringArg("provider")
	if providerArg == "" {
		return fmt.Errorf("%w: provider ('spotify' or 'ytmusic')", shared.ErrMissingArgument)
	}

	provider, err := auth.ParseProvider(providerArg)
	if err != nil {
		return err
	}

	store, err := r.ensureStore()
	if err != nil {
		return err
	}

	return r.doLogin(ctx, provider, store, cmd.Duration("timeout"))
}

// doLogin runs one provider's consent flow end to end.
func (r *Runner) doLogin(ctx context.Context, provider auth.Provider, store auth.Store, timeout time.Duration) error {
	handler := server.NewCallbackHandler(store, r.notifier, r.logger)

	router := server.NewBasicRouter()
	router.Use(server.RequestID(), server.LogRequests(r.logger))
	router.Handler(handler)

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()
	defer srv.Shutdown(context.Background())

	authURL := r.api.AuthorizeURL(provider)
	r.writePlain("Opening browser for %s authentication...\n", provider.DisplayName())
	r.writePlain("If the browser does not open, visit:\n  %s\n", authURL)

	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser", "error", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case err := <-serverErr:
			return fmt.Errorf("callback server failed: %w", err)
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return fmt.Errorf("%w: no callback received within %s", shared.ErrTimeout, timeout)
		case event := <-handler.Events():
			r.writePlainln("%s", event.Message())

			switch e := event.(type) {
			case auth.Completed:
				if e.Provider == provider {
					return nil
				}
			case auth.DecodeFailed:
				if e.Provider == provider {
					return fmt.Errorf("%w: could not decode the delivered token", shared.ErrAuthRejected)
				}
			case auth.FlowError:
				return fmt.Errorf("%w: %s", shared.ErrAuthRejected, e.Message())
			}
		}
	}
}

// AuthStatus shows authentication state for both providers.
//
// Expiry is shown when the stored credential carries one, purely as
// information: status never flips on expiry client-side, the backend is the
// judge of token validity at transfer time.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	store, err := r.ensureStore()
	if err != nil {
		return err
	}

	tracker := auth.NewTracker(store)

	if cmd.Bool("json") {
		data := map[string]any{}
		for _, provider := range auth.Providers {
			entry := map[string]any{
				"status": tracker.StatusOf(provider).String(),
			}
			if cred, err := store.Get(provider); err == nil && cred != nil && cred.ExpiresAt > 0 {
				entry["expires_at"] = cred.Token().Expiry.Format(time.RFC3339)
			}
			data[string(provider)] = entry
		}
		data["ready"] = tracker.Ready()
		return r.writeJSON(data, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Authentication Status")

	for _, provider := range auth.Providers {
		status := tracker.StatusOf(provider)

		mark := "✗"
		if status == auth.StatusAuthenticated {
			mark = "✓"
		}
		r.writePlain("%s %s: %s\n", mark, provider.DisplayName(), status)

		if cred, err := store.Get(provider); err == nil && cred != nil && cred.ExpiresAt > 0 {
			expiry := cred.Token().Expiry
			if expiry.Before(time.Now()) {
				r.writePlain("  Token expired %s (backend will refresh or reject at transfer time)\n", expiry.Format(time.RFC1123))
			} else {
				r.writePlain("  Token expires %s\n", expiry.Format(time.RFC1123))
			}
		}
	}

	if tracker.Ready() {
		r.writePlainln("Both services authenticated! You can now transfer playlists.")
	} else {
		r.writePlainln("Run 'auth login <provider>' for each unauthenticated service.")
	}

	return nil
}

// AuthReset clears stored credentials for both providers.
func (r *Runner) AuthReset(ctx context.Context, cmd *cli.Command) error {
	store, err := r.ensureStore()
	if err != nil {
		return err
	}

	if err := store.ClearAll(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	event := auth.Cleared{}
	r.notifier.Publish(event)
	r.logger.Info("credentials cleared")

	return r.writePlain("%s\n", event.Message())
}
