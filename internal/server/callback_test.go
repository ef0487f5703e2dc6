package server_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/auth"
	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/notify"
	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/server"
	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/shared"
)

func encodeCredential(t *testing.T, token string) string {
	t.Helper()

	encoded, err := auth.EncodeToken(&auth.Credential{AccessToken: token})
	if err != nil {
		t.Fatalf("encoding credential: %v", err)
	}
	return encoded
}

func newCallbackServer(t *testing.T) (*auth.MemoryStore, *notify.Notifier, *server.CallbackHandler, *httptest.Server) {
	t.Helper()

	store := auth.NewMemoryStore()
	notifier := notify.NewNotifier()
	handler := server.NewCallbackHandler(store, notifier, shared.NewLogger(io.Discard))

	router := server.NewBasicRouter()
	router.Use(server.RequestID(), server.LogRequests(shared.NewLogger(io.Discard)))
	router.Handler(handler)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return store, notifier, handler, srv
}

// get fetches a URL without following redirects.
func get(t *testing.T, rawURL string) *http.Response {
	t.Helper()

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Get(rawURL)
	if err != nil {
		t.Fatalf("GET %s: %v", rawURL, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func TestCallbackHandler(t *testing.T) {
	t.Run("successful redirect stores credential and strips parameters", func(t *testing.T) {
		store, notifier, handler, srv := newCallbackServer(t)

		token := encodeCredential(t, "spotify-access")
		resp := get(t, srv.URL+"/?spotify_auth=success&token="+url.QueryEscape(token))

		if resp.StatusCode != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); loc != "/" {
			t.Errorf("expected redirect to bare path, got %q", loc)
		}
		if resp.Header.Get("X-Request-ID") == "" {
			t.Error("expected request id header")
		}

		cred, err := store.Get(auth.Spotify)
		if err != nil || cred == nil {
			t.Fatalf("expected stored spotify credential, got (%v, %v)", cred, err)
		}
		if cred.AccessToken != "spotify-access" {
			t.Errorf("unexpected access token %q", cred.AccessToken)
		}

		want := "Spotify authentication successful! Now authenticate with YouTube Music."
		if notifier.Current() != want {
			t.Errorf("notifier message = %q, want %q", notifier.Current(), want)
		}

		select {
		case event := <-handler.Events():
			completed, ok := event.(auth.Completed)
			if !ok {
				t.Fatalf("expected Completed event, got %T", event)
			}
			if completed.Provider != auth.Spotify {
				t.Errorf("expected spotify, got %s", completed.Provider)
			}
		default:
			t.Error("expected an event on the channel")
		}
	})

	t.Run("second provider completes the pair", func(t *testing.T) {
		store, notifier, _, srv := newCallbackServer(t)
		store.Put(auth.Spotify, &auth.Credential{AccessToken: "spotify-access"})

		token := encodeCredential(t, "ytmusic-access")
		get(t, srv.URL+"/?ytmusic_auth=success&token="+url.QueryEscape(token))

		want := "YouTube Music authentication successful! You can now transfer playlists."
		if notifier.Current() != want {
			t.Errorf("notifier message = %q, want %q", notifier.Current(), want)
		}
	})

	t.Run("following the redirect replays nothing", func(t *testing.T) {
		store, notifier, _, srv := newCallbackServer(t)

		token := encodeCredential(t, "spotify-access")
		resp := get(t, srv.URL+"/?spotify_auth=success&token="+url.QueryEscape(token))

		// Simulate the browser landing on the stripped location, then
		// clear state to prove the landing consumes nothing.
		notifier.Clear()
		store.ClearAll()

		landing := get(t, srv.URL+resp.Header.Get("Location"))
		if landing.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 on landing page, got %d", landing.StatusCode)
		}

		if notifier.Current() != "" {
			t.Errorf("expected no replayed event, got %q", notifier.Current())
		}
		if cred, _ := store.Get(auth.Spotify); cred != nil {
			t.Error("expected no replayed credential write")
		}
	})

	t.Run("tokenless success stores nothing", func(t *testing.T) {
		store, notifier, _, srv := newCallbackServer(t)

		resp := get(t, srv.URL+"/?spotify_auth=success")
		if resp.StatusCode != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", resp.StatusCode)
		}

		if cred, _ := store.Get(auth.Spotify); cred != nil {
			t.Error("expected no stored credential without a token")
		}
		if notifier.Current() != "" {
			t.Errorf("expected no event, got %q", notifier.Current())
		}
	})

	t.Run("undecodable token reports an error", func(t *testing.T) {
		store, notifier, _, srv := newCallbackServer(t)

		get(t, srv.URL+"/?spotify_auth=success&token=%21%21not-base64")

		if cred, _ := store.Get(auth.Spotify); cred != nil {
			t.Error("expected no stored credential")
		}

		want := "Error processing Spotify authentication. Please try again."
		if notifier.Current() != want {
			t.Errorf("notifier message = %q, want %q", notifier.Current(), want)
		}
	})

	t.Run("flow error surfaces backend message", func(t *testing.T) {
		_, notifier, _, srv := newCallbackServer(t)

		get(t, srv.URL+"/?error=access_denied&message="+url.QueryEscape("User denied access"))

		if notifier.Current() != "Authentication Error: User denied access" {
			t.Errorf("unexpected message %q", notifier.Current())
		}
	})

	t.Run("unrelated parameters survive the strip", func(t *testing.T) {
		_, _, _, srv := newCallbackServer(t)

		token := encodeCredential(t, "spotify-access")
		resp := get(t, srv.URL+"/?spotify_auth=success&token="+url.QueryEscape(token)+"&theme=dark")

		if loc := resp.Header.Get("Location"); loc != "/?theme=dark" {
			t.Errorf("expected unrelated parameter preserved, got %q", loc)
		}
	})

	t.Run("status page renders provider state", func(t *testing.T) {
		store, _, _, srv := newCallbackServer(t)
		store.Put(auth.Spotify, &auth.Credential{AccessToken: "spotify-access"})

		resp := get(t, srv.URL+"/")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("reading body: %v", err)
		}

		page := string(body)
		if !strings.Contains(page, "Spotify: Authenticated") {
			t.Errorf("expected spotify status in page, got:\n%s", page)
		}
		if !strings.Contains(page, "YouTube Music: Not Authenticated") {
			t.Errorf("expected ytmusic status in page, got:\n%s", page)
		}
	})

	t.Run("unknown path is not found", func(t *testing.T) {
		_, _, _, srv := newCallbackServer(t)

		resp := get(t, srv.URL+"/anything-else")
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})
}
