package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/auth"
	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/shared"
	tu "github.com/Prashant-koi/Spotify-to-ytmusic/internal/testing"
)

// newTestRunner builds a Runner over an in-memory store and a buffer,
// pointed at the given backend URL.
func newTestRunner(baseURL string, store auth.Store) (*Runner, *bytes.Buffer) {
	config := shared.DefaultConfig()
	if baseURL != "" {
		config.Backend.BaseURL = baseURL
	}

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: config,
		Store:  store,
		Logger: shared.NewLogger(io.Discard),
		Output: output,
	})

	return runner, output
}

// run invokes the CLI with the given arguments.
func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()

	app := &cli.Command{
		Name:     "s2yt",
		Commands: r.register(),
	}

	return app.Run(context.Background(), append([]string{"s2yt"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			store := auth.NewMemoryStore()

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Store:      store,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.store != store {
				t.Error("expected store to be set")
			}
			if runner.api == nil {
				t.Error("expected API client to be constructed")
			}
			if runner.notifier == nil {
				t.Error("expected notifier to be constructed")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("injected store is reused", func(t *testing.T) {
			store := auth.NewMemoryStore()
			runner := NewRunner(RunnerOpts{Store: store})

			got, err := runner.ensureStore()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != auth.Store(store) {
				t.Error("expected injected store back from ensureStore")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			runner, output := newTestRunner("", nil)

			data := map[string]string{"key": "value"}
			if err := runner.writeJSON(data, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			runner, output := newTestRunner("", nil)

			data := map[string]string{"key": "value"}
			if err := runner.writeJSON(data, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if !strings.Contains(output.String(), `{"key":"value"}`) {
				t.Errorf("expected compact JSON, got %s", output.String())
			}
		})

		t.Run("returns error when writer fails", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}, Logger: shared.NewLogger(io.Discard)})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err == nil {
				t.Error("expected write error")
			}
		})

		t.Run("returns error when newline write fails", func(t *testing.T) {
			lw := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &lw, Logger: shared.NewLogger(io.Discard)})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err == nil {
				t.Error("expected newline write error")
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("formats and writes text", func(t *testing.T) {
			runner, output := newTestRunner("", nil)

			if err := runner.writePlain("hello %s\n", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("returns error when writer fails", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}, Logger: shared.NewLogger(io.Discard)})

			if err := runner.writePlain("hello"); err == nil {
				t.Error("expected write error")
			}
		})
	})
}

func TestAuthCommands(t *testing.T) {
	t.Run("status lists both providers unauthenticated", func(t *testing.T) {
		runner, output := newTestRunner("", auth.NewMemoryStore())

		if err := run(t, runner, "auth", "status"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "✗ Spotify: Not Authenticated") {
			t.Errorf("expected spotify status line, got:\n%s", result)
		}
		if !strings.Contains(result, "✗ YouTube Music: Not Authenticated") {
			t.Errorf("expected ytmusic status line, got:\n%s", result)
		}
	})

	t.Run("status reflects stored credentials", func(t *testing.T) {
		store := auth.NewMemoryStore()
		store.Put(auth.Spotify, &auth.Credential{AccessToken: "sp"})
		store.Put(auth.YTMusic, &auth.Credential{AccessToken: "yt"})
		runner, output := newTestRunner("", store)

		if err := run(t, runner, "auth", "status"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "✓ Spotify: Authenticated") {
			t.Errorf("expected authenticated spotify, got:\n%s", result)
		}
		if !strings.Contains(result, "Both services authenticated!") {
			t.Errorf("expected ready message, got:\n%s", result)
		}
	})

	t.Run("status json includes ready flag", func(t *testing.T) {
		runner, output := newTestRunner("", auth.NewMemoryStore())

		if err := run(t, runner, "auth", "status", "--json"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result := output.String()
		if !strings.Contains(result, `"ready": false`) {
			t.Errorf("expected ready flag in JSON, got:\n%s", result)
		}
	})

	t.Run("reset clears both providers", func(t *testing.T) {
		store := auth.NewMemoryStore()
		store.Put(auth.Spotify, &auth.Credential{AccessToken: "sp"})
		store.Put(auth.YTMusic, &auth.Credential{AccessToken: "yt"})
		runner, output := newTestRunner("", store)

		if err := run(t, runner, "auth", "reset"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, p := range auth.Providers {
			if cred, _ := store.Get(p); cred != nil {
				t.Errorf("expected %s credential cleared", p)
			}
		}

		if !strings.Contains(output.String(), "Authentication cleared.") {
			t.Errorf("expected cleared message, got:\n%s", output.String())
		}
	})

	t.Run("login rejects unknown provider", func(t *testing.T) {
		runner, _ := newTestRunner("", auth.NewMemoryStore())

		err := run(t, runner, "auth", "login", "tidal")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("login requires a provider", func(t *testing.T) {
		runner, _ := newTestRunner("", auth.NewMemoryStore())

		err := run(t, runner, "auth", "login")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestTransferCommand(t *testing.T) {
	seed := func(t *testing.T) *auth.MemoryStore {
		t.Helper()
		store := auth.NewMemoryStore()
		store.Put(auth.Spotify, &auth.Credential{AccessToken: "sp"})
		store.Put(auth.YTMusic, &auth.Credential{AccessToken: "yt"})
		return store
	}

	t.Run("successful transfer prints summary", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"message": "Transfer complete.", "playlist_id": "PL1", "songs_added_count": 9, "spotify_track_count": 10}`)
		}))
		defer srv.Close()

		runner, output := newTestRunner(srv.URL, seed(t))

		if err := run(t, runner, "transfer", "run", "playlist-id", "--name", "Mix"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Transfer Complete!") {
			t.Errorf("expected header, got:\n%s", result)
		}
		if !strings.Contains(result, "Songs processed/added: 9/10.") {
			t.Errorf("expected counts, got:\n%s", result)
		}
	})

	t.Run("json output", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"playlist_id": "PL1"}`)
		}))
		defer srv.Close()

		runner, output := newTestRunner(srv.URL, seed(t))

		if err := run(t, runner, "transfer", "run", "playlist-id", "--json"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result := output.String()
		if !strings.Contains(result, `"status":"success"`) {
			t.Errorf("expected success status, got:\n%s", result)
		}
		if !strings.Contains(result, `"playlist_id":"PL1"`) {
			t.Errorf("expected playlist id, got:\n%s", result)
		}
	})

	t.Run("missing playlist argument", func(t *testing.T) {
		runner, _ := newTestRunner("", seed(t))

		err := run(t, runner, "transfer", "run")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("unauthenticated provider fails", func(t *testing.T) {
		runner, output := newTestRunner("", auth.NewMemoryStore())

		err := run(t, runner, "transfer", "run", "playlist-id")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if !strings.Contains(output.String(), "Spotify not authenticated.") {
			t.Errorf("expected message, got:\n%s", output.String())
		}
	})

	t.Run("backend rejection clears credentials", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"error": "Invalid or expired token"}`)
		}))
		defer srv.Close()

		store := seed(t)
		runner, output := newTestRunner(srv.URL, store)

		err := run(t, runner, "transfer", "run", "playlist-id")
		if !errors.Is(err, shared.ErrAuthRejected) {
			t.Errorf("expected ErrAuthRejected, got %v", err)
		}
		if !strings.Contains(output.String(), "Error: Invalid or expired token (Status: 401)") {
			t.Errorf("expected rejection message, got:\n%s", output.String())
		}

		for _, p := range auth.Providers {
			if cred, _ := store.Get(p); cred != nil {
				t.Errorf("expected %s credential cleared", p)
			}
		}
	})
}
