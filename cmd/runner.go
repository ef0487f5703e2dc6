package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/auth"
	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/notify"
	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/services"
	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/shared"
	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/transfer"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	api        *services.APIClient
	notifier   *notify.Notifier
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	// lazily opened; nil until a command needs credential state
	db           *sql.DB
	store        auth.Store
	orchestrator *transfer.Orchestrator
	history      *transfer.HistoryRepository
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Store      auth.Store
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
//
// The credential store is not opened here: commands that need it call
// [Runner.ensureStore], so read-only invocations (help, version) never touch
// the database file. Tests inject an [auth.MemoryStore] via [RunnerOpts.Store].
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: time.Duration(opts.Config.Backend.TimeoutSeconds) * time.Second,
		}
	}

	api := services.NewAPIClient(opts.Config.Backend.BaseURL, opts.HTTPClient, opts.Config.Backend.RateLimit)

	return &Runner{
		config:     opts.Config,
		api:        api,
		notifier:   notify.NewNotifier(),
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		store:      opts.Store,
	}
}

// SetLogger replaces the Runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// ensureStore opens the credential store on first use.
func (r *Runner) ensureStore() (auth.Store, error) {
	if r.store != nil {
		return r.store, nil
	}

	db, err := shared.NewDatabase(r.config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential database: %w", err)
	}

	store, err := auth.NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	r.db = db
	r.store = store
	return store, nil
}

// ensureOrchestrator builds the transfer orchestrator on first use.
func (r *Runner) ensureOrchestrator() (*transfer.Orchestrator, error) {
	if r.orchestrator != nil {
		return r.orchestrator, nil
	}

	store, err := r.ensureStore()
	if err != nil {
		return nil, err
	}

	r.orchestrator = transfer.NewOrchestrator(store, r.api, r.logger)

	if history, err := r.ensureHistory(); err == nil && history != nil {
		r.orchestrator.SetHistory(history)
	} else if err != nil {
		r.logger.Warn("transfer history unavailable", "error", err)
	}

	return r.orchestrator, nil
}

// ensureHistory builds the transfer history repository on first use. Returns
// (nil, nil) when the Runner holds no database connection (injected store).
func (r *Runner) ensureHistory() (*transfer.HistoryRepository, error) {
	if r.history != nil {
		return r.history, nil
	}
	if r.db == nil {
		return nil, nil
	}

	history, err := transfer.NewHistoryRepository(r.db)
	if err != nil {
		return nil, err
	}

	r.history = history
	return history, nil
}

// Close releases the credential database if it was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, transferCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
