package auth

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/shared"
)

// Store persists one credential per provider, keyed by provider id.
//
// Implementations confine side effects to the durable layer; no network
// calls. Business logic receives a Store, never a concrete backend, so tests
// substitute [MemoryStore].
//
// A corrupt stored value is never returned partially: Get evicts BOTH
// providers' entries (a future transfer needs both credentials, so one
// unreadable entry invalidates the whole session) and signals the parse
// failure upward as a wrapped [shared.ErrInvalidCredentials].
type Store interface {
	// Put persists the credential for the provider, overwriting any prior value.
	Put(provider Provider, cred *Credential) error
	// Get returns the stored credential, or (nil, nil) when absent.
	Get(provider Provider) (*Credential, error)
	// Clear removes the provider's credential. Idempotent.
	Clear(provider Provider) error
	// ClearAll removes both providers' credentials. Idempotent.
	ClearAll() error
}

// SQLiteStore is the durable [Store] implementation.
//
// Layout is two independently keyed rows, one per provider, each holding the
// JSON-serialized credential; absence of a row means unauthenticated.
type SQLiteStore struct {
	db *sql.DB
}

const credentialsSchema = `
CREATE TABLE IF NOT EXISTS credentials (
	provider TEXT PRIMARY KEY,
	token TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// NewSQLiteStore creates a SQLiteStore on the given database connection,
// initializing the schema if needed.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.Exec(credentialsSchema); err != nil {
		return nil, fmt.Errorf("failed to initialize credentials schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Put serializes and stores the credential, overwriting any prior row.
func (s *SQLiteStore) Put(provider Provider, cred *Credential) error {
	if err := cred.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to serialize credential: %w", err)
	}

	query := `
		INSERT INTO credentials (provider, token, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at
	`
	if _, err := s.db.Exec(query, string(provider), string(data), time.Now()); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}

	return nil
}

// Get returns the provider's credential, (nil, nil) when no row exists, or an
// error after evicting both rows when the stored value fails to parse.
func (s *SQLiteStore) Get(provider Provider) (*Credential, error) {
	var token string
	err := s.db.QueryRow(`SELECT token FROM credentials WHERE provider = ?`, string(provider)).Scan(&token)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query credential: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal([]byte(token), &cred); err != nil {
		s.ClearAll()
		return nil, fmt.Errorf("%w: stored %s credential is corrupt: %v", shared.ErrInvalidCredentials, provider, err)
	}
	if err := cred.Validate(); err != nil {
		s.ClearAll()
		return nil, fmt.Errorf("%w: stored %s credential is corrupt", shared.ErrInvalidCredentials, provider)
	}

	return &cred, nil
}

// Clear removes the provider's row.
func (s *SQLiteStore) Clear(provider Provider) error {
	if _, err := s.db.Exec(`DELETE FROM credentials WHERE provider = ?`, string(provider)); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	return nil
}

// ClearAll removes every row.
func (s *SQLiteStore) ClearAll() error {
	if _, err := s.db.Exec(`DELETE FROM credentials`); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// MemoryStore is an in-memory [Store] with the same eviction semantics as
// [SQLiteStore]. Used in tests and anywhere durability is not wanted.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[Provider]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[Provider]string)}
}

// Put serializes and stores the credential.
func (s *MemoryStore) Put(provider Provider, cred *Credential) error {
	if err := cred.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to serialize credential: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[provider] = string(data)
	return nil
}

// PutRaw stores an arbitrary blob for the provider, bypassing validation.
// Exists so tests can exercise corrupt-entry recovery.
func (s *MemoryStore) PutRaw(provider Provider, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[provider] = raw
}

// Get returns the provider's credential, (nil, nil) when absent, or an error
// after evicting both entries when the stored blob fails to parse.
func (s *MemoryStore) Get(provider Provider) (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.entries[provider]
	if !ok {
		return nil, nil
	}

	var cred Credential
	if err := json.Unmarshal([]byte(raw), &cred); err != nil {
		s.entries = make(map[Provider]string)
		return nil, fmt.Errorf("%w: stored %s credential is corrupt: %v", shared.ErrInvalidCredentials, provider, err)
	}
	if err := cred.Validate(); err != nil {
		s.entries = make(map[Provider]string)
		return nil, fmt.Errorf("%w: stored %s credential is corrupt", shared.ErrInvalidCredentials, provider)
	}

	return &cred, nil
}

// Clear removes the provider's entry.
func (s *MemoryStore) Clear(provider Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, provider)
	return nil
}

// ClearAll removes every entry.
func (s *MemoryStore) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[Provider]string)
	return nil
}
