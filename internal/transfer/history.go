package transfer

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/shared"
)

// HistoryEntry is one recorded transfer attempt.
type HistoryEntry struct {
	ID         string    `json:"id"`
	Playlist   string    `json:"playlist"`
	DestName   string    `json:"dest_name,omitempty"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	PlaylistID string    `json:"playlist_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// HistoryRepository persists transfer attempts to SQLite.
//
// Only attempts that reached the backend are recorded; locally rejected
// submissions (missing input, unauthenticated) never produce a row.
type HistoryRepository struct {
	db *sql.DB
}

const historySchema = `
CREATE TABLE IF NOT EXISTS transfers (
	id TEXT PRIMARY KEY,
	playlist TEXT NOT NULL,
	dest_name TEXT,
	status TEXT NOT NULL,
	message TEXT NOT NULL,
	playlist_id TEXT,
	created_at TIMESTAMP NOT NULL
)`

// NewHistoryRepository creates a HistoryRepository on the given database
// connection, initializing the schema if needed.
func NewHistoryRepository(db *sql.DB) (*HistoryRepository, error) {
	if _, err := db.Exec(historySchema); err != nil {
		return nil, fmt.Errorf("failed to initialize transfer history schema: %w", err)
	}
	return &HistoryRepository{db: db}, nil
}

// outcomeStatus names an outcome for the history table.
func outcomeStatus(outcome Outcome) string {
	switch outcome.(type) {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case AuthFailure:
		return "auth_failure"
	case Failure:
		return "failure"
	default:
		return "rejected"
	}
}

// Record inserts one attempt with a generated id.
func (r *HistoryRepository) Record(playlist, destName string, outcome Outcome) error {
	var playlistID string
	if success, ok := outcome.(Success); ok {
		playlistID = success.PlaylistID
	}

	query := `
		INSERT INTO transfers (id, playlist, dest_name, status, message, playlist_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		shared.GenerateID(),
		playlist,
		destName,
		outcomeStatus(outcome),
		outcome.Message(),
		playlistID,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to record transfer: %w", err)
	}

	return nil
}

// List returns up to limit attempts, most recent first.
func (r *HistoryRepository) List(limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, playlist, dest_name, status, message, playlist_id, created_at
		FROM transfers
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		var destName, playlistID sql.NullString

		if err := rows.Scan(&entry.ID, &entry.Playlist, &destName, &entry.Status, &entry.Message, &playlistID, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transfer history row: %w", err)
		}

		entry.DestName = destName.String
		entry.PlaylistID = playlistID.String
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transfer history: %w", err)
	}

	return entries, nil
}
