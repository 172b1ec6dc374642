package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// HistoryRepository persists committed search selections.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new HistoryRepository with the given database connection
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Record inserts a history entry for a committed search selection.
func (r *HistoryRepository) Record(query string, result models.SearchResult) (*models.HistoryEntry, error) {
	entry := &models.HistoryEntry{
		ID:               shared.GenerateID(),
		Query:            query,
		DiscogsReleaseID: result.ID,
		Title:            result.Title,
		Year:             result.Year,
		Format:           result.Format,
		Label:            result.Label,
		SearchedAt:       time.Now().UTC(),
	}

	stmt := `
		INSERT INTO search_history (id, query, discogs_release_id, title, year, format, label, searched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(stmt,
		entry.ID,
		entry.Query,
		entry.DiscogsReleaseID,
		entry.Title,
		nullableInt(entry.Year),
		nullableString(entry.Format),
		nullableString(entry.Label),
		entry.SearchedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert history entry: %w", err)
	}

	return entry, nil
}

// Recent returns the most recent history entries, newest first.
func (r *HistoryRepository) Recent(limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, query, discogs_release_id, title, year, format, label, searched_at
		FROM search_history
		ORDER BY searched_at DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var entry models.HistoryEntry
		var year sql.NullInt64
		var format, label sql.NullString

		err := rows.Scan(
			&entry.ID,
			&entry.Query,
			&entry.DiscogsReleaseID,
			&entry.Title,
			&year,
			&format,
			&label,
			&entry.SearchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		entry.Year = int(year.Int64)
		entry.Format = format.String
		entry.Label = label.String
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}

	return entries, nil
}

// Clear removes all history entries and reports how many were deleted.
func (r *HistoryRepository) Clear() (int64, error) {
	result, err := r.db.Exec("DELETE FROM search_history")
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted rows: %w", err)
	}

	return deleted, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
