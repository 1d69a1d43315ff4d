/*
Package history persists conversation exchanges in SQLite.

It follows the same shape as the rest of the system's storage: a schema
setup function to call once per database, a Store that pre-compiles its
SQL statements, and an injectable slog.Logger that discards by default.
The store backs the console's history, export, and train-from-history
features; trained n-gram models themselves are never persisted.
*/
package history

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Exchange is a single recorded input/response pair.
type Exchange struct {
	ID        string    `json:"id"`
	Input     string    `json:"input"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// SetupSchema initializes the conversation history table in the provided
// database. It is idempotent and safe to call on an already-initialized
// database.
func SetupSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS conversation_history (
    exchange_id TEXT PRIMARY KEY,
    input TEXT NOT NULL,
    response TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("could not create history schema: %w", err)
	}
	return nil
}

// Store provides access to the conversation history. It holds the database
// connection and prepared SQL statements for efficient interaction.
type Store struct {
	db         *sql.DB
	stmtInsert *sql.Stmt
	stmtRecent *sql.Stmt
	stmtAll    *sql.Stmt
	stmtCount  *sql.Stmt
	stmtClear  *sql.Stmt
	logger     *slog.Logger
}

// NewStore creates and returns a new Store. It pre-compiles all necessary
// SQL statements, returning an error if any preparation fails.
func NewStore(db *sql.DB) (*Store, error) {
	stmtInsert, err := db.Prepare(`INSERT INTO conversation_history (exchange_id, input, response, created_at) VALUES (?, ?, ?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtRecent, err := db.Prepare(`SELECT exchange_id, input, response, created_at FROM conversation_history ORDER BY rowid DESC LIMIT ?;`)
	if err != nil {
		return nil, err
	}

	stmtAll, err := db.Prepare(`SELECT exchange_id, input, response, created_at FROM conversation_history ORDER BY rowid;`)
	if err != nil {
		return nil, err
	}

	stmtCount, err := db.Prepare(`SELECT COUNT(*) FROM conversation_history;`)
	if err != nil {
		return nil, err
	}

	stmtClear, err := db.Prepare(`DELETE FROM conversation_history;`)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:         db,
		stmtInsert: stmtInsert,
		stmtRecent: stmtRecent,
		stmtAll:    stmtAll,
		stmtCount:  stmtCount,
		stmtClear:  stmtClear,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Close releases all prepared SQL statements held by the Store. It should
// be called when the Store is no longer needed.
func (s *Store) Close() {
	_ = s.stmtInsert.Close()
	_ = s.stmtRecent.Close()
	_ = s.stmtAll.Close()
	_ = s.stmtCount.Close()
	_ = s.stmtClear.Close()
}

// SetLogger sets the logger for the Store. By default, all logs are
// discarded.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Append records a new exchange and returns it with its assigned ID and
// timestamp.
func (s *Store) Append(ctx context.Context, input, response string) (Exchange, error) {
	ex := Exchange{
		ID:        uuid.NewString(),
		Input:     input,
		Response:  response,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if _, err := s.stmtInsert.ExecContext(ctx, ex.ID, ex.Input, ex.Response, ex.CreatedAt.Unix()); err != nil {
		return Exchange{}, fmt.Errorf("could not insert exchange: %w", err)
	}

	s.logger.DebugContext(ctx, "Exchange recorded", slog.String("exchange_id", ex.ID))
	return ex, nil
}

// Recent returns up to limit of the most recent exchanges, oldest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Exchange, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.stmtRecent.QueryContext(ctx, limit)
	if err != nil {
		return nil, err
	}
	exchanges, err := scanExchanges(rows)
	if err != nil {
		return nil, err
	}
	// The query walks newest-first to honor the limit; flip back to
	// chronological order for the caller.
	for i, j := 0, len(exchanges)-1; i < j; i, j = i+1, j-1 {
		exchanges[i], exchanges[j] = exchanges[j], exchanges[i]
	}
	return exchanges, nil
}

// All returns every recorded exchange in chronological order.
func (s *Store) All(ctx context.Context) ([]Exchange, error) {
	rows, err := s.stmtAll.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	return scanExchanges(rows)
}

// Count returns the number of recorded exchanges.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.stmtCount.QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Clear removes all stored exchanges.
func (s *Store) Clear(ctx context.Context) error {
	res, err := s.stmtClear.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not clear history: %w", err)
	}
	removed, _ := res.RowsAffected()
	s.logger.InfoContext(ctx, "Conversation history cleared", slog.Int64("exchanges_removed", removed))
	return nil
}

// Corpus concatenates every input and response into a single text blob,
// for training n-gram models from the conversation history.
func (s *Store) Corpus(ctx context.Context) (string, error) {
	exchanges, err := s.All(ctx)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for i, ex := range exchanges {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(ex.Input)
		sb.WriteString(" ")
		sb.WriteString(ex.Response)
	}
	return sb.String(), nil
}

func scanExchanges(rows *sql.Rows) ([]Exchange, error) {
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var exchanges []Exchange
	for rows.Next() {
		var ex Exchange
		var createdAt int64
		if err := rows.Scan(&ex.ID, &ex.Input, &ex.Response, &createdAt); err != nil {
			return nil, err
		}
		ex.CreatedAt = time.Unix(createdAt, 0).UTC()
		exchanges = append(exchanges, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return exchanges, nil
}
