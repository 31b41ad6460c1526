package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_queue_store.go -package=mocks recall-ai/internal/storage QueueStore

import (
	"context"
	"database/sql"
	"fmt"
)

// QueueStore defines the interface for the durable offline embedding queue.
type QueueStore interface {
	// Enqueue adds a pending job for noteID. It is an upsert: enqueuing an
	// already-queued note resets its attempts and timestamp instead of
	// creating a duplicate row.
	Enqueue(ctx context.Context, noteID string) error
	// Dequeue returns the oldest unprocessed item, or nil if the queue is empty.
	Dequeue(ctx context.Context) (*QueueItem, error)
	// MarkProcessed removes an item after successful processing.
	MarkProcessed(ctx context.Context, id int64) error
	// IncrementAttempts records a failed attempt and returns the new count.
	IncrementAttempts(ctx context.Context, id int64, lastError string) (int, error)
	// Len returns the number of queued items.
	Len(ctx context.Context) (int, error)
}

// QueueRepo provides queue operations on the embedded database.
// It implements the QueueStore interface.
type QueueRepo struct {
	db *Database
}

// NewQueueRepo creates a new QueueRepo.
func NewQueueRepo(db *Database) *QueueRepo {
	return &QueueRepo{db: db}
}

// Enqueue adds a pending job for noteID, resetting attempts and timestamp if
// the note is already queued so a re-saved document gets a fresh retry budget.
func (r *QueueRepo) Enqueue(ctx context.Context, noteID string) error {
	db, err := r.db.Conn()
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	_, err = db.ExecContext(ctx,
		`INSERT INTO embedding_queue (note_id, attempts, last_error) VALUES (?, 0, NULL)
		 ON CONFLICT(note_id) DO UPDATE SET attempts = 0, created_at = CURRENT_TIMESTAMP, last_error = NULL`,
		noteID,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", noteID, err)
	}
	return nil
}

// Dequeue returns the oldest unprocessed item by creation time (FIFO),
// or nil if the queue is empty.
func (r *QueueRepo) Dequeue(ctx context.Context) (*QueueItem, error) {
	db, err := r.db.Conn()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = db.Close()
	}()

	var item QueueItem
	var lastError sql.NullString
	err = db.QueryRowContext(ctx,
		`SELECT id, note_id, created_at, attempts, last_error
		 FROM embedding_queue ORDER BY created_at ASC, id ASC LIMIT 1`,
	).Scan(&item.ID, &item.NoteID, &item.CreatedAt, &item.Attempts, &lastError)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue: %w", err)
	}

	item.LastError = lastError.String
	return &item, nil
}

// MarkProcessed removes an item from the queue.
func (r *QueueRepo) MarkProcessed(ctx context.Context, id int64) error {
	db, err := r.db.Conn()
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	_, err = db.ExecContext(ctx, "DELETE FROM embedding_queue WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to mark processed: %w", err)
	}
	return nil
}

// IncrementAttempts records a failed processing attempt with its error and
// returns the item's new attempt count.
func (r *QueueRepo) IncrementAttempts(ctx context.Context, id int64, lastError string) (int, error) {
	db, err := r.db.Conn()
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = db.Close()
	}()

	res, err := db.ExecContext(ctx,
		"UPDATE embedding_queue SET attempts = attempts + 1, last_error = ? WHERE id = ?",
		lastError, id,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to increment attempts: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, ErrNotFound
	}

	var attempts int
	err = db.QueryRowContext(ctx, "SELECT attempts FROM embedding_queue WHERE id = ?", id).Scan(&attempts)
	if err != nil {
		return 0, fmt.Errorf("failed to read attempts: %w", err)
	}
	return attempts, nil
}

// Len returns the number of queued items.
func (r *QueueRepo) Len(ctx context.Context) (int, error) {
	db, err := r.db.Conn()
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = db.Close()
	}()

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embedding_queue").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count queue: %w", err)
	}
	return n, nil
}
