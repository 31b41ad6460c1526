package storage

import "time"

// QueueItem is a pending or retryable embedding job in the offline queue.
type QueueItem struct {
	ID        int64
	NoteID    string
	CreatedAt time.Time
	Attempts  int
	LastError string // empty when the item has never failed
}
