// Package trigger wraps embedding generation and storage as a non-blocking
// side effect of document writes. Failures here are logged and queued for
// retry, never surfaced to the caller: a document must remain creatable and
// findable by keyword search even when embedding fails.
package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"recall-ai/internal/chunker"
	"recall-ai/internal/docstore"
	"recall-ai/internal/embedding"
	"recall-ai/internal/storage"
	"recall-ai/internal/vectorstore"
)

// MaxQueueAttempts is the retry ceiling for queued jobs; an item that fails
// this many times is dropped with its last error logged.
const MaxQueueAttempts = 3

// Service owns the fire-and-forget embedding path, the catch-up scan and
// the offline queue drainer.
type Service struct {
	embedder  embedding.Embedder
	store     vectorstore.VectorStore
	queue     storage.QueueStore
	docs      docstore.Client
	chunker   *chunker.Chunker
	limiter   *rate.Limiter
	batchSize int
	logger    *slog.Logger

	wg sync.WaitGroup
}

// NewService creates a trigger service. ratePerSec bounds how fast the
// catch-up scan issues embedding work; batchSize bounds its group size.
func NewService(
	embedder embedding.Embedder,
	store vectorstore.VectorStore,
	queue storage.QueueStore,
	docs docstore.Client,
	ch *chunker.Chunker,
	batchSize int,
	ratePerSec float64,
) *Service {
	if batchSize <= 0 {
		batchSize = 10
	}
	if ratePerSec <= 0 {
		ratePerSec = 2
	}
	return &Service{
		embedder:  embedder,
		store:     store,
		queue:     queue,
		docs:      docs,
		chunker:   ch,
		limiter:   rate.NewLimiter(rate.Limit(ratePerSec), batchSize),
		batchSize: batchSize,
		logger:    slog.Default(),
	}
}

// TriggerEmbedding embeds and stores a document's content on a background
// goroutine and returns immediately. Failures are logged and the document is
// queued for offline retry; nothing is ever returned or thrown to the caller.
func (s *Service) TriggerEmbedding(docID, content string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		// Detached from the request: the caller's context may already be
		// gone by the time embedding runs.
		ctx := context.Background()

		jobID := uuid.New().String()
		if err := s.embedAndStore(ctx, docID, content); err != nil {
			s.logger.Error("background embedding failed", "job_id", jobID, "note_id", docID, "error", err)
			if qErr := s.queue.Enqueue(ctx, docID); qErr != nil {
				s.logger.Error("failed to queue for retry", "job_id", jobID, "note_id", docID, "error", qErr)
			}
		}
	}()
}

// Wait blocks until all in-flight background embedding jobs finish.
// Used on shutdown and in tests.
func (s *Service) Wait() {
	s.wg.Wait()
}

// embedAndStore chunks content, embeds every chunk, and replaces the stored
// chunk set for docID. The store write happens only after all chunks embedded
// successfully, so a failure never leaves a partially-stored document.
func (s *Service) embedAndStore(ctx context.Context, docID, content string) error {
	chunks := s.chunker.Chunk(content)
	if len(chunks) == 0 {
		// An emptied document still replaces its old chunks.
		return s.store.StoreChunks(ctx, docID, nil)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	result := embedding.BatchEmbed(ctx, s.embedder, texts, s.batchSize, nil)
	if len(result.Failed) > 0 {
		return fmt.Errorf("%d of %d chunks failed to embed", len(result.Failed), len(chunks))
	}

	records := make([]vectorstore.EmbeddingChunk, len(chunks))
	for i, c := range chunks {
		records[i] = vectorstore.EmbeddingChunk{
			ChunkIndex:  c.ChunkIndex,
			TotalChunks: c.TotalChunks,
			ChunkStart:  c.Start,
			ChunkEnd:    c.End,
			ChunkText:   c.Text,
			Embedding:   result.Embeddings[i],
		}
	}

	if err := s.store.StoreChunks(ctx, docID, records); err != nil {
		return fmt.Errorf("failed to store chunks: %w", err)
	}
	return nil
}

// CatchUp scans for documents present in the document store but absent from
// the vector store and embeds them, rate-limited, on a background goroutine.
// The caller is never blocked.
func (s *Service) CatchUp(project string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.catchUp(context.Background(), uuid.New().String(), project)
	}()
}

func (s *Service) catchUp(ctx context.Context, jobID, project string) {
	logger := s.logger.With("job_id", jobID, "project", project)

	docs, err := s.docs.ListDocuments(ctx, project)
	if err != nil {
		logger.Error("catch-up scan failed to list documents", "error", err)
		return
	}

	embedded, err := s.store.EntityIDs(ctx)
	if err != nil {
		logger.Error("catch-up scan failed to list embeddings", "error", err)
		return
	}

	have := make(map[string]bool, len(embedded))
	for _, id := range embedded {
		have[id] = true
	}

	var missing []string
	for _, doc := range docs {
		if !have[doc.ID] {
			missing = append(missing, doc.ID)
		}
	}

	logger.Info("catch-up batch started", "count", len(missing))

	var processed, failed int
	for _, id := range missing {
		if err := s.limiter.Wait(ctx); err != nil {
			logger.Error("catch-up batch aborted", "error", err)
			return
		}

		content, err := s.docs.ReadDocument(ctx, id)
		if err != nil {
			failed++
			logger.Error("catch-up item failed", "note_id", id, "error", err)
			continue
		}

		if err := s.embedAndStore(ctx, id, content); err != nil {
			failed++
			logger.Error("catch-up item failed", "note_id", id, "error", err)
			if qErr := s.queue.Enqueue(ctx, id); qErr != nil {
				logger.Error("failed to queue for retry", "note_id", id, "error", qErr)
			}
			continue
		}
		processed++
	}

	logger.Info("catch-up batch completed",
		"processed", processed,
		"failed", failed,
		"skipped", len(docs)-len(missing),
	)
}

// DrainQueue makes one pass over the offline queue: each item is re-fetched
// from the document store, embedded and stored. Success removes the item;
// failure increments its attempt count, and an item that has reached the
// retry ceiling is dropped with its last error logged, never retried forever.
func (s *Service) DrainQueue(ctx context.Context) {
	seen := make(map[int64]bool)

	for {
		if ctx.Err() != nil {
			return
		}

		item, err := s.queue.Dequeue(ctx)
		if err != nil {
			s.logger.Error("failed to dequeue", "error", err)
			return
		}
		if item == nil || seen[item.ID] {
			return
		}
		seen[item.ID] = true

		if err := s.processQueueItem(ctx, item); err != nil {
			attempts, incErr := s.queue.IncrementAttempts(ctx, item.ID, err.Error())
			if incErr != nil {
				s.logger.Error("failed to record queue attempt", "note_id", item.NoteID, "error", incErr)
				continue
			}
			if attempts >= MaxQueueAttempts {
				s.logger.Error("dropping queued item after retry ceiling",
					"note_id", item.NoteID, "attempts", attempts, "error", err)
				if dropErr := s.queue.MarkProcessed(ctx, item.ID); dropErr != nil {
					s.logger.Error("failed to drop queue item", "note_id", item.NoteID, "error", dropErr)
				}
			} else {
				s.logger.Warn("queued embedding failed, will retry",
					"note_id", item.NoteID, "attempts", attempts, "error", err)
			}
			continue
		}

		if err := s.queue.MarkProcessed(ctx, item.ID); err != nil {
			s.logger.Error("failed to mark processed", "note_id", item.NoteID, "error", err)
		}
	}
}

// processQueueItem re-reads the document's current content and embeds it.
func (s *Service) processQueueItem(ctx context.Context, item *storage.QueueItem) error {
	content, err := s.docs.ReadDocument(ctx, item.NoteID)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	return s.embedAndStore(ctx, item.NoteID, content)
}

// RunDrainer drains the queue on a fixed interval until ctx is cancelled.
func (s *Service) RunDrainer(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.DrainQueue(ctx)
		}
	}
}
