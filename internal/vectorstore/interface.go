package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks recall-ai/internal/vectorstore VectorStore

import "context"

// EmbeddingChunk is one chunk of a document together with its vector,
// ready to be persisted.
type EmbeddingChunk struct {
	ChunkIndex  int
	TotalChunks int
	ChunkStart  int
	ChunkEnd    int
	ChunkText   string
	Embedding   []float32
}

// NearestResult is one row returned by a similarity query.
// Distance is cosine distance: lower means more similar.
type NearestResult struct {
	EntityID   string
	ChunkIndex int
	ChunkText  string
	Distance   float64
}

// VectorStore defines the interface for chunk-level embedding storage and
// similarity search.
type VectorStore interface {
	// StoreChunks replaces all stored chunks for entityID with the given set.
	// The replacement is atomic: a concurrent reader observes either the old
	// complete chunk set or the new one, never a partial mix.
	StoreChunks(ctx context.Context, entityID string, chunks []EmbeddingChunk) error

	// QueryNearest returns entities whose best chunk is within maxDistance of
	// the query vector, deduplicated by entity (lowest-distance chunk wins)
	// before truncation to limit, ordered by ascending distance.
	QueryNearest(ctx context.Context, query []float32, limit int, maxDistance float64) ([]NearestResult, error)

	// HasAny reports whether any embeddings are stored at all. Used to skip
	// semantic search entirely on an empty store.
	HasAny(ctx context.Context) (bool, error)

	// EntityIDs returns the distinct entity ids with stored embeddings.
	// Used by the catch-up scan to compute the set difference against the
	// document store.
	EntityIDs(ctx context.Context) ([]string, error)
}
