package vectorstore

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"recall-ai/internal/storage"
)

// SQLiteStore stores chunk embeddings as little-endian float32 BLOBs in the
// embedded database and computes cosine distance in-process. Brute-force
// scanning is exact and fast enough at knowledge-base scale; connections are
// opened per operation via storage.Database.
type SQLiteStore struct {
	db   *storage.Database
	dims int
}

// NewSQLiteStore creates a vector store over db expecting vectors of the
// given dimensionality.
func NewSQLiteStore(db *storage.Database, dims int) *SQLiteStore {
	return &SQLiteStore{db: db, dims: dims}
}

// StoreChunks replaces all chunk rows for entityID in a single transaction
// (delete-then-insert), so a re-embedded document never retains orphaned
// chunks from a previous, differently-sized chunking.
func (s *SQLiteStore) StoreChunks(ctx context.Context, entityID string, chunks []EmbeddingChunk) error {
	db, err := s.db.Conn()
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM embeddings WHERE entity_id = ?", entityID); err != nil {
		return fmt.Errorf("failed to delete old chunks for %s: %w", entityID, err)
	}

	for _, chunk := range chunks {
		if len(chunk.Embedding) != s.dims {
			return fmt.Errorf("chunk %d of %s has %d dims, expected %d",
				chunk.ChunkIndex, entityID, len(chunk.Embedding), s.dims)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO embeddings (entity_id, chunk_index, total_chunks, chunk_start, chunk_end, chunk_text, embedding)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			entityID, chunk.ChunkIndex, chunk.TotalChunks, chunk.ChunkStart, chunk.ChunkEnd,
			chunk.ChunkText, vectorToBlob(chunk.Embedding),
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %d of %s: %w", chunk.ChunkIndex, entityID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunk replacement: %w", err)
	}
	return nil
}

// QueryNearest scans all stored vectors, keeps rows within maxDistance,
// deduplicates by entity keeping the lowest-distance chunk, then sorts
// ascending and truncates to limit. Deduplication happens before truncation
// so one long document cannot crowd out distinct relevant documents.
func (s *SQLiteStore) QueryNearest(ctx context.Context, query []float32, limit int, maxDistance float64) ([]NearestResult, error) {
	if limit <= 0 {
		limit = 10
	}

	db, err := s.db.Conn()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = db.Close()
	}()

	rows, err := db.QueryContext(ctx,
		"SELECT entity_id, chunk_index, chunk_text, embedding FROM embeddings")
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	best := make(map[string]NearestResult)
	for rows.Next() {
		var entityID, chunkText string
		var chunkIndex int
		var blob []byte
		if err := rows.Scan(&entityID, &chunkIndex, &chunkText, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan embedding row: %w", err)
		}

		vec := blobToVector(blob)
		if len(vec) != len(query) {
			continue
		}

		distance := cosineDistance(query, vec)
		if distance > maxDistance {
			continue
		}

		if existing, ok := best[entityID]; !ok || distance < existing.Distance {
			best[entityID] = NearestResult{
				EntityID:   entityID,
				ChunkIndex: chunkIndex,
				ChunkText:  chunkText,
				Distance:   distance,
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	results := make([]NearestResult, 0, len(best))
	for _, r := range best {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// HasAny is a cheap existence probe used to skip semantic search when the
// store is empty.
func (s *SQLiteStore) HasAny(ctx context.Context) (bool, error) {
	db, err := s.db.Conn()
	if err != nil {
		return false, err
	}
	defer func() {
		_ = db.Close()
	}()

	var exists int
	err = db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM embeddings)").Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to probe embeddings: %w", err)
	}
	return exists == 1, nil
}

// EntityIDs returns the distinct entity ids with stored embeddings.
func (s *SQLiteStore) EntityIDs(ctx context.Context) ([]string, error) {
	db, err := s.db.Conn()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = db.Close()
	}()

	rows, err := db.QueryContext(ctx, "SELECT DISTINCT entity_id FROM embeddings")
	if err != nil {
		return nil, fmt.Errorf("failed to query entity ids: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan entity id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Counts returns the number of distinct entities and total chunk rows.
func (s *SQLiteStore) Counts(ctx context.Context) (entities, chunks int, err error) {
	db, err := s.db.Conn()
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		_ = db.Close()
	}()

	err = db.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT entity_id), COUNT(*) FROM embeddings").Scan(&entities, &chunks)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count embeddings: %w", err)
	}
	return entities, chunks, nil
}

// cosineDistance is 1 minus cosine similarity; lower values indicate higher
// similarity. Zero-magnitude vectors are treated as maximally distant.
func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

func vectorToBlob(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func blobToVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
