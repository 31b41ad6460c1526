package embedding

import (
	"context"
	"sort"
	"sync"
)

// DefaultBatchSize is the number of texts processed per group.
const DefaultBatchSize = 100

// BatchResult holds the outcome of a BatchEmbed call.
// Embeddings is aligned with the input texts: a nil entry whose index appears
// in Failed is a failure; a nil entry whose index is absent was empty input.
type BatchResult struct {
	Embeddings [][]float32
	Failed     []int
}

// ProgressFunc receives cumulative completion counts, once per group.
type ProgressFunc func(completed, total int)

// BatchEmbed drives the embedder over texts in fixed-size groups. Within a
// group the embedding calls run concurrently and independently; one failure
// does not abort its siblings. Results are reassembled by original index.
// onProgress, if non-nil, fires after each group with cumulative counts.
func BatchEmbed(ctx context.Context, embedder Embedder, texts []string, batchSize int, onProgress ProgressFunc) *BatchResult {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	result := &BatchResult{
		Embeddings: make([][]float32, len(texts)),
	}

	var mu sync.Mutex

	for groupStart := 0; groupStart < len(texts); groupStart += batchSize {
		groupEnd := groupStart + batchSize
		if groupEnd > len(texts) {
			groupEnd = len(texts)
		}

		var wg sync.WaitGroup
		for i := groupStart; i < groupEnd; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()

				vec, err := embedder.Embed(ctx, texts[idx])
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					result.Failed = append(result.Failed, idx)
					return
				}
				result.Embeddings[idx] = vec
			}(i)
		}
		wg.Wait()

		if onProgress != nil {
			onProgress(groupEnd, len(texts))
		}
	}

	sort.Ints(result.Failed)
	return result
}
