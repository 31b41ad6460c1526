package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"recall-ai/internal/contextutil"
	"recall-ai/internal/docstore"
	"recall-ai/internal/embedding"
	"recall-ai/internal/markdown"
	"recall-ai/internal/vectorstore"
)

// ErrEmptyQuery is returned when the query string is empty.
var ErrEmptyQuery = errors.New("query is required")

const (
	// maxRefsPerDocument bounds how many wikilink titles are resolved per
	// document during relation expansion.
	maxRefsPerDocument = 5
	// snippetLength is the maximum snippet size in runes.
	snippetLength = 200
)

// Engine answers queries by combining vector similarity, keyword fallback
// and relation-graph expansion.
type Engine interface {
	Search(ctx context.Context, query string, opts Options) ([]Result, error)
}

// engine implements the Engine interface.
type engine struct {
	embedder    embedding.Embedder
	vectorStore vectorstore.VectorStore
	docs        docstore.Client
	logger      *slog.Logger
}

// NewEngine creates a search engine.
func NewEngine(embedder embedding.Embedder, vectorStore vectorstore.VectorStore, docs docstore.Client) Engine {
	return &engine{
		embedder:    embedder,
		vectorStore: vectorStore,
		docs:        docs,
		logger:      slog.Default(),
	}
}

// Search answers a query according to opts.
func (e *engine) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	opts = opts.normalize()

	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "search started",
		"query", query, "mode", opts.Mode, "depth", opts.Depth, "project", opts.Project)

	var results []Result
	var err error

	switch opts.Mode {
	case ModeKeyword:
		results, err = e.keywordSearch(ctx, query, opts)
		if err != nil {
			return nil, fmt.Errorf("keyword search failed (query %q): %w", query, err)
		}

	case ModeSemantic:
		results, err = e.semanticSearch(ctx, query, opts)
		if err != nil {
			// The caller asked for semantic explicitly; an unavailable
			// inference service or empty store yields no results rather
			// than an error, and the caller decides whether to retry in
			// another mode.
			logger.WarnContext(ctx, "semantic search unavailable", "query", query, "error", err)
			results = nil
		}

	case ModeAuto:
		results, err = e.autoSearch(ctx, query, opts, logger)
		if err != nil {
			return nil, fmt.Errorf("search failed (query %q, mode auto): %w", query, err)
		}

	default:
		return nil, fmt.Errorf("unknown search mode %q", opts.Mode)
	}

	if opts.Depth > 0 && len(results) > 0 {
		results = e.expandRelations(ctx, results, opts, logger)
	}

	logger.InfoContext(ctx, "search completed", "query", query, "results", len(results))
	return results, nil
}

// autoSearch makes the feature usable before any embeddings exist and
// resilient to inference-service outages: an empty store goes straight to
// keyword search, and a failed or empty semantic pass falls back to it.
func (e *engine) autoSearch(ctx context.Context, query string, opts Options, logger *slog.Logger) ([]Result, error) {
	hasAny, err := e.vectorStore.HasAny(ctx)
	if err != nil {
		logger.WarnContext(ctx, "embedding probe failed, using keyword search", "error", err)
		hasAny = false
	}

	if hasAny {
		results, err := e.semanticSearch(ctx, query, opts)
		if err == nil && len(results) > 0 {
			return results, nil
		}
		if err != nil {
			logger.WarnContext(ctx, "semantic search failed, falling back to keyword", "query", query, "error", err)
		}
	}

	return e.keywordSearch(ctx, query, opts)
}

// semanticSearch embeds the query and runs a similarity query against the
// vector store.
func (e *engine) semanticSearch(ctx context.Context, query string, opts Options) ([]Result, error) {
	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if vec == nil {
		return nil, nil
	}

	maxDistance := 1 - opts.Threshold
	rows, err := e.vectorStore.QueryNearest(ctx, vec, opts.Limit, maxDistance)
	if err != nil {
		return nil, fmt.Errorf("failed to query vector store: %w", err)
	}

	results := make([]Result, 0, len(rows))
	for _, row := range rows {
		snippet := markdown.Snippet(markdown.PlainText([]byte(row.ChunkText)), snippetLength)
		results = append(results, Result{
			Permalink: row.EntityID,
			Title:     markdown.TitleFromPermalink(row.EntityID),
			Score:     1 - row.Distance,
			Snippet:   snippet,
			Source:    SourceSemantic,
			Depth:     0,
		})
	}
	return results, nil
}

// keywordSearch delegates to the document store's text search.
func (e *engine) keywordSearch(ctx context.Context, query string, opts Options) ([]Result, error) {
	matches, err := e.docs.SearchByText(ctx, query, opts.Project, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("document store search failed: %w", err)
	}

	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		results = append(results, Result{
			Permalink: m.ID,
			Title:     m.Title,
			Score:     clampScore(m.Score),
			Snippet:   markdown.Snippet(m.Snippet, snippetLength),
			Source:    SourceKeyword,
			Depth:     0,
		})
	}
	return results, nil
}

// expandRelations treats the direct results as a frontier and walks outbound
// wikilink references breadth-first up to opts.Depth levels. A single seen
// set spans all levels, so a document surfaced at a shallower depth is never
// re-added at a deeper one; expansion stops early when a frontier produces
// no new documents. Failures along the way are logged and skipped, never
// fatal to the query.
func (e *engine) expandRelations(ctx context.Context, results []Result, opts Options, logger *slog.Logger) []Result {
	seen := make(map[string]bool, len(results))
	for _, r := range results {
		seen[r.Permalink] = true
	}

	frontier := results
	for depth := 1; depth <= opts.Depth; depth++ {
		var next []Result

		for _, r := range frontier {
			content, err := e.docs.ReadDocument(ctx, r.Permalink)
			if err != nil {
				logger.WarnContext(ctx, "failed to read document for expansion",
					"permalink", r.Permalink, "error", err)
				continue
			}

			titles := markdown.ExtractWikilinks(content)
			if len(titles) > maxRefsPerDocument {
				titles = titles[:maxRefsPerDocument]
			}

			for _, title := range titles {
				matches, err := e.docs.SearchByText(ctx, title, opts.Project, 1)
				if err != nil {
					logger.WarnContext(ctx, "failed to resolve reference",
						"title", title, "error", err)
					continue
				}
				if len(matches) == 0 || seen[matches[0].ID] {
					continue
				}

				m := matches[0]
				seen[m.ID] = true
				next = append(next, Result{
					Permalink: m.ID,
					Title:     m.Title,
					Score:     clampScore(m.Score),
					Snippet:   markdown.Snippet(m.Snippet, snippetLength),
					Source:    SourceRelated,
					Depth:     depth,
				})
			}
		}

		if len(next) == 0 {
			break
		}
		results = append(results, next...)
		frontier = next
	}

	return results
}

// clampScore bounds external scores into [0,1].
func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
