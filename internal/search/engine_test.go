package search

import (
	"context"
	"errors"
	"testing"

	"recall-ai/internal/docstore"
	docstore_mocks "recall-ai/internal/docstore/mocks"
	embedding_mocks "recall-ai/internal/embedding/mocks"
	"recall-ai/internal/vectorstore"
	vectorstore_mocks "recall-ai/internal/vectorstore/mocks"

	"go.uber.org/mock/gomock"
)

func newTestEngine(t *testing.T) (Engine, *embedding_mocks.MockEmbedder, *vectorstore_mocks.MockVectorStore, *docstore_mocks.MockClient) {
	t.Helper()
	ctrl := gomock.NewController(t)
	embedder := embedding_mocks.NewMockEmbedder(ctrl)
	store := vectorstore_mocks.NewMockVectorStore(ctrl)
	docs := docstore_mocks.NewMockClient(ctrl)
	return NewEngine(embedder, store, docs), embedder, store, docs
}

func TestSearch_EmptyQuery(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	tests := []string{"", "   ", "\n\t"}
	for _, query := range tests {
		_, err := engine.Search(context.Background(), query, Options{})
		if !errors.Is(err, ErrEmptyQuery) {
			t.Errorf("Search(%q) error = %v, want ErrEmptyQuery", query, err)
		}
	}
}

func TestSearch_UnknownMode(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	_, err := engine.Search(context.Background(), "query", Options{Mode: "fuzzy"})
	if err == nil {
		t.Fatal("Search() with unknown mode succeeded, want error")
	}
}

func TestSearch_AutoEmptyStoreSkipsEmbedding(t *testing.T) {
	engine, _, store, docs := newTestEngine(t)
	ctx := context.Background()

	// No EXPECT on the embedder: an empty store must never call the
	// inference service.
	store.EXPECT().HasAny(ctx).Return(false, nil)
	docs.EXPECT().SearchByText(ctx, "query", "", 10).Return([]docstore.TextMatch{
		{ID: "notes/doc", Title: "Doc", Snippet: "snippet", Score: 0.8},
	}, nil)

	results, err := engine.Search(ctx, "query", Options{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Search() returned %d results, want 1", len(results))
	}
	if results[0].Source != SourceKeyword {
		t.Errorf("Source = %q, want keyword", results[0].Source)
	}
}

func TestSearch_AutoSemanticSuccess(t *testing.T) {
	engine, embedder, store, _ := newTestEngine(t)
	ctx := context.Background()
	vec := []float32{1, 0, 0}

	store.EXPECT().HasAny(ctx).Return(true, nil)
	embedder.EXPECT().Embed(ctx, "query").Return(vec, nil)
	store.EXPECT().QueryNearest(ctx, vec, 10, gomock.Any()).Return([]vectorstore.NearestResult{
		{EntityID: "notes/project-plan", ChunkIndex: 0, ChunkText: "# Plan\n\nDetails here.", Distance: 0.1},
	}, nil)

	results, err := engine.Search(ctx, "query", Options{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Search() returned %d results, want 1", len(results))
	}
	r := results[0]
	if r.Source != SourceSemantic {
		t.Errorf("Source = %q, want semantic", r.Source)
	}
	if r.Permalink != "notes/project-plan" {
		t.Errorf("Permalink = %q, want notes/project-plan", r.Permalink)
	}
	if r.Title != "Project Plan" {
		t.Errorf("Title = %q, want derived from permalink", r.Title)
	}
	if r.Score < 0.89 || r.Score > 0.91 {
		t.Errorf("Score = %v, want 1 - distance = 0.9", r.Score)
	}
	if r.Depth != 0 {
		t.Errorf("Depth = %d, want 0 for direct match", r.Depth)
	}
}

func TestSearch_AutoFallsBackOnSemanticError(t *testing.T) {
	engine, embedder, store, docs := newTestEngine(t)
	ctx := context.Background()

	store.EXPECT().HasAny(ctx).Return(true, nil)
	embedder.EXPECT().Embed(ctx, "query").Return(nil, errors.New("connection refused"))
	docs.EXPECT().SearchByText(ctx, "query", "", 10).Return([]docstore.TextMatch{
		{ID: "notes/doc", Title: "Doc", Score: 0.5},
	}, nil)

	results, err := engine.Search(ctx, "query", Options{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].Source != SourceKeyword {
		t.Errorf("Search() = %+v, want keyword fallback result", results)
	}
}

func TestSearch_AutoFallsBackOnZeroSemanticRows(t *testing.T) {
	engine, embedder, store, docs := newTestEngine(t)
	ctx := context.Background()
	vec := []float32{1, 0}

	store.EXPECT().HasAny(ctx).Return(true, nil)
	embedder.EXPECT().Embed(ctx, "rare term").Return(vec, nil)
	store.EXPECT().QueryNearest(ctx, vec, 10, gomock.Any()).Return(nil, nil)
	docs.EXPECT().SearchByText(ctx, "rare term", "", 10).Return([]docstore.TextMatch{
		{ID: "notes/doc", Title: "Doc", Score: 0.4},
	}, nil)

	results, err := engine.Search(ctx, "rare term", Options{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].Source != SourceKeyword {
		t.Errorf("Search() = %+v, want keyword fallback on zero semantic rows", results)
	}
}

func TestSearch_SemanticModeUnavailableReturnsEmpty(t *testing.T) {
	engine, embedder, _, _ := newTestEngine(t)
	ctx := context.Background()

	embedder.EXPECT().Embed(ctx, "query").Return(nil, errors.New("connection refused"))

	results, err := engine.Search(ctx, "query", Options{Mode: ModeSemantic})
	if err != nil {
		t.Fatalf("Search() error = %v, explicit semantic mode must not error on outage", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() = %+v, want no results", results)
	}
}

func TestSearch_KeywordModeErrorPropagates(t *testing.T) {
	engine, _, _, docs := newTestEngine(t)
	ctx := context.Background()

	docs.EXPECT().SearchByText(ctx, "query", "", 10).Return(nil, errors.New("store down"))

	_, err := engine.Search(ctx, "query", Options{Mode: ModeKeyword})
	if err == nil {
		t.Fatal("Search() in keyword mode succeeded despite store error")
	}
}

func TestSearch_KeywordScoreClamped(t *testing.T) {
	engine, _, _, docs := newTestEngine(t)
	ctx := context.Background()

	docs.EXPECT().SearchByText(ctx, "query", "", 10).Return([]docstore.TextMatch{
		{ID: "notes/hot", Title: "Hot", Score: 3.2},
		{ID: "notes/cold", Title: "Cold", Score: -0.5},
	}, nil)

	results, err := engine.Search(ctx, "query", Options{Mode: ModeKeyword})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if results[0].Score != 1 {
		t.Errorf("Score = %v, want clamped to 1", results[0].Score)
	}
	if results[1].Score != 0 {
		t.Errorf("Score = %v, want clamped to 0", results[1].Score)
	}
}

func TestSearch_RelationExpansion(t *testing.T) {
	engine, _, _, docs := newTestEngine(t)
	ctx := context.Background()

	docs.EXPECT().SearchByText(ctx, "query", "", 10).Return([]docstore.TextMatch{
		{ID: "notes/a", Title: "A", Score: 0.9},
	}, nil)
	docs.EXPECT().ReadDocument(ctx, "notes/a").Return("See [[Topic B]] for more.", nil)
	docs.EXPECT().SearchByText(ctx, "Topic B", "", 1).Return([]docstore.TextMatch{
		{ID: "notes/b", Title: "Topic B", Score: 0.7},
	}, nil)

	results, err := engine.Search(ctx, "query", Options{Mode: ModeKeyword, Depth: 1})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search() returned %d results, want direct + related", len(results))
	}
	related := results[1]
	if related.Permalink != "notes/b" || related.Source != SourceRelated || related.Depth != 1 {
		t.Errorf("related result = %+v, want notes/b at depth 1", related)
	}
}

func TestSearch_RelationExpansionCycleSafe(t *testing.T) {
	engine, _, _, docs := newTestEngine(t)
	ctx := context.Background()

	// A links to B, B links back to A. With depth 3 the walk must visit each
	// document once and stop when the frontier yields nothing new.
	docs.EXPECT().SearchByText(ctx, "query", "", 10).Return([]docstore.TextMatch{
		{ID: "notes/a", Title: "A", Score: 0.9},
	}, nil)
	docs.EXPECT().ReadDocument(ctx, "notes/a").Return("Links to [[B]].", nil)
	docs.EXPECT().SearchByText(ctx, "B", "", 1).Return([]docstore.TextMatch{
		{ID: "notes/b", Title: "B", Score: 0.7},
	}, nil)
	docs.EXPECT().ReadDocument(ctx, "notes/b").Return("Back to [[A]].", nil)
	docs.EXPECT().SearchByText(ctx, "A", "", 1).Return([]docstore.TextMatch{
		{ID: "notes/a", Title: "A", Score: 0.9},
	}, nil)

	results, err := engine.Search(ctx, "query", Options{Mode: ModeKeyword, Depth: 3})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search() returned %d results, want 2 (each document once)", len(results))
	}
	counts := make(map[string]int)
	for _, r := range results {
		counts[r.Permalink]++
	}
	if counts["notes/a"] != 1 || counts["notes/b"] != 1 {
		t.Errorf("duplicate documents in results: %v", counts)
	}
}

func TestSearch_RelationExpansionSkipsFailures(t *testing.T) {
	engine, _, _, docs := newTestEngine(t)
	ctx := context.Background()

	docs.EXPECT().SearchByText(ctx, "query", "", 10).Return([]docstore.TextMatch{
		{ID: "notes/a", Title: "A", Score: 0.9},
		{ID: "notes/b", Title: "B", Score: 0.8},
	}, nil)
	// Reading the first document fails; expansion continues with the second.
	docs.EXPECT().ReadDocument(ctx, "notes/a").Return("", errors.New("not found"))
	docs.EXPECT().ReadDocument(ctx, "notes/b").Return("See [[C]].", nil)
	docs.EXPECT().SearchByText(ctx, "C", "", 1).Return([]docstore.TextMatch{
		{ID: "notes/c", Title: "C", Score: 0.6},
	}, nil)

	results, err := engine.Search(ctx, "query", Options{Mode: ModeKeyword, Depth: 1})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 3 {
		t.Errorf("Search() returned %d results, want 3", len(results))
	}
}

func TestSearch_RelationExpansionCapsRefs(t *testing.T) {
	engine, _, _, docs := newTestEngine(t)
	ctx := context.Background()

	content := "[[R1]] [[R2]] [[R3]] [[R4]] [[R5]] [[R6]] [[R7]]"

	docs.EXPECT().SearchByText(ctx, "query", "", 10).Return([]docstore.TextMatch{
		{ID: "notes/hub", Title: "Hub", Score: 0.9},
	}, nil)
	docs.EXPECT().ReadDocument(ctx, "notes/hub").Return(content, nil)
	// Only the first five references are resolved.
	for _, ref := range []string{"R1", "R2", "R3", "R4", "R5"} {
		docs.EXPECT().SearchByText(ctx, ref, "", 1).Return(nil, nil)
	}

	results, err := engine.Search(ctx, "query", Options{Mode: ModeKeyword, Depth: 1})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Search() returned %d results, want only the direct hit", len(results))
	}
}

func TestOptions_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Options
		want Options
	}{
		{
			name: "defaults",
			in:   Options{},
			want: Options{Limit: 10, Threshold: 0.7, Mode: ModeAuto, Depth: 0},
		},
		{
			name: "limit clamped high",
			in:   Options{Limit: 500, Threshold: 0.5, Mode: ModeKeyword},
			want: Options{Limit: 100, Threshold: 0.5, Mode: ModeKeyword},
		},
		{
			name: "depth clamped",
			in:   Options{Limit: 5, Threshold: 0.5, Mode: ModeAuto, Depth: 9},
			want: Options{Limit: 5, Threshold: 0.5, Mode: ModeAuto, Depth: 3},
		},
		{
			name: "threshold clamped",
			in:   Options{Limit: 5, Threshold: 1.5, Mode: ModeAuto},
			want: Options{Limit: 5, Threshold: 1, Mode: ModeAuto},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.normalize(); got != tt.want {
				t.Errorf("normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
