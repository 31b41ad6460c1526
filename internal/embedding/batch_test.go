package embedding

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// stubEmbedder fails texts containing "fail" and returns nil for empty input,
// mirroring the client's empty-input contract.
type stubEmbedder struct {
	dims int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if strings.Contains(text, "fail") {
		return nil, &Error{Status: 500, Attempts: MaxRetries, Message: "boom"}
	}
	return make([]float32, s.dims), nil
}

func TestBatchEmbed_AllSucceed(t *testing.T) {
	embedder := &stubEmbedder{dims: 768}
	texts := []string{"short", "a longer text with more words", strings.Repeat("x", 1000)}

	result := BatchEmbed(context.Background(), embedder, texts, 10, nil)

	if len(result.Failed) != 0 {
		t.Errorf("Failed = %v, want empty", result.Failed)
	}
	if len(result.Embeddings) != 3 {
		t.Fatalf("Embeddings length = %d, want 3", len(result.Embeddings))
	}
	for i, vec := range result.Embeddings {
		if len(vec) != 768 {
			t.Errorf("embedding %d has %d dims, want 768", i, len(vec))
		}
	}
}

func TestBatchEmbed_IsolatesFailures(t *testing.T) {
	embedder := &stubEmbedder{dims: 4}
	texts := []string{"ok one", "this will fail", "ok two", "", "fail again"}

	result := BatchEmbed(context.Background(), embedder, texts, 2, nil)

	if len(result.Failed) != 2 || result.Failed[0] != 1 || result.Failed[1] != 4 {
		t.Errorf("Failed = %v, want [1 4]", result.Failed)
	}

	// Failed and empty inputs both produce nil entries; successes do not.
	for _, idx := range []int{0, 2} {
		if result.Embeddings[idx] == nil {
			t.Errorf("embedding %d is nil, want vector", idx)
		}
	}
	for _, idx := range []int{1, 3, 4} {
		if result.Embeddings[idx] != nil {
			t.Errorf("embedding %d = %v, want nil", idx, result.Embeddings[idx])
		}
	}
}

func TestBatchEmbed_ProgressPerGroup(t *testing.T) {
	embedder := &stubEmbedder{dims: 2}

	texts := make([]string, 7)
	for i := range texts {
		texts[i] = fmt.Sprintf("text %d", i)
	}

	var progress [][2]int
	BatchEmbed(context.Background(), embedder, texts, 3, func(completed, total int) {
		progress = append(progress, [2]int{completed, total})
	})

	want := [][2]int{{3, 7}, {6, 7}, {7, 7}}
	if len(progress) != len(want) {
		t.Fatalf("progress called %d times, want %d", len(progress), len(want))
	}
	for i, p := range progress {
		if p != want[i] {
			t.Errorf("progress[%d] = %v, want %v", i, p, want[i])
		}
	}
}

func TestBatchEmbed_EmptyInput(t *testing.T) {
	result := BatchEmbed(context.Background(), &stubEmbedder{dims: 2}, nil, 10, nil)
	if len(result.Embeddings) != 0 || len(result.Failed) != 0 {
		t.Errorf("BatchEmbed(nil) = %+v, want empty result", result)
	}
}
