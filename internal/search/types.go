package search

// Mode selects how a query is answered.
type Mode string

const (
	// ModeAuto tries semantic search and falls back to keyword search.
	ModeAuto Mode = "auto"
	// ModeSemantic uses vector similarity only.
	ModeSemantic Mode = "semantic"
	// ModeKeyword delegates to the document store's text search.
	ModeKeyword Mode = "keyword"
)

// Source records which path produced a result.
type Source string

const (
	SourceSemantic Source = "semantic"
	SourceKeyword  Source = "keyword"
	SourceRelated  Source = "related"
)

// Options controls a search request.
type Options struct {
	// Limit is the maximum number of direct results, in [1,100]. Default 10.
	Limit int
	// Threshold is the minimum similarity for semantic matches, in [0,1].
	// Default 0.7.
	Threshold float64
	// Mode selects the search path. Default ModeAuto.
	Mode Mode
	// Depth is how many levels of relation expansion to apply, in [0,3].
	// Default 0 (no expansion).
	Depth int
	// Project optionally scopes keyword search and relation lookups.
	Project string
}

// Result is one search hit. Results are ephemeral and rebuilt per query.
type Result struct {
	Permalink string  `json:"permalink"`
	Title     string  `json:"title"`
	Score     float64 `json:"score"`
	Snippet   string  `json:"snippet"`
	Source    Source  `json:"source"`
	// Depth is 0 for direct matches and >0 for documents reached through
	// relation expansion.
	Depth int `json:"depth"`
}

// normalize applies defaults and clamps options into their valid ranges.
func (o Options) normalize() Options {
	if o.Limit <= 0 {
		o.Limit = 10
	}
	if o.Limit > 100 {
		o.Limit = 100
	}
	if o.Threshold == 0 {
		o.Threshold = 0.7
	}
	if o.Threshold < 0 {
		o.Threshold = 0
	}
	if o.Threshold > 1 {
		o.Threshold = 1
	}
	if o.Mode == "" {
		o.Mode = ModeAuto
	}
	if o.Depth < 0 {
		o.Depth = 0
	}
	if o.Depth > 3 {
		o.Depth = 3
	}
	return o
}
