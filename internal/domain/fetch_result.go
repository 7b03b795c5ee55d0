package domain

type Outcome string

const (
	OutcomeSucceededWithContent Outcome = "succeeded_with_content"
	OutcomeSucceededEmpty       Outcome = "succeeded_empty"
	OutcomeFailed               Outcome = "failed"
	OutcomeSkipped              Outcome = "skipped"
)

// Diagnostic records what a single strategy did during one fetch.
type Diagnostic struct {
	Strategy string  `json:"strategy"`
	Outcome  Outcome `json:"outcome"`
	Reason   string  `json:"reason,omitempty"`
}

// FetchResult is the orchestrator's output. StrategyUsed is set only when
// that strategy produced at least one usable post; posts from different
// strategies are never merged.
type FetchResult struct {
	Username       string
	StrategyUsed   string
	Posts          map[MediaCategory][]Post
	Diagnostics    []Diagnostic
	PrivateAccount bool
}

// AllPosts flattens the category buckets preserving the canonical bucket
// order used everywhere else.
func (r *FetchResult) AllPosts() []Post {
	var out []Post
	for _, c := range []MediaCategory{CategoryPost, CategoryCarousel, CategoryStory, CategoryReel, CategoryIGTV} {
		out = append(out, r.Posts[c]...)
	}
	return out
}

// TotalPosts counts posts across every bucket.
func (r *FetchResult) TotalPosts() int {
	n := 0
	for _, posts := range r.Posts {
		n += len(posts)
	}
	return n
}

// GroupByCategory buckets posts without reordering them within a bucket.
func GroupByCategory(posts []Post) map[MediaCategory][]Post {
	out := make(map[MediaCategory][]Post)
	for _, p := range posts {
		out[p.Category] = append(out[p.Category], p)
	}
	return out
}
