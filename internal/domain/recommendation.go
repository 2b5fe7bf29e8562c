package domain

// DeckSignal carries the per-deck counters a recommendation is computed from.
// It is produced by an aggregate query for each request and never stored.
type DeckSignal struct {
	DeckID             int64
	Name               string
	OwnerID            int64
	DueCount           int
	AssignedDueCount   int
	RecentReviewCount  int
	WrongCount         int
	IsOwnedByRequester bool
}

// Weights scale each counter into a recommendation score.
type Weights struct {
	Due      float64
	Assigned float64
	Recent   float64
	Wrong    float64
}

// DefaultWeights returns the weights used when the operator sets none.
func DefaultWeights() Weights {
	return Weights{Due: 5, Assigned: 10, Recent: 1, Wrong: 8}
}

// RecommendationMeta exposes the raw counters behind a score.
type RecommendationMeta struct {
	Due      int `json:"due"`
	Assigned int `json:"assigned"`
	Recent   int `json:"recent"`
	Wrong    int `json:"wrong"`
}

// RecommendationEntry is one ranked deck in a recommendation list.
type RecommendationEntry struct {
	DeckID  int64              `json:"id"`
	Name    string             `json:"name"`
	OwnerID int64              `json:"owner_id"`
	Score   float64            `json:"score"`
	Meta    RecommendationMeta `json:"meta"`
}
