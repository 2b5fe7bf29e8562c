// Package recommend ranks decks for a user from per-deck activity counters.
package recommend

import (
	"sort"

	"github.com/phrazzld/flashdeck/internal/domain"
)

// MaxEntries caps the length of a ranked list.
const MaxEntries = 25

// PopularDiscount scales the recent-activity signal of decks the requester
// does not own relative to personal signals.
const PopularDiscount = 0.5

// PersonalScore scores a deck the requester owns or was assigned.
func PersonalScore(s domain.DeckSignal, w domain.Weights) float64 {
	return float64(s.DueCount)*w.Due +
		float64(s.AssignedDueCount)*w.Assigned +
		float64(s.RecentReviewCount)*w.Recent +
		float64(s.WrongCount)*w.Wrong
}

// PopularScore scores another user's deck by its recent activity.
func PopularScore(s domain.DeckSignal, w domain.Weights) float64 {
	return float64(s.RecentReviewCount) * w.Recent * PopularDiscount
}

// Score ranks signals by weighted score, highest first.
//
// Personal signals are always scored; signals for other users' decks are only
// scored when mineOnly is false. Signals sharing a deck id are merged and their
// scores summed, with the personal counters reported in Meta. Equal scores keep
// the order in which their decks first appeared in signals. At most limit
// entries are returned; limit <= 0 or above MaxEntries means MaxEntries.
//
// The result is never nil so that an empty ranking encodes as [].
func Score(signals []domain.DeckSignal, weights domain.Weights, mineOnly bool, limit int) []domain.RecommendationEntry {
	if limit <= 0 || limit > MaxEntries {
		limit = MaxEntries
	}

	entries := make([]domain.RecommendationEntry, 0, len(signals))
	index := make(map[int64]int, len(signals))
	personal := make(map[int64]bool, len(signals))

	for _, s := range signals {
		var score float64
		switch {
		case s.IsOwnedByRequester:
			score = PersonalScore(s, weights)
		case mineOnly:
			continue
		default:
			score = PopularScore(s, weights)
		}

		i, seen := index[s.DeckID]
		if !seen {
			index[s.DeckID] = len(entries)
			entries = append(entries, domain.RecommendationEntry{
				DeckID:  s.DeckID,
				Name:    s.Name,
				OwnerID: s.OwnerID,
				Score:   score,
				Meta:    metaFor(s),
			})
			personal[s.DeckID] = s.IsOwnedByRequester
			continue
		}

		entries[i].Score += score
		if s.IsOwnedByRequester && !personal[s.DeckID] {
			entries[i].Meta = metaFor(s)
			personal[s.DeckID] = true
		}
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Score > entries[b].Score
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func metaFor(s domain.DeckSignal) domain.RecommendationMeta {
	return domain.RecommendationMeta{
		Due:      s.DueCount,
		Assigned: s.AssignedDueCount,
		Recent:   s.RecentReviewCount,
		Wrong:    s.WrongCount,
	}
}
