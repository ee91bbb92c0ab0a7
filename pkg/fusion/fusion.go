// Package fusion merges multiple ranked candidate lists into a single
// ordering using reciprocal rank fusion. RRF is rank-based rather than
// score-based, so it tolerates input rankings whose scores live on
// incomparable scales (cosine similarity vs raw term-overlap weight).
package fusion

import "sort"

// DefaultConstant is the conventional RRF smoothing constant.
const DefaultConstant = 60

// Ranked is one fused candidate with its combined score.
type Ranked struct {
	ID    string
	Score float64
}

// ReciprocalRank fuses the given ranked ID lists. Each candidate scores the
// sum, over every list it appears in, of 1/(rank + constant) with ranks
// starting at 1; absence from a list contributes zero. Ties break by first
// appearance across the lists in input order, so callers control tie
// priority by list position (dense first, by convention).
//
// A non-positive constant falls back to DefaultConstant. Duplicate IDs
// within one list count only their best (first) rank.
func ReciprocalRank(lists [][]string, constant float64) []Ranked {
	if constant <= 0 {
		constant = DefaultConstant
	}

	scores := make(map[string]float64)
	firstSeen := make(map[string]int)
	order := 0

	for _, list := range lists {
		seen := make(map[string]bool, len(list))
		for rank, id := range list {
			if seen[id] {
				continue
			}
			seen[id] = true

			scores[id] += 1.0 / (float64(rank+1) + constant)
			if _, ok := firstSeen[id]; !ok {
				firstSeen[id] = order
				order++
			}
		}
	}

	fused := make([]Ranked, 0, len(scores))
	for id, score := range scores {
		fused = append(fused, Ranked{ID: id, Score: score})
	}

	sort.SliceStable(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		return firstSeen[fused[i].ID] < firstSeen[fused[j].ID]
	})

	return fused
}

// Truncate returns at most n fused results, preserving order.
func Truncate(fused []Ranked, n int) []Ranked {
	if n <= 0 || n >= len(fused) {
		return fused
	}
	return fused[:n]
}
