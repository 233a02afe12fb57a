// Package ranking holds the Leitner-style mastery policy: five boxes, promotion on
// a correct answer, demotion on a miss, and a fixed draw weight per box.
package ranking

import (
	"math/rand/v2"
	"sort"
)

const (
	MinRank     = 1
	MaxRank     = 5
	DefaultRank = 2
)

// Weights is the relative draw weight per rank. The values roughly halve per
// step and do not sum to 100; samplers normalise by the actual total.
var Weights = map[int]int{
	1: 50,
	2: 25,
	3: 13,
	4: 7,
	5: 5,
}

func IsValid(rank int) bool {
	return rank >= MinRank && rank <= MaxRank
}

func Clamp(rank int) int {
	return min(MaxRank, max(MinRank, rank))
}

// Promote moves a question up one box after a correct answer.
func Promote(rank int) int {
	return min(MaxRank, rank+1)
}

// Demote moves a question down one box after a wrong answer.
func Demote(rank int) int {
	return max(MinRank, rank-1)
}

// Weight returns the draw weight for rank; unknown ranks weigh 1.
func Weight(rank int) int {
	if w, ok := Weights[rank]; ok {
		return w
	}
	return 1
}

// Sampler draws indexes with probability proportional to their weights using a
// cumulative sum and binary search.
type Sampler struct {
	cumulative []int
}

func NewSampler(weights []int) *Sampler {
	cumulative := make([]int, len(weights))
	total := 0
	for i, w := range weights {
		if w > 0 {
			total += w
		}
		cumulative[i] = total
	}
	return &Sampler{cumulative: cumulative}
}

// NewRankSampler builds a sampler over a slice of ranks using Weights.
func NewRankSampler(ranks []int) *Sampler {
	weights := make([]int, len(ranks))
	for i, r := range ranks {
		weights[i] = Weight(r)
	}
	return NewSampler(weights)
}

func (s *Sampler) Total() int {
	if len(s.cumulative) == 0 {
		return 0
	}
	return s.cumulative[len(s.cumulative)-1]
}

// Draw returns a weighted random index, or -1 when nothing can be drawn.
func (s *Sampler) Draw(rng *rand.Rand) int {
	total := s.Total()
	if total <= 0 {
		return -1
	}
	target := rng.IntN(total)
	return sort.SearchInts(s.cumulative, target+1)
}
