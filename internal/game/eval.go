package game

import (
	"fmt"
	"sort"
)

// Category ranking: FOUR > FULL_HOUSE > STRAIGHT > TRIPLE > TWO_PAIR > PAIR > HIGH.
// With no suits there is no flush family.
type Category int

const (
	High Category = iota
	Pair
	TwoPair
	Triple
	Straight
	FullHouse
	Four
)

var categoryNames = map[Category]string{
	High:      "HIGH",
	Pair:      "PAIR",
	TwoPair:   "TWO_PAIR",
	Triple:    "TRIPLE",
	Straight:  "STRAIGHT",
	FullHouse: "FULL_HOUSE",
	Four:      "FOUR",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func ParseCategory(name string) (Category, error) {
	for c, n := range categoryNames {
		if n == name {
			return c, nil
		}
	}
	return High, fmt.Errorf("unknown hand category %q", name)
}

// HandEval is the best reading of a player's cards. Primary is the defining
// rank (the quad, the triple, the straight's top card, the high pair...),
// Secondary the second defining rank for full houses and two pairs.
type HandEval struct {
	Category   Category `json:"category"`
	Primary    Card     `json:"primary"`
	Secondary  Card     `json:"secondary,omitempty"`
	Kickers    []Card   `json:"kickers,omitempty"`
	SnipedDown bool     `json:"sniped_down,omitempty"`
}

// Evaluate scores 2 hole cards against up to 4 community cards, taking the
// best 5-card subset of the combined set.
func Evaluate(hole [2]Card, community []Card) HandEval {
	all := append([]Card{hole[0], hole[1]}, community...)
	if len(all) <= 5 {
		return eval5(all)
	}

	var best HandEval
	first := true
	forEachSubset(len(all), 5, func(idx []int) {
		combo := make([]Card, len(idx))
		for i, j := range idx {
			combo[i] = all[j]
		}
		h := eval5(combo)
		if first || Compare(h, best) > 0 {
			best = h
			first = false
		}
	})
	return best
}

// Compare returns the sign of a-b under the hand total order. A sniped-down
// hand ranks below every intact hand and is compared normally against other
// sniped-down hands.
func Compare(a, b HandEval) int {
	av, bv := int(a.Category), int(b.Category)
	if a.SnipedDown {
		av = -1
	}
	if b.SnipedDown {
		bv = -1
	}
	if av != bv {
		return av - bv
	}
	if a.Primary != b.Primary {
		return int(a.Primary - b.Primary)
	}
	if a.Secondary != b.Secondary {
		return int(a.Secondary - b.Secondary)
	}
	for i := 0; i < len(a.Kickers) && i < len(b.Kickers); i++ {
		if a.Kickers[i] != b.Kickers[i] {
			return int(a.Kickers[i] - b.Kickers[i])
		}
	}
	return 0
}

func eval5(cards []Card) HandEval {
	counts := map[Card]int{}
	for _, c := range cards {
		counts[c]++
	}
	ranks := make([]Card, 0, len(counts))
	for r := range counts {
		ranks = append(ranks, r)
	}
	// by count, then rank, descending
	sort.Slice(ranks, func(i, j int) bool {
		if counts[ranks[i]] != counts[ranks[j]] {
			return counts[ranks[i]] > counts[ranks[j]]
		}
		return ranks[i] > ranks[j]
	})

	top := ranks[0]
	switch counts[top] {
	case 4:
		return HandEval{Category: Four, Primary: top, Kickers: others(ranks, counts, 1, top)}
	case 3:
		if len(ranks) >= 2 && counts[ranks[1]] == 2 {
			return HandEval{Category: FullHouse, Primary: top, Secondary: ranks[1]}
		}
		return HandEval{Category: Triple, Primary: top, Kickers: others(ranks, counts, 2, top)}
	case 2:
		if len(ranks) >= 2 && counts[ranks[1]] == 2 {
			return HandEval{Category: TwoPair, Primary: top, Secondary: ranks[1], Kickers: others(ranks, counts, 1, top, ranks[1])}
		}
		return HandEval{Category: Pair, Primary: top, Kickers: others(ranks, counts, 3, top)}
	}

	if len(cards) == 5 && len(ranks) == 5 && ranks[0]-ranks[4] == 4 {
		return HandEval{Category: Straight, Primary: ranks[0]}
	}
	return HandEval{Category: High, Primary: top, Kickers: others(ranks, counts, 4, top)}
}

// others collects up to n kicker ranks in descending order, expanding
// duplicate counts and skipping the excluded defining ranks.
func others(ranks []Card, counts map[Card]int, n int, exclude ...Card) []Card {
	desc := append([]Card(nil), ranks...)
	sort.Slice(desc, func(i, j int) bool { return desc[i] > desc[j] })

	out := make([]Card, 0, n)
	for _, r := range desc {
		skip := false
		for _, e := range exclude {
			if r == e {
				skip = true
			}
		}
		if skip {
			continue
		}
		for i := 0; i < counts[r] && len(out) < n; i++ {
			out = append(out, r)
		}
		if len(out) == n {
			break
		}
	}
	return out
}

func forEachSubset(n, k int, fn func(idx []int)) {
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		fn(idx)
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
