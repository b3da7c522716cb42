package game

// Declaration is a snipe call: a (category, rank) pair that, when matched by
// an evaluated hand at showdown, demotes that hand below every intact hand.
type Declaration struct {
	PlayerID string   `json:"player_id"`
	Rank     Category `json:"rank"`
	Number   Card     `json:"number"`
}

// Target is a declarable (category, rank) pair.
type Target struct {
	Rank   Category `json:"rank"`
	Number Card     `json:"number"`
}

// declarable categories, strongest first. HIGH cannot be sniped.
var snipeableRanks = []Category{Four, FullHouse, Straight, Triple, TwoPair, Pair}

// Declarable reports whether the (rank, number) pair is a legal snipe
// target at all: a declarable category and an in-range rank.
func Declarable(rank Category, number Card) bool {
	if number < MinRank || number > MaxRank {
		return false
	}
	for _, r := range snipeableRanks {
		if rank == r {
			return true
		}
	}
	return false
}

// ValidDeclaration reports whether d may be recorded: a legal target not yet
// declared this hand. Each (rank, number) pair is unique per hand across all
// players.
func ValidDeclaration(d Declaration, existing []Declaration) bool {
	if !Declarable(d.Rank, d.Number) {
		return false
	}
	for _, e := range existing {
		if e.Rank == d.Rank && e.Number == d.Number {
			return false
		}
	}
	return true
}

// CanSnipe reports whether p still owes a snipe-phase action.
func CanSnipe(p *Player) bool {
	return !p.Folded && !p.Survived && p.Snipe == nil
}

// ApplySnipes flags every evaluation whose (category, primary) matches a
// declaration. Flagged hands lose to all unflagged hands at showdown.
func ApplySnipes(evals []HandEval, decls []Declaration) []HandEval {
	out := make([]HandEval, len(evals))
	for i, ev := range evals {
		for _, d := range decls {
			if d.Rank == ev.Category && d.Number == ev.Primary {
				ev.SnipedDown = true
				break
			}
		}
		out[i] = ev
	}
	return out
}

// AvailableTargets enumerates the combinations still open for declaration.
func AvailableTargets(existing []Declaration) []Target {
	out := make([]Target, 0, len(snipeableRanks)*MaxRank)
	for _, rank := range snipeableRanks {
		for n := MinRank; n <= MaxRank; n++ {
			if ValidDeclaration(Declaration{Rank: rank, Number: Card(n)}, existing) {
				out = append(out, Target{Rank: rank, Number: Card(n)})
			}
		}
	}
	return out
}
