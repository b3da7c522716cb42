package game

// BettingRound drives one street. Order holds seat indexes of the eligible
// players starting immediately after the dealer; folding removes a seat from
// the order. Bets are hand-cumulative: Highest carries the running high
// total, and every surviving seat must match it and act at least once since
// the last raise before the round completes.
type BettingRound struct {
	Order   []int  `json:"order"`
	Turn    int    `json:"turn"`
	Highest int    `json:"highest"`
	Acted   []bool `json:"acted"`
}

func NewBettingRound(players []*Player, dealerIdx, highest int) *BettingRound {
	n := len(players)
	order := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		seat := (dealerIdx + i) % n
		p := players[seat]
		if !p.Folded && !p.Survived {
			order = append(order, seat)
		}
	}
	return &BettingRound{
		Order:   order,
		Highest: highest,
		Acted:   make([]bool, len(order)),
	}
}

// Actor returns the seat index whose turn it is.
func (b *BettingRound) Actor() int {
	return b.Order[b.Turn]
}

// RecordBet marks the actor as acted and advances the turn. A bet that
// pushes past the running high total is a raise: everyone else must act
// again before the round can complete.
func (b *BettingRound) RecordBet(newTotal int) {
	if newTotal > b.Highest {
		b.Highest = newTotal
		for i := range b.Acted {
			b.Acted[i] = false
		}
	}
	b.Acted[b.Turn] = true
	b.Turn = (b.Turn + 1) % len(b.Order)
}

// RecordFold drops the actor from the order. The turn index now points at
// the next seat, which slid into the vacated slot.
func (b *BettingRound) RecordFold() {
	b.Order = append(b.Order[:b.Turn], b.Order[b.Turn+1:]...)
	b.Acted = append(b.Acted[:b.Turn], b.Acted[b.Turn+1:]...)
	if len(b.Order) > 0 {
		b.Turn %= len(b.Order)
	}
}

// Done reports round completion: a lone remaining seat, or every remaining
// seat matching the high total having acted since the last raise.
func (b *BettingRound) Done(players []*Player) bool {
	if len(b.Order) <= 1 {
		return true
	}
	for i, seat := range b.Order {
		if !b.Acted[i] || players[seat].Bet != b.Highest {
			return false
		}
	}
	return true
}
