package game

// Per-seat-count starting stacks. The survival threshold sits a fixed margin
// above the stack a seat started with; confirmation always costs a flat fee
// regardless of seat count.
var StartingChips = map[int]int{2: 100, 3: 90, 4: 80, 5: 70, 6: 60}

const (
	Ante           = 1
	SurvivalFee    = 75
	survivalMargin = 15
	defaultStack   = 100
)

func startingStack(seats int) int {
	if chips, ok := StartingChips[seats]; ok {
		return chips
	}
	return defaultStack
}

// SurvivalThreshold is the chip count at which a player auto-confirms
// survival after a showdown.
func SurvivalThreshold(initialPlayers int) int {
	return startingStack(initialPlayers) + survivalMargin
}

// CanConfirmSurvival reports whether p is due for confirmation.
func CanConfirmSurvival(p *Player, initialPlayers int) bool {
	return !p.Survived && p.Chips >= SurvivalThreshold(initialPlayers)
}

// runSurvival confirms every eligible player in seating order from the
// dealer, collecting the fees into a side pool, then redistributes the pool:
// broke actives get 1 chip each first, the rest splits across survivors with
// the remainder handed out one by one. Returns ids confirmed this round.
// Every fee collected is redistributed, so total chips are conserved.
func runSurvival(players []*Player, dealerIdx, initialPlayers int) []string {
	confirmed := make([]string, 0, len(players))
	pool := 0

	n := len(players)
	for i := 0; i < n; i++ {
		p := players[(dealerIdx+i)%n]
		if !CanConfirmSurvival(p, initialPlayers) {
			continue
		}
		if p.Chips < SurvivalFee {
			// unreachable: the threshold is never below the fee
			continue
		}
		p.Chips -= SurvivalFee
		p.Survived = true
		pool += SurvivalFee
		confirmed = append(confirmed, p.ID)
	}
	if pool == 0 {
		return confirmed
	}

	// elimination-avoidance first: broke actives take 1 chip each
	for i := 0; i < n && pool > 0; i++ {
		p := players[(dealerIdx+i)%n]
		if !p.Survived && p.Chips == 0 {
			p.Chips = 1
			pool--
		}
	}

	survivors := make([]*Player, 0, n)
	for i := 0; i < n; i++ {
		p := players[(dealerIdx+i)%n]
		if p.Survived {
			survivors = append(survivors, p)
		}
	}
	if len(survivors) == 0 {
		return confirmed
	}
	share := pool / len(survivors)
	rem := pool % len(survivors)
	for i, p := range survivors {
		p.Chips += share
		if i < rem {
			p.Chips++
		}
	}
	return confirmed
}

// ActivePlayerCount counts players still competing: not survived and not
// out of chips.
func ActivePlayerCount(players []*Player) int {
	active := 0
	for _, p := range players {
		if !p.Survived && p.Chips > 0 {
			active++
		}
	}
	return active
}

// GameOver is true when at most one player is still competing.
func GameOver(players []*Player) bool {
	return ActivePlayerCount(players) <= 1
}
