package game

import "math/rand"

// Engine owns one room's GameState and applies validated intents to it.
// It is not safe for concurrent use; the session layer serializes access
// through the room actor.
type Engine struct {
	State *GameState
	rng   *rand.Rand
}

func NewEngine(seed int64) *Engine {
	return &Engine{State: NewGameState(), rng: rand.New(rand.NewSource(seed))}
}

// Restore replaces the engine state, used when reviving a room from its
// latest snapshot.
func (e *Engine) Restore(s *GameState) {
	e.State = s
}

// Apply runs one intent through the guards and returns the diffs of every
// transition it caused, one STATE diff per version bump plus any richer
// payloads. A rejected intent returns no diffs and leaves state untouched.
func (e *Engine) Apply(in Intent) []Diff {
	s := e.State
	switch s.Phase {
	case PhaseWaiting:
		switch in.Type {
		case IntentJoin:
			return e.applyJoin(in)
		case IntentStartGame:
			if len(s.Players) < 2 {
				return nil
			}
			return e.deal(nil)
		}
	case PhaseBetRound1, PhaseBetRound2:
		switch in.Type {
		case IntentCheck, IntentCall, IntentRaise, IntentFold:
			return e.applyBetting(in)
		}
	case PhaseSnipe:
		switch in.Type {
		case IntentSnipe, IntentSnipePass:
			return e.applySnipe(in)
		}
	}
	return nil
}

// applyJoin seats a new player. A full room or duplicate id is a silent
// no-op: joins are a best-effort client retry path, not an error.
func (e *Engine) applyJoin(in Intent) []Diff {
	s := e.State
	if in.PlayerID == "" || len(s.Players) >= MaxPlayers || s.player(in.PlayerID) != nil {
		return nil
	}
	p := &Player{ID: in.PlayerID}
	s.Players = append(s.Players, p)
	s.Version++
	return []Diff{
		{Type: DiffState, Version: s.Version, Value: s.Phase},
		{Type: DiffPlayer, Version: s.Version, Player: viewOf(p)},
	}
}

// deal starts a hand: allocate stacks on the first deal, shuffle, give two
// hole cards to every funded player, open two community cards and charge the
// ante. The engine comes to rest in bet_round1.
func (e *Engine) deal(diffs []Diff) []Diff {
	s := e.State
	n := len(s.Players)

	if !s.Dealt {
		stack := startingStack(n)
		for _, p := range s.Players {
			p.Chips = stack
		}
		s.InitialPlayers = n
		s.Dealt = true
	}

	s.Deck = NewDeck(e.rng)
	s.Community = nil
	s.Revealed = 0
	s.Pot = 0
	s.Snipes = nil
	s.SnipeOrder = nil
	s.SnipeTurn = 0

	for _, p := range s.Players {
		p.Bet = 0
		p.Hand = nil
		p.Snipe = nil
		p.Folded = false
		if p.Survived {
			continue
		}
		if p.Chips < Ante {
			// cannot cover the ante: sit the hand out
			p.Folded = true
			continue
		}
		p.Hand = []Card{s.Deck[0], s.Deck[1]}
		s.Deck = s.Deck[2:]
		p.Chips -= Ante
		p.Bet = Ante
		s.Pot += Ante
	}

	s.Community = append(s.Community, s.Deck[0], s.Deck[1])
	s.Deck = s.Deck[2:]
	s.Revealed = 2
	s.CurrentBet = Ante
	s.Street = 1
	s.Betting = NewBettingRound(s.Players, s.DealerIdx, s.CurrentBet)
	s.Phase = PhaseBetRound1
	s.Version++

	diffs = append(diffs,
		Diff{Type: DiffState, Version: s.Version, Value: s.Phase},
		Diff{Type: DiffPot, Version: s.Version, Pot: intp(s.Pot)},
		Diff{Type: DiffCommunity, Version: s.Version, Community: append([]Card(nil), s.Community...)},
	)
	return diffs
}

func (e *Engine) applyBetting(in Intent) []Diff {
	s := e.State
	b := s.Betting
	if len(b.Order) == 0 {
		return nil
	}
	actor := s.Players[b.Actor()]
	if actor.ID != in.PlayerID {
		return nil
	}

	switch in.Type {
	case IntentCheck:
		if actor.Bet != b.Highest {
			return nil
		}
		b.RecordBet(actor.Bet)
	case IntentCall:
		need := b.Highest - actor.Bet
		if need <= 0 || actor.Chips < need {
			return nil
		}
		e.pay(actor, need)
		b.RecordBet(actor.Bet)
	case IntentRaise:
		if in.Amount < 1 {
			return nil
		}
		need := b.Highest - actor.Bet + in.Amount
		if actor.Chips < need {
			return nil
		}
		e.pay(actor, need)
		b.RecordBet(actor.Bet)
	case IntentFold:
		actor.Folded = true
		b.RecordFold()
	}

	s.CurrentBet = b.Highest
	s.Version++
	diffs := []Diff{
		{Type: DiffState, Version: s.Version, Value: s.Phase},
		{Type: DiffPlayer, Version: s.Version, Player: viewOf(actor)},
		{Type: DiffPot, Version: s.Version, Pot: intp(s.Pot)},
	}

	if !b.Done(s.Players) {
		return diffs
	}
	s.Betting = nil
	if s.Street == 1 {
		return e.reveal(diffs)
	}
	return e.startSnipePhase(diffs)
}

func (e *Engine) pay(p *Player, amount int) {
	p.Chips -= amount
	p.Bet += amount
	e.State.Pot += amount
}

// reveal opens the last two community cards and starts the second street.
func (e *Engine) reveal(diffs []Diff) []Diff {
	s := e.State
	s.Community = append(s.Community, s.Deck[0], s.Deck[1])
	s.Deck = s.Deck[2:]
	s.Revealed = 4
	s.Street = 2
	s.Betting = NewBettingRound(s.Players, s.DealerIdx, s.CurrentBet)
	s.Phase = PhaseBetRound2
	s.Version++
	diffs = append(diffs,
		Diff{Type: DiffState, Version: s.Version, Value: s.Phase},
		Diff{Type: DiffCommunity, Version: s.Version, Community: append([]Card(nil), s.Community...)},
	)
	if s.Betting.Done(s.Players) {
		// fold-to-one on the first street: nobody owes a second-street action
		s.Betting = nil
		return e.startSnipePhase(diffs)
	}
	return diffs
}

// startSnipePhase resets the per-hand snipe bookkeeping and fixes the
// declaration order: eligible players in seating order starting at the
// dealer.
func (e *Engine) startSnipePhase(diffs []Diff) []Diff {
	s := e.State
	n := len(s.Players)
	s.Snipes = nil
	s.SnipeOrder = nil
	s.SnipeTurn = 0
	for i := 0; i < n; i++ {
		seat := (s.DealerIdx + i) % n
		if CanSnipe(s.Players[seat]) {
			s.SnipeOrder = append(s.SnipeOrder, seat)
		}
	}
	s.Phase = PhaseSnipe
	s.Version++
	diffs = append(diffs, Diff{
		Type:    DiffState,
		Version: s.Version,
		Value:   s.Phase,
		Targets: AvailableTargets(s.Snipes),
	})
	if len(s.SnipeOrder) == 0 {
		return e.showdown(diffs)
	}
	return diffs
}

// applySnipe records a declaration or a pass for the player whose turn it
// is. A duplicate (rank, number) declaration is not recorded but still
// spends the turn.
func (e *Engine) applySnipe(in Intent) []Diff {
	s := e.State
	if s.SnipeTurn >= len(s.SnipeOrder) {
		return nil
	}
	actor := s.Players[s.SnipeOrder[s.SnipeTurn]]
	if actor.ID != in.PlayerID {
		return nil
	}

	if in.Type == IntentSnipe {
		if !Declarable(in.TargetRank, in.TargetNumber) {
			return nil
		}
		// a duplicate target is not recorded but still spends the turn
		d := Declaration{PlayerID: actor.ID, Rank: in.TargetRank, Number: in.TargetNumber}
		if ValidDeclaration(d, s.Snipes) {
			s.Snipes = append(s.Snipes, d)
			actor.Snipe = &d
		}
	}
	s.SnipeTurn++
	s.Version++
	diffs := []Diff{{Type: DiffState, Version: s.Version, Value: s.Phase}}

	if s.SnipeTurn >= len(s.SnipeOrder) {
		return e.showdown(diffs)
	}
	return diffs
}

// showdown evaluates the contenders, applies snipe demotion, splits the pot
// among the best hands and runs the survival ledger, then either ends the
// match or rolls straight into the next deal.
func (e *Engine) showdown(diffs []Diff) []Diff {
	s := e.State
	n := len(s.Players)

	type contender struct {
		seat int
		p    *Player
	}
	contenders := make([]contender, 0, n)
	for i := 0; i < n; i++ {
		seat := (s.DealerIdx + i) % n
		p := s.Players[seat]
		if !p.Folded && !p.Survived {
			contenders = append(contenders, contender{seat: seat, p: p})
		}
	}

	var winners []string
	switch len(contenders) {
	case 0:
		s.Pot = 0
	case 1:
		contenders[0].p.Chips += s.Pot
		s.Pot = 0
		winners = []string{contenders[0].p.ID}
	default:
		evals := make([]HandEval, len(contenders))
		for i, c := range contenders {
			evals[i] = Evaluate([2]Card{c.p.Hand[0], c.p.Hand[1]}, s.Community)
		}
		evals = ApplySnipes(evals, s.Snipes)

		best := 0
		winIdx := []int{0}
		for i := 1; i < len(evals); i++ {
			cmp := Compare(evals[i], evals[best])
			if cmp > 0 {
				best = i
				winIdx = []int{i}
			} else if cmp == 0 {
				winIdx = append(winIdx, i)
			}
		}
		// contenders are already in seating order from the dealer, so the
		// remainder chips land on the earliest winners
		share := s.Pot / len(winIdx)
		rem := s.Pot % len(winIdx)
		for i, idx := range winIdx {
			contenders[idx].p.Chips += share
			if i < rem {
				contenders[idx].p.Chips++
			}
			winners = append(winners, contenders[idx].p.ID)
		}
		s.Pot = 0
	}

	confirmed := runSurvival(s.Players, s.DealerIdx, s.InitialPlayers)

	s.Phase = PhaseShowdown
	s.Version++
	diffs = append(diffs,
		Diff{Type: DiffState, Version: s.Version, Value: PhaseShowdown},
		Diff{Type: DiffWinners, Version: s.Version, Winners: winners},
		Diff{Type: DiffPot, Version: s.Version, Pot: intp(0)},
	)
	if len(confirmed) > 0 {
		diffs = append(diffs, Diff{Type: DiffSurvival, Version: s.Version, Survivors: confirmed})
	}

	if GameOver(s.Players) {
		s.Phase = PhaseGameOver
		s.Version++
		return append(diffs, Diff{Type: DiffState, Version: s.Version, Value: s.Phase})
	}
	return e.deal(diffs)
}
