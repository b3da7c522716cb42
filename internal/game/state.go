package game

// Phase is the observable state-machine node. Deal, reveal and showdown are
// entry work folded into transitions, so the engine never rests on them, but
// showdown still appears in the diff stream with its own version.
type Phase string

const (
	PhaseWaiting   Phase = "waiting"
	PhaseBetRound1 Phase = "bet_round1"
	PhaseBetRound2 Phase = "bet_round2"
	PhaseSnipe     Phase = "snipe_phase"
	PhaseShowdown  Phase = "showdown"
	PhaseGameOver  Phase = "game_over"
)

const MaxPlayers = 6

type Player struct {
	ID       string       `json:"id"`
	Chips    int          `json:"chips"`
	Bet      int          `json:"bet"`
	Folded   bool         `json:"folded"`
	Hand     []Card       `json:"hand,omitempty"` // 0 or 2 cards
	Survived bool         `json:"survived"`
	Snipe    *Declaration `json:"snipe,omitempty"`
}

// GameState is the root aggregate for one room. It is owned exclusively by
// the engine and serialized whole for snapshots, so every field is exported
// with a JSON tag.
type GameState struct {
	Phase          Phase         `json:"phase"`
	Players        []*Player     `json:"players"`
	Deck           []Card        `json:"deck"`
	Community      []Card        `json:"community"`
	Revealed       int           `json:"revealed"` // 0, 2 or 4
	Pot            int           `json:"pot"`
	CurrentBet     int           `json:"current_bet"`
	Version        int           `json:"version"`
	DealerIdx      int           `json:"dealer_idx"`
	Street         int           `json:"street"` // betting round 1 or 2
	Betting        *BettingRound `json:"betting,omitempty"`
	Snipes         []Declaration `json:"snipes,omitempty"`
	SnipeOrder     []int         `json:"snipe_order,omitempty"`
	SnipeTurn      int           `json:"snipe_turn"`
	InitialPlayers int           `json:"initial_players"`
	Dealt          bool          `json:"dealt"` // stacks allocated at first deal
}

func NewGameState() *GameState {
	return &GameState{Phase: PhaseWaiting}
}

func (s *GameState) player(id string) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// IntentType names every inbound client intent.
type IntentType string

const (
	IntentJoin      IntentType = "JOIN"
	IntentStartGame IntentType = "START_GAME"
	IntentCheck     IntentType = "CHECK"
	IntentCall      IntentType = "CALL"
	IntentRaise     IntentType = "RAISE"
	IntentFold      IntentType = "FOLD"
	IntentSnipe     IntentType = "SNIPE"
	IntentSnipePass IntentType = "SNIPE_PASS"
)

// Intent is one client command. PlayerID identifies the acting player for
// everything but JOIN, where it names the seat being claimed.
type Intent struct {
	Type         IntentType `json:"type"`
	PlayerID     string     `json:"player_id,omitempty"`
	Amount       int        `json:"amount,omitempty"`
	TargetRank   Category   `json:"target_rank,omitempty"`
	TargetNumber Card       `json:"target_number,omitempty"`
}

// DiffType tags one outbound broadcast message.
type DiffType string

const (
	DiffState     DiffType = "STATE"
	DiffPot       DiffType = "POT"
	DiffPlayer    DiffType = "PLAYER"
	DiffCommunity DiffType = "COMMUNITY"
	DiffWinners   DiffType = "WINNERS"
	DiffSurvival  DiffType = "SURVIVAL"
)

// PlayerView is a player's public face in PLAYER diffs. Hole cards never
// leave the engine through diffs.
type PlayerView struct {
	ID       string `json:"id"`
	Chips    int    `json:"chips"`
	Bet      int    `json:"bet"`
	Folded   bool   `json:"folded"`
	Survived bool   `json:"survived"`
}

// Diff is one versioned message for subscribers. Each accepted transition
// yields a STATE diff; richer diffs derived from the same transition share
// its version.
type Diff struct {
	Type      DiffType    `json:"type"`
	Version   int         `json:"version"`
	Value     Phase       `json:"value,omitempty"`
	Pot       *int        `json:"pot,omitempty"`
	Player    *PlayerView `json:"player,omitempty"`
	Community []Card      `json:"community,omitempty"`
	Winners   []string    `json:"winners,omitempty"`
	Survivors []string    `json:"survivors,omitempty"`
	Targets   []Target    `json:"targets,omitempty"`
}

func viewOf(p *Player) *PlayerView {
	return &PlayerView{ID: p.ID, Chips: p.Chips, Bet: p.Bet, Folded: p.Folded, Survived: p.Survived}
}

func intp(v int) *int { return &v }
