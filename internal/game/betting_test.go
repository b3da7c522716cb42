package game

import "testing"

func fourSeats() []*Player {
	return []*Player{
		{ID: "a", Chips: 79, Bet: 1},
		{ID: "b", Chips: 79, Bet: 1},
		{ID: "c", Chips: 79, Bet: 1},
		{ID: "d", Chips: 79, Bet: 1},
	}
}

func TestBettingOrderStartsAfterDealer(t *testing.T) {
	players := fourSeats()
	players[2].Folded = true
	players[3].Survived = true
	b := NewBettingRound(players, 1, 1)
	if len(b.Order) != 2 || b.Order[0] != 0 || b.Order[1] != 1 {
		t.Fatalf("expected order [0 1] from dealer seat 1, got %v", b.Order)
	}
	if b.Actor() != 0 {
		t.Fatalf("first to act should be seat 0, got %d", b.Actor())
	}
}

func TestBettingAllCheckedCompletes(t *testing.T) {
	players := fourSeats()
	b := NewBettingRound(players, 0, 1)
	for i := 0; i < 4; i++ {
		if b.Done(players) {
			t.Fatalf("round done after %d of 4 checks", i)
		}
		b.RecordBet(players[b.Actor()].Bet)
	}
	if !b.Done(players) {
		t.Fatalf("round should be done once everyone matched and acted")
	}
}

func TestBettingRaiseReopensAction(t *testing.T) {
	players := fourSeats()
	b := NewBettingRound(players, 0, 1)

	// seats 1 and 2 check, seat 3 raises to 5
	b.RecordBet(1)
	b.RecordBet(1)
	players[3].Bet = 5
	b.RecordBet(5)
	if b.Highest != 5 {
		t.Fatalf("expected highest 5, got %d", b.Highest)
	}
	if b.Done(players) {
		t.Fatalf("round cannot end right after a raise")
	}

	// everyone else has to match again
	for _, seat := range []int{0, 1, 2} {
		if b.Actor() != seat {
			t.Fatalf("expected seat %d to act, got %d", seat, b.Actor())
		}
		players[seat].Bet = 5
		b.RecordBet(5)
	}
	if !b.Done(players) {
		t.Fatalf("round should complete after callers match the raise")
	}
}

func TestBettingFoldRemovesSeat(t *testing.T) {
	players := fourSeats()
	b := NewBettingRound(players, 0, 1)
	if b.Actor() != 1 {
		t.Fatalf("expected seat 1 first, got %d", b.Actor())
	}
	players[1].Folded = true
	b.RecordFold()
	if len(b.Order) != 3 {
		t.Fatalf("expected 3 seats left, got %d", len(b.Order))
	}
	if b.Actor() != 2 {
		t.Fatalf("turn should pass to seat 2, got %d", b.Actor())
	}
}

func TestBettingLoneSeatCompletes(t *testing.T) {
	players := []*Player{
		{ID: "a", Chips: 99, Bet: 1},
		{ID: "b", Chips: 99, Bet: 1},
	}
	b := NewBettingRound(players, 0, 1)
	players[1].Folded = true
	b.RecordFold()
	if !b.Done(players) {
		t.Fatalf("round with one seat left is complete")
	}
}
