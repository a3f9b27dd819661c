package engine

import (
	"fmt"
	"testing"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// newDealtGame returns a seeded game with a fresh plain-shuffle deal.
func newDealtGame(t *testing.T, seed uint64) *GameState {
	t.Helper()
	g := NewGame(seed, DefaultHouseRules())
	g.Deal()
	if err := g.CheckConservation(); err != nil {
		t.Fatalf("fresh deal: %v", err)
	}
	return &g
}

// emptyGame returns a game with every pile empty, for hand-built layouts.
func emptyGame() *GameState {
	g := NewGame(1, DefaultHouseRules())
	return &g
}

// cardOf parses a two-letter label such as "QH" or "TS".
func cardOf(label string) Card {
	for s := uint8(0); s < NumSuits; s++ {
		for r := RankAce; r <= RankKing; r++ {
			if c := NewCard(s, r); c.String() == label {
				return c
			}
		}
	}
	panic("bad card label " + label)
}

func up(label string) Slot   { return Slot{Card: cardOf(label), FaceUp: true} }
func down(label string) Slot { return Slot{Card: cardOf(label)} }

func setPile(g *GameState, id PileID, slots ...Slot) {
	g.Pile(id).Cards = append([]Slot(nil), slots...)
}

// fillFoundation stacks Ace through top of suit onto foundation i.
func fillFoundation(g *GameState, i int, suit, top uint8) {
	p := g.Pile(FoundationID(i))
	p.Cards = nil
	for r := RankAce; r <= top; r++ {
		p.Cards = append(p.Cards, Slot{Card: NewCard(suit, r), FaceUp: true})
	}
}

// fingerprint captures everything an undo must restore.
func fingerprint(g *GameState) string {
	return fmt.Sprintf("%s|moves=%d|score=%d|log=%d", g.String(), g.MoveCount, g.Score, g.History.Len())
}

// ---------------------------------------------------------------------------
// Deal
// ---------------------------------------------------------------------------

func TestDealLayout(t *testing.T) {
	g := newDealtGame(t, 42)

	for c := 0; c < NumTableaus; c++ {
		p := &g.Tableau[c]
		if p.Len() != c+1 {
			t.Fatalf("tableau[%d] has %d cards, want %d", c, p.Len(), c+1)
		}
		for i, s := range p.Cards {
			wantUp := i == c
			if s.FaceUp != wantUp {
				t.Errorf("tableau[%d][%d] FaceUp = %v, want %v", c, i, s.FaceUp, wantUp)
			}
		}
	}
	if g.Stock.Len() != DeckSize-TableauDealt {
		t.Errorf("stock has %d cards, want %d", g.Stock.Len(), DeckSize-TableauDealt)
	}
	for i, s := range g.Stock.Cards {
		if s.FaceUp {
			t.Errorf("stock[%d] is face-up", i)
		}
	}
	if !g.Waste.Empty() {
		t.Errorf("waste has %d cards, want 0", g.Waste.Len())
	}
	for i := range g.Foundation {
		if !g.Foundation[i].Empty() {
			t.Errorf("foundation[%d] is not empty", i)
		}
	}
	if g.MoveCount != 0 || g.Score != 0 || g.History.Len() != 0 {
		t.Errorf("counters not reset: moves=%d score=%d log=%d", g.MoveCount, g.Score, g.History.Len())
	}
	if g.IsWin() || g.CheckWin() {
		t.Error("fresh deal reports a win")
	}
}

func TestDealFromOrder(t *testing.T) {
	deck := GenerateDeck()
	g := emptyGame()
	g.DealFrom(deck)

	if got := g.Tableau[0].TopCard(); got != deck[0] {
		t.Errorf("tableau[0] top = %s, want %s", got, deck[0])
	}
	if got := g.Tableau[6].TopCard(); got != deck[TableauDealt-1] {
		t.Errorf("tableau[6] top = %s, want %s", got, deck[TableauDealt-1])
	}
	if got := g.Stock.TopCard(); got != deck[DeckSize-1] {
		t.Errorf("stock top = %s, want %s", got, deck[DeckSize-1])
	}
}

func TestDealFromWrongSizePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("DealFrom with 51 cards did not panic")
		}
	}()
	g := emptyGame()
	g.DealFrom(GenerateDeck()[:51])
}

func TestSeededDealReproducible(t *testing.T) {
	a := newDealtGame(t, 7)
	b := newDealtGame(t, 7)
	if a.String() != b.String() {
		t.Errorf("same seed dealt different layouts:\n%s\n%s", a, b)
	}
	c := newDealtGame(t, 8)
	if a.String() == c.String() {
		t.Error("seeds 7 and 8 dealt identical layouts")
	}
}

func TestLevelDealReproducible(t *testing.T) {
	rules := DefaultHouseRules()
	rules.Level = 55

	a := NewGame(0, rules)
	a.Deal()
	b := NewGame(0, rules)
	b.Deal()
	if a.String() != b.String() {
		t.Error("level deal without a seed is not fixed per level")
	}
	if err := a.CheckConservation(); err != nil {
		t.Fatal(err)
	}
}

func TestRedealResetsState(t *testing.T) {
	g := newDealtGame(t, 3)
	if _, err := g.Draw(); err != nil {
		t.Fatal(err)
	}
	g.Score = 30
	g.Deal()
	if g.MoveCount != 0 || g.Score != 0 || g.History.Len() != 0 {
		t.Errorf("redeal left moves=%d score=%d log=%d", g.MoveCount, g.Score, g.History.Len())
	}
	if err := g.CheckConservation(); err != nil {
		t.Fatal(err)
	}
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

func TestTopCardEmptyPile(t *testing.T) {
	g := newDealtGame(t, 1)
	s, ok := g.TopCard(WasteID)
	if ok || s.Card != EmptyCard {
		t.Errorf("TopCard(waste) = %v, %v; want EmptyCard, false", s, ok)
	}
	if _, ok := g.TopCard(PileID{Kind: KindTableau, Index: 9}); ok {
		t.Error("TopCard on unknown pile returned ok")
	}
	if s, ok := g.TopCard(TableauID(3)); !ok || !s.FaceUp {
		t.Errorf("TopCard(tableau[3]) = %v, %v; want a face-up card", s, ok)
	}
}

func TestLocateAndStackFrom(t *testing.T) {
	g := emptyGame()
	setPile(g, TableauID(2), down("4C"), up("9S"), up("8H"), up("7C"))

	id, i, ok := g.Locate(cardOf("8H"))
	if !ok || id != TableauID(2) || i != 2 {
		t.Fatalf("Locate(8H) = %v, %d, %v", id, i, ok)
	}
	stack := g.StackFrom(cardOf("8H"))
	if len(stack) != 2 || stack[0].Card != cardOf("8H") || stack[1].Card != cardOf("7C") {
		t.Errorf("StackFrom(8H) = %v", stack)
	}
	if g.StackFrom(cardOf("AH")) != nil {
		t.Error("StackFrom for a card not in play should be nil")
	}
}

func TestCheckConservationDetectsDuplicate(t *testing.T) {
	g := newDealtGame(t, 11)
	g.Waste.push(g.Tableau[0].Cards[0])
	if err := g.CheckConservation(); err == nil {
		t.Error("duplicated card not detected")
	}
}

// ---------------------------------------------------------------------------
// Save / Restore
// ---------------------------------------------------------------------------

func TestSaveRestore(t *testing.T) {
	g := newDealtGame(t, 5)
	snap := g.Save()
	before := fingerprint(g)

	for i := 0; i < 5; i++ {
		if _, err := g.Draw(); err != nil {
			t.Fatal(err)
		}
	}
	if fingerprint(g) == before {
		t.Fatal("draws did not change the state")
	}

	g.Restore(snap)
	if got := fingerprint(g); got != before {
		t.Errorf("restore mismatch:\n got %s\nwant %s", got, before)
	}

	// The snapshot is not aliased: mutating after restore leaves it usable.
	if _, err := g.Draw(); err != nil {
		t.Fatal(err)
	}
	g.Restore(snap)
	if got := fingerprint(g); got != before {
		t.Errorf("second restore mismatch:\n got %s\nwant %s", got, before)
	}
}
