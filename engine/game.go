// Package engine implements the Klondike solitaire rules.
//
// It models cards, piles, legal moves, move execution with an undo log, a
// heuristic auto-solver and win detection. The package is pure: it performs
// no I/O, never logs and is not safe for concurrent use. Hosts serialize all
// calls on one GameState (see internal/game for the session adapter).
package engine

import (
	"fmt"
	"math/rand/v2"
)

// TableauDealt is the number of cards dealt to the tableau (1+2+…+7).
const TableauDealt = NumTableaus * (NumTableaus + 1) / 2

// GameState holds the complete state of one Klondike game.
type GameState struct {
	Stock      Pile
	Waste      Pile
	Foundation [NumFoundations]Pile
	Tableau    [NumTableaus]Pile

	History   UndoLog
	MoveCount int
	Score     int

	Rules HouseRules
	Seed  uint64 // layout seed; 0 = unseeded
	RNG   uint64 // xorshift state for solver perturbation

	win WinChecker
}

// ---------------------------------------------------------------------------
// xorshift64 RNG, inline
// ---------------------------------------------------------------------------

func (g *GameState) nextRand() uint64 {
	x := g.RNG
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.RNG = x
	return x
}

// randN returns a random number in [0, n).
func (g *GameState) randN(n uint64) uint64 {
	return g.nextRand() % n
}

// ---------------------------------------------------------------------------
// NewGame and Deal
// ---------------------------------------------------------------------------

// NewGame initializes a GameState with empty piles. A zero seed means the
// layout comes from the unseeded global source.
func NewGame(seed uint64, rules HouseRules) GameState {
	var g GameState
	g.Seed = seed
	g.Rules = rules
	g.RNG = seed
	if g.RNG == 0 {
		g.RNG = rand.Uint64() | 1 // xorshift can't start at 0
	}
	g.initPiles()
	return g
}

func (g *GameState) initPiles() {
	g.Stock = Pile{ID: StockID}
	g.Waste = Pile{ID: WasteID}
	for i := range g.Foundation {
		g.Foundation[i] = Pile{ID: FoundationID(i)}
	}
	for i := range g.Tableau {
		g.Tableau[i] = Pile{ID: TableauID(i)}
	}
}

// ShuffledDeck returns the deck order this game deals from.
//
//	level>0, seed=0  → DifficultyShuffle(level)
//	level>0, seed≠0  → SeededShuffle(seed) + ApplyDifficulty(level)
//	level=0, seed≠0  → SeededShuffle(seed)
//	level=0, seed=0  → Shuffle
func (g *GameState) ShuffledDeck() []Card {
	deck := GenerateDeck()
	level := g.Rules.level()
	switch {
	case level > 0 && g.Seed == 0:
		DifficultyShuffle(deck, level)
	case level > 0:
		SeededShuffle(deck, g.Seed)
		ApplyDifficulty(deck, level)
	case g.Seed != 0:
		SeededShuffle(deck, g.Seed)
	default:
		Shuffle(deck)
	}
	return deck
}

// Deal clears every pile and deals a fresh layout.
func (g *GameState) Deal() {
	g.DealFrom(g.ShuffledDeck())
}

// DealFrom clears every pile and deals deck in order: column c receives c+1
// cards with only the last face-up, the rest go to the stock face-down with
// the final deck card on top. Panics if deck is not 52 cards long.
func (g *GameState) DealFrom(deck []Card) {
	if len(deck) != DeckSize {
		panic(fmt.Sprintf("engine: DealFrom needs %d cards, got %d", DeckSize, len(deck)))
	}
	g.initPiles()
	g.History.Clear()
	g.MoveCount = 0
	g.Score = 0
	g.win.Reset()

	next := 0
	for col := 0; col < NumTableaus; col++ {
		for j := 0; j <= col; j++ {
			g.Tableau[col].push(Slot{Card: deck[next], FaceUp: j == col})
			next++
		}
	}
	for ; next < len(deck); next++ {
		g.Stock.push(Slot{Card: deck[next]})
	}
}

// ---------------------------------------------------------------------------
// Query methods
// ---------------------------------------------------------------------------

// Pile returns the pile addressed by id, or nil if id is invalid.
func (g *GameState) Pile(id PileID) *Pile {
	if !id.Valid() {
		return nil
	}
	switch id.Kind {
	case KindStock:
		return &g.Stock
	case KindWaste:
		return &g.Waste
	case KindFoundation:
		return &g.Foundation[id.Index]
	default:
		return &g.Tableau[id.Index]
	}
}

// Piles returns every pile in a fixed order: stock, waste, foundations,
// tableaus.
func (g *GameState) Piles() []*Pile {
	out := make([]*Pile, 0, 2+NumFoundations+NumTableaus)
	out = append(out, &g.Stock, &g.Waste)
	for i := range g.Foundation {
		out = append(out, &g.Foundation[i])
	}
	for i := range g.Tableau {
		out = append(out, &g.Tableau[i])
	}
	return out
}

// TopCard returns the top slot of a pile. ok is false for an empty or
// unknown pile.
func (g *GameState) TopCard(id PileID) (Slot, bool) {
	p := g.Pile(id)
	if p == nil {
		return Slot{Card: EmptyCard}, false
	}
	return p.Top()
}

// Locate returns the pile and position holding c.
func (g *GameState) Locate(c Card) (PileID, int, bool) {
	for _, p := range g.Piles() {
		if i := p.IndexOf(c); i >= 0 {
			return p.ID, i, true
		}
	}
	return PileID{}, -1, false
}

// StackFrom returns the slots from c up to the top of c's pile. It returns
// nil when c is not in play.
func (g *GameState) StackFrom(c Card) []Slot {
	id, i, ok := g.Locate(c)
	if !ok {
		return nil
	}
	p := g.Pile(id)
	out := make([]Slot, len(p.Cards)-i)
	copy(out, p.Cards[i:])
	return out
}

// FoundationCount returns the number of cards on all foundations.
func (g *GameState) FoundationCount() int {
	n := 0
	for i := range g.Foundation {
		n += g.Foundation[i].Len()
	}
	return n
}

// FaceDownCount returns the number of face-down tableau cards.
func (g *GameState) FaceDownCount() int {
	n := 0
	for i := range g.Tableau {
		n += g.Tableau[i].FaceDownCount()
	}
	return n
}

// CheckConservation verifies that every one of the 52 cards is present
// exactly once across all piles.
func (g *GameState) CheckConservation() error {
	var seen [256]bool
	total := 0
	for _, p := range g.Piles() {
		for _, s := range p.Cards {
			if !s.Card.Valid() {
				return fmt.Errorf("engine: invalid card %#x in %s", uint8(s.Card), p.ID)
			}
			if seen[s.Card] {
				return fmt.Errorf("engine: card %s duplicated (found again in %s)", s.Card, p.ID)
			}
			seen[s.Card] = true
			total++
		}
	}
	if total != DeckSize {
		return fmt.Errorf("engine: %d cards in play, want %d", total, DeckSize)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Snapshot Undo (Save / Restore)
// ---------------------------------------------------------------------------

// Snapshot is a deep copy of GameState. Unlike the undo log it restores the
// whole state at once, including the undo log itself.
type Snapshot GameState

// Save returns a snapshot of the current game state.
func (g *GameState) Save() Snapshot { return Snapshot(g.clone()) }

// Restore replaces the game state with a copy of the given snapshot, so the
// snapshot stays reusable.
func (g *GameState) Restore(s Snapshot) {
	src := GameState(s)
	*g = src.clone()
}

func (g *GameState) clone() GameState {
	cp := *g
	cp.Stock = g.Stock.clone()
	cp.Waste = g.Waste.clone()
	for i := range g.Foundation {
		cp.Foundation[i] = g.Foundation[i].clone()
	}
	for i := range g.Tableau {
		cp.Tableau[i] = g.Tableau[i].clone()
	}
	cp.History = g.History.clone()
	return cp
}
