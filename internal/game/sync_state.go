// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/klondike/engine"
)

// CardUUIDTracker maps each dealt card to a stable UUID for the lifetime of
// a deal, so clients can address cards without learning face-down identities.
//
// A card that has been shown face-up gets a new UUID when it turns face-down
// again, so a hidden slot never carries an ID the client has seen revealed.
type CardUUIDTracker struct {
	byCard  map[engine.Card]uuid.UUID
	byID    map[uuid.UUID]engine.Card
	exposed map[engine.Card]bool
}

func newCardTracker() CardUUIDTracker {
	return CardUUIDTracker{
		byCard:  make(map[engine.Card]uuid.UUID, engine.DeckSize),
		byID:    make(map[uuid.UUID]engine.Card, engine.DeckSize),
		exposed: make(map[engine.Card]bool, engine.DeckSize),
	}
}

// assign hands out fresh UUIDs for every card in deck, dropping the previous
// deal's mapping.
func (t *CardUUIDTracker) assign(deck []engine.Card) {
	*t = newCardTracker()
	for _, c := range deck {
		id, _ := uuid.NewRandom()
		t.byCard[c] = id
		t.byID[id] = c
	}
}

// reissue replaces the UUID of c and forgets that it was shown.
func (t *CardUUIDTracker) reissue(c engine.Card) {
	delete(t.byID, t.byCard[c])
	id, _ := uuid.NewRandom()
	t.byCard[c] = id
	t.byID[id] = c
	delete(t.exposed, c)
}

// ID returns the UUID of card c in the current deal.
func (t *CardUUIDTracker) ID(c engine.Card) (uuid.UUID, bool) {
	id, ok := t.byCard[c]
	return id, ok
}

// Card resolves a UUID from the current deal.
func (t *CardUUIDTracker) Card(id uuid.UUID) (engine.Card, bool) {
	c, ok := t.byID[id]
	return c, ok
}

// ObfCard is the client view of a card. Face-down cards carry only their ID.
type ObfCard struct {
	ID     uuid.UUID `json:"id"`
	Known  bool      `json:"known"`
	Rank   string    `json:"rank,omitempty"`
	Suit   string    `json:"suit,omitempty"`
	FaceUp bool      `json:"faceUp"`
}

// ObfPile is the client view of one pile, bottom card first.
type ObfPile struct {
	Kind  string    `json:"kind"`
	Index int       `json:"index"`
	Cards []ObfCard `json:"cards"`
}

// ObfGameState is the complete client view of a game.
type ObfGameState struct {
	GameID      uuid.UUID `json:"gameId"`
	Level       int       `json:"level"`
	Stock       ObfPile   `json:"stock"`
	Waste       ObfPile   `json:"waste"`
	Foundations []ObfPile `json:"foundations"`
	Tableaus    []ObfPile `json:"tableaus"`
	MoveCount   int       `json:"moveCount"`
	Score       int       `json:"score"`
	CanUndo     bool      `json:"canUndo"`
	Won         bool      `json:"won"`
	AutoSolving bool      `json:"autoSolving"`
	ElapsedMs   int64     `json:"elapsedMs"`
	Elapsed     string    `json:"elapsed"` // MM:SS
}

// SyncState returns the client view of the current game.
func (g *KlondikeGame) SyncState() ObfGameState {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.obfuscatedState()
}

// syncExposure records every face-up card as shown and reissues the IDs of
// shown cards that are face-down again. It returns how many IDs changed.
// Assumes lock is held by caller.
func (g *KlondikeGame) syncExposure() int {
	n := 0
	for _, p := range g.Engine.Piles() {
		for _, sl := range p.Cards {
			switch {
			case sl.FaceUp:
				g.CardTracker.exposed[sl.Card] = true
			case g.CardTracker.exposed[sl.Card]:
				g.CardTracker.reissue(sl.Card)
				n++
			}
		}
	}
	return n
}

// resync runs syncExposure and, when IDs changed, sends the full state so
// the client can rebind its hidden cards. Assumes lock is held by caller.
func (g *KlondikeGame) resync() {
	n := g.syncExposure()
	if n == 0 {
		return
	}
	state := g.obfuscatedState()
	g.fireEvent(GameEvent{
		Type:    EventSyncState,
		State:   &state,
		Payload: map[string]interface{}{"reissued": n},
	})
}

// obfuscatedState builds the client view. Assumes lock is held by caller.
func (g *KlondikeGame) obfuscatedState() ObfGameState {
	e := &g.Engine
	st := ObfGameState{
		GameID:      g.ID,
		Level:       g.Rules.Level,
		Stock:       g.obfPile(&e.Stock),
		Waste:       g.obfPile(&e.Waste),
		Foundations: make([]ObfPile, 0, engine.NumFoundations),
		Tableaus:    make([]ObfPile, 0, engine.NumTableaus),
		MoveCount:   e.MoveCount,
		Score:       e.Score,
		CanUndo:     e.History.Len() > 0,
		Won:         e.IsWin(),
		AutoSolving: g.Solver != nil && g.Solver.Running(),
	}
	el := g.elapsed()
	st.ElapsedMs = el.Milliseconds()
	st.Elapsed = formatClock(el)
	for i := range e.Foundation {
		st.Foundations = append(st.Foundations, g.obfPile(&e.Foundation[i]))
	}
	for i := range e.Tableau {
		st.Tableaus = append(st.Tableaus, g.obfPile(&e.Tableau[i]))
	}
	return st
}

func (g *KlondikeGame) obfPile(p *engine.Pile) ObfPile {
	out := ObfPile{
		Kind:  p.ID.Kind.String(),
		Index: int(p.ID.Index),
		Cards: make([]ObfCard, 0, p.Len()),
	}
	for _, sl := range p.Cards {
		out.Cards = append(out.Cards, g.obfCard(sl))
	}
	return out
}

func (g *KlondikeGame) obfCard(sl engine.Slot) ObfCard {
	id, _ := g.CardTracker.ID(sl.Card)
	if !sl.FaceUp {
		return ObfCard{ID: id}
	}
	return ObfCard{
		ID:     id,
		Known:  true,
		Rank:   sl.Card.RankString(),
		Suit:   sl.Card.SuitString(),
		FaceUp: true,
	}
}

// eventCard builds the event view of a card. Assumes lock is held by caller.
func (g *KlondikeGame) eventCard(c engine.Card, faceUp bool) EventCard {
	id, _ := g.CardTracker.ID(c)
	ec := EventCard{ID: id, FaceUp: faceUp}
	if faceUp {
		ec.Rank = c.RankString()
		ec.Suit = c.SuitString()
	}
	return ec
}

func eventPile(id engine.PileID) *EventPile {
	return &EventPile{Kind: id.Kind.String(), Index: int(id.Index)}
}
