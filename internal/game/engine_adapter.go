// internal/game/engine_adapter.go
package game

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jason-s-yu/klondike/engine"
	"github.com/sirupsen/logrus"
)

// ErrUnknownCard is returned when an intent names a card ID from another deal.
var ErrUnknownCard = errors.New("unknown card")

// ClickStock draws the top stock card to the waste. With an empty stock it
// recycles the waste instead; with both empty it does nothing.
func (g *KlondikeGame) ClickStock() error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if !g.Engine.Stock.Empty() {
		st, err := g.Engine.Draw()
		if err != nil {
			return g.reject("draw", err)
		}
		g.emitStep(st)
		g.logAction("draw", g.stepPayload(st))
		return nil
	}
	if g.Engine.Waste.Empty() {
		return nil
	}
	st, err := g.Engine.RecycleWasteToStock()
	if err != nil {
		return g.reject("recycle", err)
	}
	g.emitStep(st)
	g.logAction("recycle", g.stepPayload(st))
	return nil
}

// AttemptMove tries to move the card cardID, together with everything above
// it, out of pile from. With a hint only that destination is tried; without
// one the foundations are tried before the tableaus.
func (g *KlondikeGame) AttemptMove(cardID uuid.UUID, from engine.PileID, hint *engine.PileID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	c, ok := g.CardTracker.Card(cardID)
	if !ok {
		return g.reject("move", fmt.Errorf("%w: %s", ErrUnknownCard, cardID))
	}
	p := g.Engine.Pile(from)
	if p == nil {
		return g.reject("move", fmt.Errorf("%w: %s", engine.ErrUnknownPile, from))
	}
	start := p.IndexOf(c)
	if start < 0 {
		return g.reject("move", fmt.Errorf("%w: %s is not in %s", engine.ErrInvalidMove, c, from))
	}

	var targets []engine.PileID
	if hint != nil {
		targets = []engine.PileID{*hint}
	} else {
		for i := 0; i < engine.NumFoundations; i++ {
			targets = append(targets, engine.FoundationID(i))
		}
		for i := 0; i < engine.NumTableaus; i++ {
			targets = append(targets, engine.TableauID(i))
		}
	}

	for _, to := range targets {
		m := engine.Move{From: from, Start: start, To: to}
		if !g.Engine.CanMove(m) {
			continue
		}
		st, err := g.Engine.MoveStack(m)
		if err != nil {
			return g.reject("move", err)
		}
		g.emitStep(st)
		g.logAction("move", g.stepPayload(st))
		g.checkWin()
		return nil
	}
	return g.reject("move", fmt.Errorf("%w: no destination accepts %s", engine.ErrInvalidMove, c))
}

// AttemptAutoToFoundation sends the card cardID to the foundation that
// accepts it. Only the top card of a waste or tableau pile qualifies.
func (g *KlondikeGame) AttemptAutoToFoundation(cardID uuid.UUID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	c, ok := g.CardTracker.Card(cardID)
	if !ok {
		return g.reject("auto_foundation", fmt.Errorf("%w: %s", ErrUnknownCard, cardID))
	}
	from, idx, ok := g.Engine.Locate(c)
	if !ok || idx != g.Engine.Pile(from).Len()-1 {
		return g.reject("auto_foundation", fmt.Errorf("%w: %s is not a top card", engine.ErrInvalidMove, c))
	}
	st, err := g.Engine.AutoToFoundation(from)
	if err != nil {
		return g.reject("auto_foundation", err)
	}
	g.emitStep(st)
	g.logAction("auto_foundation", g.stepPayload(st))
	g.checkWin()
	return nil
}

// Undo reverses the newest action. It reports false when there was nothing to
// undo. Undo is refused while the auto-solver runs.
func (g *KlondikeGame) Undo() (bool, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Solver.Running() {
		return false, g.reject("undo", fmt.Errorf("%w: auto-solve is running", engine.ErrInvalidMove))
	}
	rev, ok, err := g.Engine.Undo()
	if err != nil {
		return false, g.reject("undo", err)
	}
	if !ok {
		return false, nil
	}

	for _, e := range rev.Entries {
		switch e := e.(type) {
		case engine.FlipEntry:
			card := g.eventCard(e.Card, e.WasFaceUp)
			g.fireEvent(GameEvent{Type: EventCardFlipped, Card: &card, From: eventPile(e.Pile)})
		case engine.MoveEntry:
			cards := make([]EventCard, len(e.Cards))
			for i, c := range e.Cards {
				cards[i] = g.eventCard(c, e.PriorFaceUp[i])
			}
			g.fireEvent(GameEvent{Type: EventMoveApplied, Cards: cards, From: eventPile(e.To), To: eventPile(e.From)})
		case engine.RecycleEntry:
			g.fireEvent(GameEvent{
				Type:    EventStockRecycled,
				Payload: map[string]interface{}{"count": e.Count, "reverse": true},
			})
		}
	}
	g.resync()
	g.fireEvent(GameEvent{
		Type: EventUndoApplied,
		Payload: map[string]interface{}{
			"entries":   len(rev.Entries),
			"moveCount": g.Engine.MoveCount,
			"score":     g.Engine.Score,
		},
	})
	g.logAction("undo", map[string]interface{}{"entries": len(rev.Entries)})
	return true, nil
}

// TopCard returns the client view of the top card of id.
func (g *KlondikeGame) TopCard(id engine.PileID) (ObfCard, bool) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	sl, ok := g.Engine.TopCard(id)
	if !ok {
		return ObfCard{}, false
	}
	return g.obfCard(sl), true
}

// StackFrom returns the client view of cardID and every card above it.
func (g *KlondikeGame) StackFrom(cardID uuid.UUID) []ObfCard {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	c, ok := g.CardTracker.Card(cardID)
	if !ok {
		return nil
	}
	slots := g.Engine.StackFrom(c)
	out := make([]ObfCard, 0, len(slots))
	for _, sl := range slots {
		out = append(out, g.obfCard(sl))
	}
	return out
}

// emitStep replays an applied engine step as events: the move first, then
// any flip it triggered. Assumes lock is held by caller.
func (g *KlondikeGame) emitStep(st engine.Step) {
	switch st.Kind {
	case engine.StepMove:
		cards := make([]EventCard, len(st.Move.Cards))
		for i, c := range st.Move.Cards {
			cards[i] = g.eventCard(c, true)
		}
		g.fireEvent(GameEvent{
			Type:  EventMoveApplied,
			Cards: cards,
			From:  eventPile(st.Move.From),
			To:    eventPile(st.Move.To),
			Payload: map[string]interface{}{
				"scoreDelta": st.Move.ScoreDelta,
				"score":      g.Engine.Score,
				"moveCount":  g.Engine.MoveCount,
			},
		})
		if st.Revealed {
			g.emitFlip(st.Flip)
		}
	case engine.StepFlip:
		g.emitFlip(st.Flip)
	case engine.StepRecycle:
		g.fireEvent(GameEvent{
			Type:    EventStockRecycled,
			Payload: map[string]interface{}{"count": st.Recycled},
		})
	case engine.StepPerturb:
		g.syncExposure()
		state := g.obfuscatedState()
		g.fireEvent(GameEvent{
			Type:    EventSyncState,
			State:   &state,
			Payload: map[string]interface{}{"perturbed": st.Perturbed},
		})
		return
	}
	g.resync()
}

func (g *KlondikeGame) emitFlip(f engine.FlipEntry) {
	card := g.eventCard(f.Card, !f.WasFaceUp)
	g.fireEvent(GameEvent{Type: EventCardFlipped, Card: &card, From: eventPile(f.Pile)})
}

// stepPayload summarizes st for the action history.
func (g *KlondikeGame) stepPayload(st engine.Step) map[string]interface{} {
	p := map[string]interface{}{"kind": st.Kind.String()}
	switch st.Kind {
	case engine.StepMove:
		cards := make([]string, len(st.Move.Cards))
		for i, c := range st.Move.Cards {
			cards[i] = c.String()
		}
		p["cards"] = cards
		p["from"] = st.Move.From.String()
		p["to"] = st.Move.To.String()
		p["revealed"] = st.Revealed
	case engine.StepFlip:
		p["pile"] = st.Flip.Pile.String()
	case engine.StepRecycle:
		p["count"] = st.Recycled
	case engine.StepPerturb:
		p["count"] = st.Perturbed
	}
	if g.Log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		g.Log.WithFields(logrus.Fields(p)).Debug("applied step")
	}
	return p
}
