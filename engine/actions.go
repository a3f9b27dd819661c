package engine

import "fmt"

// StepKind identifies what an applied Step did.
type StepKind uint8

const (
	StepNone    StepKind = iota // nothing applied
	StepMove                    // a stack moved (Move set, Flip set if Revealed)
	StepFlip                    // a tableau top was turned face-up (Flip set)
	StepRecycle                 // the waste went back to the stock (Recycled set)
	StepPerturb                 // face-down tableau cards were reshuffled (Perturbed set)
)

func (k StepKind) String() string {
	switch k {
	case StepMove:
		return "move"
	case StepFlip:
		return "flip"
	case StepRecycle:
		return "recycle"
	case StepPerturb:
		return "perturb"
	default:
		return "none"
	}
}

// Step is the observable outcome of one engine action, in the order a
// presentation layer should replay it.
type Step struct {
	Kind      StepKind
	Move      MoveEntry
	Flip      FlipEntry
	Revealed  bool // StepMove only: the move exposed and flipped a tableau card
	Recycled  int
	Perturbed int
}

// Applied reports whether the step changed the game.
func (s Step) Applied() bool { return s.Kind != StepNone }

// MoveStack moves the cards from m.Start to the top of m.From onto m.To.
// The move must already be legal (see CanMove); an illegal move is a caller
// bug and returns ErrInvalidMove without touching any pile.
//
// When the move leaves a face-down card on top of a tableau source, that card
// is flipped face-up and a triggered FlipEntry is pushed right after the
// MoveEntry.
func (g *GameState) MoveStack(m Move) (Step, error) {
	if err := g.validateMove(m); err != nil {
		return Step{}, violation(err)
	}
	from, to := g.Pile(m.From), g.Pile(m.To)

	moved := from.cut(m.Start)
	entry := MoveEntry{
		Cards:       make([]Card, len(moved)),
		From:        m.From,
		To:          m.To,
		PriorFaceUp: make([]bool, len(moved)),
	}
	for i := range moved {
		entry.Cards[i] = moved[i].Card
		entry.PriorFaceUp[i] = moved[i].FaceUp
		moved[i].FaceUp = true
	}
	to.push(moved...)

	if m.To.Kind == KindFoundation {
		entry.ScoreDelta += g.Rules.FoundationPoints
	}
	if m.From.Kind == KindFoundation {
		entry.ScoreDelta -= g.Rules.FoundationPoints
	}
	g.Score += entry.ScoreDelta
	g.MoveCount++
	g.History.Push(entry)

	step := Step{Kind: StepMove, Move: entry}
	if m.From.Kind == KindTableau {
		if top, ok := from.Top(); ok && !top.FaceUp {
			step.Flip = g.flipTop(from, true)
			step.Revealed = true
		}
	}
	return step, nil
}

// flipTop turns the top card of p face-up and logs it.
func (g *GameState) flipTop(p *Pile, triggered bool) FlipEntry {
	i := p.Len() - 1
	f := FlipEntry{Pile: p.ID, Card: p.Cards[i].Card, WasFaceUp: p.Cards[i].FaceUp, Triggered: triggered}
	p.Cards[i].FaceUp = true
	g.History.Push(f)
	return f
}

// FlipTop turns a face-down tableau top card face-up as a standalone action.
func (g *GameState) FlipTop(id PileID) (Step, error) {
	p := g.Pile(id)
	if p == nil {
		return Step{}, violation(fmt.Errorf("%w: %v", ErrUnknownPile, id))
	}
	top, ok := p.Top()
	switch {
	case id.Kind != KindTableau:
		return Step{}, violation(rejectf("only tableau cards can be flipped, got %s", id))
	case !ok:
		return Step{}, violation(fmt.Errorf("%w: %s", ErrEmptyPile, id))
	case top.FaceUp:
		return Step{}, violation(rejectf("%s top card is already face-up", id))
	}
	return Step{Kind: StepFlip, Flip: g.flipTop(p, false)}, nil
}

// Draw turns the top stock card face-up onto the waste. With an empty stock it
// does nothing; recycling is the separate RecycleWasteToStock action.
func (g *GameState) Draw() (Step, error) {
	if g.Stock.Empty() {
		return Step{}, nil
	}
	return g.MoveStack(Move{From: StockID, Start: g.Stock.Len() - 1, To: WasteID})
}

// CanRecycle reports why RecycleWasteToStock would be refused, or nil.
func (g *GameState) CanRecycle() error {
	switch {
	case g.Waste.Empty():
		return fmt.Errorf("%w: waste", ErrEmptyPile)
	case !g.Stock.Empty():
		return fmt.Errorf("%w: stock still holds %d cards", ErrRecycleBlocked, g.Stock.Len())
	case g.Rules.BlockRecycleOnAce && g.Waste.TopCard().Rank() == RankAce:
		return fmt.Errorf("%w: waste top is an ace", ErrRecycleBlocked)
	}
	return nil
}

// RecycleWasteToStock returns every waste card to the stock face-down in
// reverse order, restoring the original draw order. It applies the recycle
// policy (empty stock, optional ace block) and reports refusals as errors
// wrapping ErrRecycleBlocked or ErrEmptyPile.
func (g *GameState) RecycleWasteToStock() (Step, error) {
	if err := g.CanRecycle(); err != nil {
		return Step{}, err
	}
	n := g.recycle()
	return Step{Kind: StepRecycle, Recycled: n}, nil
}

// recycle is the policy-free primitive behind RecycleWasteToStock.
func (g *GameState) recycle() int {
	cards := g.Waste.cut(0)
	for i := len(cards) - 1; i >= 0; i-- {
		g.Stock.push(Slot{Card: cards[i].Card})
	}
	g.History.Push(RecycleEntry{Count: len(cards)})
	return len(cards)
}

// FoundationFor returns the first foundation that accepts c.
func (g *GameState) FoundationFor(c Card) (PileID, bool) {
	for i := range g.Foundation {
		if CanPlaceToFoundation(c, &g.Foundation[i]) {
			return g.Foundation[i].ID, true
		}
	}
	return PileID{}, false
}

// AutoToFoundation moves the top card of from onto the first foundation that
// accepts it. It returns an ErrInvalidMove when none does; that is an ordinary
// refusal, not a contract violation.
func (g *GameState) AutoToFoundation(from PileID) (Step, error) {
	p := g.Pile(from)
	if p == nil {
		return Step{}, fmt.Errorf("%w: %v", ErrUnknownPile, from)
	}
	top, ok := p.Top()
	if !ok {
		return Step{}, fmt.Errorf("%w: %s", ErrEmptyPile, from)
	}
	if from.Kind == KindFoundation || from.Kind == KindStock || !top.FaceUp {
		return Step{}, rejectf("%s cannot go to a foundation from %s", top.Card, from)
	}
	to, ok := g.FoundationFor(top.Card)
	if !ok {
		return Step{}, rejectf("no foundation accepts %s", top.Card)
	}
	return g.MoveStack(Move{From: from, Start: p.Len() - 1, To: to})
}
