package engine

// CanPlaceToTableau reports whether card may land on a tableau pile: a King
// on an empty pile, otherwise one rank below the top card in the opposite
// colour.
func CanPlaceToTableau(card Card, p *Pile) bool {
	top, ok := p.Top()
	if !ok {
		return card.Rank() == RankKing
	}
	return top.Card.Color() != card.Color() && top.Card.Rank() == card.Rank()+1
}

// CanPlaceToFoundation reports whether card may land on a foundation pile: an
// Ace on an empty pile, otherwise the next rank of the same suit.
func CanPlaceToFoundation(card Card, p *Pile) bool {
	top, ok := p.Top()
	if !ok {
		return card.Rank() == RankAce
	}
	return top.Card.Suit() == card.Suit() && top.Card.Rank()+1 == card.Rank()
}

// Move names a candidate stack move: the cards from Start to the top of From
// onto To.
type Move struct {
	From  PileID
	Start int
	To    PileID
}

// canPlace dispatches to the predicate for the destination kind. Stock and
// waste never accept placed cards.
func canPlace(card Card, to *Pile) bool {
	switch to.ID.Kind {
	case KindTableau:
		return CanPlaceToTableau(card, to)
	case KindFoundation:
		return CanPlaceToFoundation(card, to)
	}
	return false
}

// validateMove checks the move contract without mutating anything. Moves
// from the stock are draws and may only target the waste.
func (g *GameState) validateMove(m Move) error {
	from := g.Pile(m.From)
	to := g.Pile(m.To)
	switch {
	case from == nil || to == nil:
		return rejectf("unknown pile %s → %s", m.From, m.To)
	case m.From == m.To:
		return rejectf("source and destination are both %s", m.From)
	case from.Empty():
		return rejectf("%s is empty", m.From)
	case m.Start < 0 || m.Start >= from.Len():
		return rejectf("start %d out of range for %s (len %d)", m.Start, m.From, from.Len())
	}

	n := from.Len() - m.Start
	if m.From.Kind != KindTableau && n != 1 {
		return rejectf("only the top card of %s can move", m.From)
	}
	if m.From.Kind == KindTableau && m.Start < from.FaceUpStart() {
		return rejectf("%s: cards from %d are not all face-up", m.From, m.Start)
	}

	card := from.Cards[m.Start].Card
	switch {
	case m.From.Kind == KindStock:
		if m.To.Kind != KindWaste {
			return rejectf("stock cards can only be drawn to the waste")
		}
		return nil
	case m.To.Kind == KindFoundation && n != 1:
		return rejectf("foundations accept one card at a time")
	case !canPlace(card, to):
		return rejectf("%s cannot be placed on %s", card, m.To)
	}
	return nil
}

// CanMove reports whether m would be accepted by MoveStack.
func (g *GameState) CanMove(m Move) bool {
	return g.validateMove(m) == nil
}

// LegalMoves lists every legal stack move from the waste, the foundations and
// the tableau, in pile order. Stock draws are not included.
func (g *GameState) LegalMoves() []Move {
	var moves []Move
	add := func(from *Pile, start int) {
		card := from.Cards[start].Card
		single := start == from.Len()-1
		if single && from.ID.Kind != KindFoundation {
			for i := range g.Foundation {
				if CanPlaceToFoundation(card, &g.Foundation[i]) {
					moves = append(moves, Move{From: from.ID, Start: start, To: g.Foundation[i].ID})
				}
			}
		}
		for i := range g.Tableau {
			to := &g.Tableau[i]
			if to.ID == from.ID {
				continue
			}
			if CanPlaceToTableau(card, to) {
				moves = append(moves, Move{From: from.ID, Start: start, To: to.ID})
			}
		}
	}

	if !g.Waste.Empty() {
		add(&g.Waste, g.Waste.Len()-1)
	}
	for i := range g.Foundation {
		if !g.Foundation[i].Empty() {
			add(&g.Foundation[i], g.Foundation[i].Len()-1)
		}
	}
	for i := range g.Tableau {
		p := &g.Tableau[i]
		for start := p.FaceUpStart(); start < p.Len(); start++ {
			add(p, start)
		}
	}
	return moves
}
