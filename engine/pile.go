package engine

// Pile is an ordered stack of cards, bottom first. The last slot is the top.
type Pile struct {
	ID    PileID
	Cards []Slot
}

// Len returns the number of cards in the pile.
func (p *Pile) Len() int { return len(p.Cards) }

// Empty reports whether the pile holds no cards.
func (p *Pile) Empty() bool { return len(p.Cards) == 0 }

// Top returns the top slot, or ok=false if the pile is empty.
func (p *Pile) Top() (Slot, bool) {
	if len(p.Cards) == 0 {
		return Slot{Card: EmptyCard}, false
	}
	return p.Cards[len(p.Cards)-1], true
}

// TopCard returns the top card identity, or EmptyCard.
func (p *Pile) TopCard() Card {
	if len(p.Cards) == 0 {
		return EmptyCard
	}
	return p.Cards[len(p.Cards)-1].Card
}

// IndexOf returns the position of c in the pile, or -1.
func (p *Pile) IndexOf(c Card) int {
	for i := range p.Cards {
		if p.Cards[i].Card == c {
			return i
		}
	}
	return -1
}

// FaceUpStart returns the index of the deepest card of the face-up run that
// ends at the top. It returns Len() when the top card is face-down or the
// pile is empty.
func (p *Pile) FaceUpStart() int {
	i := len(p.Cards)
	for i > 0 && p.Cards[i-1].FaceUp {
		i--
	}
	return i
}

// FaceDownCount returns how many cards in the pile are face-down.
func (p *Pile) FaceDownCount() int {
	n := 0
	for _, s := range p.Cards {
		if !s.FaceUp {
			n++
		}
	}
	return n
}

// push appends slots on top, preserving their order.
func (p *Pile) push(slots ...Slot) {
	p.Cards = append(p.Cards, slots...)
}

// cut removes and returns cards[start:].
func (p *Pile) cut(start int) []Slot {
	out := make([]Slot, len(p.Cards)-start)
	copy(out, p.Cards[start:])
	p.Cards = p.Cards[:start]
	return out
}

func (p *Pile) clone() Pile {
	cp := Pile{ID: p.ID}
	if p.Cards != nil {
		cp.Cards = make([]Slot, len(p.Cards))
		copy(cp.Cards, p.Cards)
	}
	return cp
}
