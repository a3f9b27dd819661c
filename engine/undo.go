package engine

// UndoEntry is one record of the undo log. It is one of MoveEntry,
// FlipEntry or RecycleEntry.
type UndoEntry interface {
	undoEntry()
}

// MoveEntry records a stack move. PriorFaceUp holds the orientation each
// moved card had before the move (draws flip the stock card face-up).
type MoveEntry struct {
	Cards       []Card
	From        PileID
	To          PileID
	PriorFaceUp []bool
	ScoreDelta  int
}

// FlipEntry records a face change of the top card of Pile. Triggered is set
// when the flip was the automatic reveal that followed the MoveEntry directly
// beneath it in the log; undo then reverses both as one action.
type FlipEntry struct {
	Pile      PileID
	Card      Card
	WasFaceUp bool
	Triggered bool
}

// RecycleEntry records Count waste cards returned to the stock.
type RecycleEntry struct {
	Count int
}

func (MoveEntry) undoEntry()    {}
func (FlipEntry) undoEntry()    {}
func (RecycleEntry) undoEntry() {}

// UndoLog is a strict LIFO stack of undo entries.
type UndoLog struct {
	entries []UndoEntry
}

// Push appends an entry.
func (u *UndoLog) Push(e UndoEntry) { u.entries = append(u.entries, e) }

// Pop removes and returns the newest entry; ok is false when the log is empty.
func (u *UndoLog) Pop() (UndoEntry, bool) {
	if len(u.entries) == 0 {
		return nil, false
	}
	e := u.entries[len(u.entries)-1]
	u.entries[len(u.entries)-1] = nil
	u.entries = u.entries[:len(u.entries)-1]
	return e, true
}

// Peek returns the newest entry without removing it.
func (u *UndoLog) Peek() (UndoEntry, bool) {
	if len(u.entries) == 0 {
		return nil, false
	}
	return u.entries[len(u.entries)-1], true
}

// Clear drops every entry.
func (u *UndoLog) Clear() { u.entries = nil }

// Len returns the number of entries.
func (u *UndoLog) Len() int { return len(u.entries) }

func (u *UndoLog) clone() UndoLog {
	if u.entries == nil {
		return UndoLog{}
	}
	cp := make([]UndoEntry, len(u.entries))
	for i, e := range u.entries {
		if m, ok := e.(MoveEntry); ok {
			m.Cards = append([]Card(nil), m.Cards...)
			m.PriorFaceUp = append([]bool(nil), m.PriorFaceUp...)
			e = m
		}
		cp[i] = e
	}
	return UndoLog{entries: cp}
}

// ---------------------------------------------------------------------------
// Undo
// ---------------------------------------------------------------------------

// Reverted describes what one Undo call put back, newest first.
type Reverted struct {
	Entries []UndoEntry
}

// Undo reverses the newest user action. A triggered flip is reversed together
// with the move that caused it, flip first. ok is false when the log is
// empty, which is not an error.
func (g *GameState) Undo() (Reverted, bool, error) {
	e, ok := g.History.Peek()
	if !ok {
		return Reverted{}, false, nil
	}

	f, isFlip := e.(FlipEntry)
	if !isFlip || !f.Triggered {
		if err := g.checkUndo(e); err != nil {
			return Reverted{}, false, violation(err)
		}
		g.History.Pop()
		g.applyUndo(e)
		return Reverted{Entries: []UndoEntry{e}}, true, nil
	}

	// Validate both halves before touching anything.
	if g.History.Len() < 2 {
		return Reverted{}, false, violation(rejectf("undo: triggered flip without its move"))
	}
	m, isMove := g.History.entries[g.History.Len()-2].(MoveEntry)
	if !isMove || m.From != f.Pile {
		return Reverted{}, false, violation(rejectf("undo: triggered flip on %s does not follow a move from it", f.Pile))
	}
	if err := g.checkFlipUndo(f); err != nil {
		return Reverted{}, false, violation(err)
	}
	if err := g.checkUndo(m); err != nil {
		return Reverted{}, false, violation(err)
	}

	g.History.Pop()
	g.applyFlipUndo(f)
	g.History.Pop()
	g.applyUndo(m)
	return Reverted{Entries: []UndoEntry{f, m}}, true, nil
}

func (g *GameState) checkUndo(e UndoEntry) error {
	switch e := e.(type) {
	case MoveEntry:
		to, from := g.Pile(e.To), g.Pile(e.From)
		if to == nil || from == nil {
			return rejectf("undo: unknown pile in %s → %s", e.From, e.To)
		}
		n := len(e.Cards)
		if to.Len() < n {
			return rejectf("undo: %s holds %d cards, move recorded %d", e.To, to.Len(), n)
		}
		for i, c := range e.Cards {
			if to.Cards[to.Len()-n+i].Card != c {
				return rejectf("undo: %s no longer ends with the moved cards", e.To)
			}
		}
	case FlipEntry:
		return g.checkFlipUndo(e)
	case RecycleEntry:
		if g.Stock.Len() < e.Count {
			return rejectf("undo: stock holds %d cards, recycle recorded %d", g.Stock.Len(), e.Count)
		}
	}
	return nil
}

func (g *GameState) checkFlipUndo(f FlipEntry) error {
	p := g.Pile(f.Pile)
	if p == nil || p.TopCard() != f.Card {
		return rejectf("undo: %s is no longer on top of %s", f.Card, f.Pile)
	}
	return nil
}

func (g *GameState) applyFlipUndo(f FlipEntry) {
	p := g.Pile(f.Pile)
	p.Cards[p.Len()-1].FaceUp = f.WasFaceUp
}

func (g *GameState) applyUndo(e UndoEntry) {
	switch e := e.(type) {
	case MoveEntry:
		to, from := g.Pile(e.To), g.Pile(e.From)
		moved := to.cut(to.Len() - len(e.Cards))
		for i := range moved {
			moved[i].FaceUp = e.PriorFaceUp[i]
		}
		from.push(moved...)
		g.MoveCount--
		g.Score -= e.ScoreDelta
	case FlipEntry:
		g.applyFlipUndo(e)
	case RecycleEntry:
		cards := g.Stock.cut(g.Stock.Len() - e.Count)
		for i := len(cards) - 1; i >= 0; i-- {
			g.Waste.push(Slot{Card: cards[i].Card, FaceUp: true})
		}
	}
}
