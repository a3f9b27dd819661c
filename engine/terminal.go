package engine

import "strings"

// ---------------------------------------------------------------------------
// Win detection
// ---------------------------------------------------------------------------

// WinChecker latches the win condition. Once Check has seen all 52 cards on
// the foundations it keeps reporting true until Reset.
type WinChecker struct {
	locked bool
}

// Check reports whether g is won, latching the result.
func (w *WinChecker) Check(g *GameState) bool {
	if w.locked {
		return true
	}
	if g.FoundationCount() == DeckSize {
		w.locked = true
	}
	return w.locked
}

// Locked reports whether a win has been latched.
func (w *WinChecker) Locked() bool { return w.locked }

// Reset clears the latch.
func (w *WinChecker) Reset() { w.locked = false }

// CheckWin runs the game's win checker. Hosts call it after every successful
// move or flip.
func (g *GameState) CheckWin() bool { return g.win.Check(g) }

// ResetWin clears the win latch without touching the piles.
func (g *GameState) ResetWin() { g.win.Reset() }

// IsWin reports the latched win state without re-evaluating the piles.
func (g *GameState) IsWin() bool { return g.win.Locked() }

// ---------------------------------------------------------------------------
// State signature
// ---------------------------------------------------------------------------

// Signature returns a 64-bit FNV-1a hash of every pile's ordered cards and
// face states. Equal layouts always hash equal; the undo log, move count and
// score are not part of it.
func (g *GameState) Signature() uint64 {
	h := uint64(14695981039346656037) // FNV-1a offset basis
	const prime = uint64(1099511628211)

	for _, p := range g.Piles() {
		// Pile separator so that moving a card between neighbours changes the hash.
		h ^= uint64(p.ID.Kind)<<8 | uint64(p.ID.Index) | 0x8000
		h *= prime
		for _, s := range p.Cards {
			v := uint64(s.Card)
			if s.FaceUp {
				v |= 0x100
			}
			h ^= v
			h *= prime
		}
	}
	return h
}

// String renders the layout one pile per line. Face-down cards are shown in
// brackets.
func (g *GameState) String() string {
	var b strings.Builder
	for _, p := range g.Piles() {
		b.WriteString(p.ID.String())
		b.WriteByte(':')
		for _, s := range p.Cards {
			b.WriteByte(' ')
			if s.FaceUp {
				b.WriteString(s.Card.String())
			} else {
				b.WriteByte('[')
				b.WriteString(s.Card.String())
				b.WriteByte(']')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
