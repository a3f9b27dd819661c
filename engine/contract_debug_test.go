//go:build klondikedebug

package engine

import "testing"

func TestMoveStackPanicsOnViolation(t *testing.T) {
	g := newDealtGame(t, 12)
	defer func() {
		if recover() == nil {
			t.Error("illegal MoveStack did not panic in a klondikedebug build")
		}
	}()
	g.MoveStack(Move{From: WasteID, Start: 0, To: TableauID(1)})
}

func TestCanMoveDoesNotPanic(t *testing.T) {
	g := newDealtGame(t, 12)
	if g.CanMove(Move{From: WasteID, Start: 0, To: TableauID(1)}) {
		t.Error("move from the empty waste reported legal")
	}
}
