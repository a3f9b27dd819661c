package engine

import (
	"math/rand/v2"
	"testing"
)

func TestUndoEmptyLog(t *testing.T) {
	g := newDealtGame(t, 1)
	rev, ok, err := g.Undo()
	if ok || err != nil || len(rev.Entries) != 0 {
		t.Errorf("Undo on empty log = %+v, %v, %v; want no-op", rev, ok, err)
	}
}

func TestUndoRestoresTriggeredFlip(t *testing.T) {
	g := emptyGame()
	setPile(g, TableauID(0), down("4C"), up("9S"), up("8H"))
	setPile(g, TableauID(1), up("TD"))
	before := fingerprint(g)

	if _, err := g.MoveStack(Move{From: TableauID(0), Start: 1, To: TableauID(1)}); err != nil {
		t.Fatal(err)
	}
	rev, ok, err := g.Undo()
	if !ok || err != nil {
		t.Fatalf("Undo = %v, %v", ok, err)
	}
	if len(rev.Entries) != 2 {
		t.Fatalf("reverted %d entries, want flip + move", len(rev.Entries))
	}
	if _, isFlip := rev.Entries[0].(FlipEntry); !isFlip {
		t.Errorf("first reverted entry is %T, want FlipEntry", rev.Entries[0])
	}
	if _, isMove := rev.Entries[1].(MoveEntry); !isMove {
		t.Errorf("second reverted entry is %T, want MoveEntry", rev.Entries[1])
	}
	if got := fingerprint(g); got != before {
		t.Errorf("undo mismatch:\n got %s\nwant %s", got, before)
	}
}

func TestUndoStandaloneFlip(t *testing.T) {
	g := emptyGame()
	setPile(g, TableauID(1), up("TD"), down("2C"))
	before := fingerprint(g)

	if _, err := g.FlipTop(TableauID(1)); err != nil {
		t.Fatal(err)
	}
	rev, ok, err := g.Undo()
	if !ok || err != nil || len(rev.Entries) != 1 {
		t.Fatalf("Undo = %+v, %v, %v", rev, ok, err)
	}
	if got := fingerprint(g); got != before {
		t.Errorf("flip undo mismatch:\n got %s\nwant %s", got, before)
	}
}

func TestUndoRecycle(t *testing.T) {
	g := newDealtGame(t, 17)
	for !g.Stock.Empty() {
		if _, err := g.Draw(); err != nil {
			t.Fatal(err)
		}
	}
	before := fingerprint(g)
	if _, err := g.RecycleWasteToStock(); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := g.Undo(); !ok || err != nil {
		t.Fatalf("Undo = %v, %v", ok, err)
	}
	if got := fingerprint(g); got != before {
		t.Errorf("recycle undo mismatch:\n got %s\nwant %s", got, before)
	}
}

func TestUndoRestoresScore(t *testing.T) {
	g := emptyGame()
	setPile(g, WasteID, up("AC"))
	if _, err := g.AutoToFoundation(WasteID); err != nil {
		t.Fatal(err)
	}
	if g.Score != 10 {
		t.Fatalf("score = %d, want 10", g.Score)
	}
	if _, ok, _ := g.Undo(); !ok {
		t.Fatal("nothing undone")
	}
	if g.Score != 0 || g.MoveCount != 0 {
		t.Errorf("after undo score=%d moves=%d, want 0/0", g.Score, g.MoveCount)
	}
}

// randomAction applies one random legal action: a listed move, a draw or a
// recycle. It reports false when nothing is possible.
func randomAction(g *GameState, rng *rand.Rand) bool {
	moves := g.LegalMoves()
	canDraw := !g.Stock.Empty()
	canRecycle := g.CanRecycle() == nil
	n := len(moves)
	if canDraw || canRecycle {
		n++
	}
	if n == 0 {
		return false
	}
	pick := rng.IntN(n)
	if pick < len(moves) {
		_, err := g.MoveStack(moves[pick])
		return err == nil
	}
	if canDraw {
		_, err := g.Draw()
		return err == nil
	}
	_, err := g.RecycleWasteToStock()
	return err == nil
}

// Every action from every visited state must undo back to that state.
func TestUndoReversibilityRandomWalk(t *testing.T) {
	for seed := uint64(1); seed <= 25; seed++ {
		g := newDealtGame(t, seed)
		rng := rand.New(rand.NewPCG(seed, 99))

		for step := 0; step < 150; step++ {
			before := fingerprint(g)
			if !randomAction(g, rng) {
				break
			}
			if err := g.CheckConservation(); err != nil {
				t.Fatalf("seed %d step %d: %v", seed, step, err)
			}
			forward := g.Save()

			if _, ok, err := g.Undo(); !ok || err != nil {
				t.Fatalf("seed %d step %d: Undo = %v, %v", seed, step, ok, err)
			}
			if got := fingerprint(g); got != before {
				t.Fatalf("seed %d step %d: undo mismatch:\n got %s\nwant %s", seed, step, got, before)
			}
			g.Restore(forward)
		}
	}
}

// Undoing the whole log returns to the deal.
func TestUndoAllTheWayBack(t *testing.T) {
	g := newDealtGame(t, 33)
	deal := fingerprint(g)
	rng := rand.New(rand.NewPCG(33, 1))
	for i := 0; i < 200; i++ {
		if !randomAction(g, rng) {
			break
		}
	}
	for {
		_, ok, err := g.Undo()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		if err := g.CheckConservation(); err != nil {
			t.Fatal(err)
		}
	}
	if got := fingerprint(g); got != deal {
		t.Errorf("full undo did not return to the deal:\n got %s\nwant %s", got, deal)
	}
}
