// internal/game/autosolve.go
package game

import (
	"time"

	"github.com/jason-s-yu/klondike/engine"
	"github.com/sirupsen/logrus"
)

// StartAutoSolve begins an auto-solve run. With a positive AutoSolveInterval
// the game ticks itself on a timer; otherwise the host calls StepAutoSolve.
// Starting an already running solver does nothing.
func (g *KlondikeGame) StartAutoSolve() {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Solver.Running() {
		return
	}
	g.Solver.Start()
	g.solveGen++
	g.Log.WithField("interval", g.AutoSolveInterval).Info("auto-solve started")
	g.scheduleSolveTick()
}

// StopAutoSolve ends the current run, if any.
func (g *KlondikeGame) StopAutoSolve() {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	g.stopAutoSolve()
}

// StepAutoSolve runs one solver tick and emits its events.
func (g *KlondikeGame) StepAutoSolve() engine.SolverStep {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.stepAutoSolve()
}

// AutoSolving reports whether a run is in progress.
func (g *KlondikeGame) AutoSolving() bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.Solver.Running()
}

// stopAutoSolve halts a running solver and discards pending ticks.
// Assumes lock is held by caller.
func (g *KlondikeGame) stopAutoSolve() {
	g.cancelSolveTick()
	if !g.Solver.Running() {
		return
	}
	g.Solver.Stop()
	g.announceStop(g.Solver.Reason())
}

// stepAutoSolve runs one tick. Assumes lock is held by caller.
func (g *KlondikeGame) stepAutoSolve() engine.SolverStep {
	if !g.Solver.Running() {
		return engine.SolverStep{Reason: g.Solver.Reason()}
	}
	res := g.Solver.Step(&g.Engine)
	if res.Applied {
		g.emitStep(res.Step)
	}
	g.fireEvent(GameEvent{
		Type: EventAutoSolveStep,
		Payload: map[string]interface{}{
			"applied": res.Applied,
			"branch":  res.Branch.String(),
			"step":    g.Solver.Steps(),
		},
	})
	if res.Applied {
		payload := g.stepPayload(res.Step)
		payload["branch"] = res.Branch.String()
		g.logAction("autosolve_step", payload)
	}
	g.checkWin()
	if res.Stopped {
		g.cancelSolveTick()
		g.announceStop(res.Reason)
	}
	return res
}

func (g *KlondikeGame) announceStop(reason engine.StopReason) {
	g.fireEvent(GameEvent{
		Type:   EventAutoSolveStopped,
		Reason: reason.String(),
		Payload: map[string]interface{}{
			"steps":   g.Solver.Steps(),
			"retries": g.Solver.Retries(),
		},
	})
	g.Log.WithFields(logrus.Fields{
		"reason": reason.String(),
		"steps":  g.Solver.Steps(),
	}).Info("auto-solve stopped")
	g.logAction(string(EventAutoSolveStopped), map[string]interface{}{"reason": reason.String()})
}

// scheduleSolveTick arms the timer for the next tick. A tick fired for an
// older generation is ignored. Assumes lock is held by caller.
func (g *KlondikeGame) scheduleSolveTick() {
	if g.AutoSolveInterval <= 0 {
		return
	}
	gen := g.solveGen
	g.solveTimer = time.AfterFunc(g.AutoSolveInterval, func() {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		if g.solveGen != gen || !g.Solver.Running() {
			return
		}
		g.stepAutoSolve()
		if g.Solver.Running() {
			g.scheduleSolveTick()
		}
	})
}

// cancelSolveTick stops the timer and invalidates any tick already waiting on
// the lock. Assumes lock is held by caller.
func (g *KlondikeGame) cancelSolveTick() {
	g.solveGen++
	if g.solveTimer != nil {
		g.solveTimer.Stop()
		g.solveTimer = nil
	}
}
