// internal/game/game.go
package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/klondike/engine"
	"github.com/jason-s-yu/klondike/internal/cache"
	"github.com/jason-s-yu/klondike/internal/config"
	"github.com/sirupsen/logrus"
)

// GameEventType represents the type of a state-change event emitted to the
// presentation layer.
type GameEventType string

// Constants defining the GameEvent types.
const (
	EventMoveApplied      GameEventType = "move_applied"      // Cards moved between piles.
	EventCardFlipped      GameEventType = "card_flipped"      // A card changed orientation.
	EventMoveRejected     GameEventType = "move_rejected"     // An intent was refused; Reason says why.
	EventWinDetected      GameEventType = "win_detected"      // All 52 cards reached the foundations.
	EventAutoSolveStep    GameEventType = "autosolve_step"    // One solver tick ran.
	EventAutoSolveStopped GameEventType = "autosolve_stopped" // The solver run ended.
	EventStockRecycled    GameEventType = "stock_recycled"    // The waste went back to the stock.
	EventUndoApplied      GameEventType = "undo_applied"      // One user action was undone.
	EventGameRestart      GameEventType = "game_restart"      // A new layout was dealt.
	EventSyncState        GameEventType = "sync_state"        // Full state; the client should redraw.
)

// EventPile identifies a pile within a GameEvent payload.
type EventPile struct {
	Kind  string `json:"kind"`
	Index int    `json:"index"`
}

// EventCard identifies a card within a GameEvent payload. Rank and Suit are
// only filled for cards the player may see.
type EventCard struct {
	ID     uuid.UUID `json:"id"`
	Rank   string    `json:"rank,omitempty"`
	Suit   string    `json:"suit,omitempty"`
	FaceUp bool      `json:"faceUp"`
}

// GameEvent is the structure emitted for every state change.
type GameEvent struct {
	Type   GameEventType `json:"type"`
	GameID uuid.UUID     `json:"gameId"`
	Cards  []EventCard   `json:"cards,omitempty"` // Moved cards, bottom first.
	Card   *EventCard    `json:"card,omitempty"`  // Flipped card.
	From   *EventPile    `json:"from,omitempty"`
	To     *EventPile    `json:"to,omitempty"`
	Reason string        `json:"reason,omitempty"` // Rejection or stop reason.

	Payload map[string]interface{} `json:"payload,omitempty"` // Additional data.

	State *ObfGameState `json:"state,omitempty"` // Full state for sync and restart events.
}

// Historian receives a record of every applied action.
type Historian interface {
	PublishAction(ctx context.Context, rec cache.ActionRecord) error
}

// KlondikeGame is one hosted Klondike session: the authoritative engine
// state plus card identities, auto-solve scheduling and event emission. All
// exported methods are safe for concurrent use; they serialize on Mu.
type KlondikeGame struct {
	ID uuid.UUID // Unique identifier for this session.

	Rules  engine.HouseRules // Rules for the next deal.
	Seed   uint64            // Layout seed for the next deal; 0 = unseeded.
	Engine engine.GameState  // The authoritative game state.
	Solver *engine.Solver    // Auto-solver; driven one step per tick.

	CardTracker CardUUIDTracker // UUIDs handed out for the current deal.

	AutoSolveInterval time.Duration // Delay between solver ticks; <= 0 leaves ticking to the host.
	solveTimer        *time.Timer
	solveGen          int // Bumped whenever scheduled ticks must be discarded.

	StartedAt  time.Time        // When the current deal started.
	finishedAt time.Time        // When the current deal was won; zero while playing.
	now        func() time.Time // Clock; time.Now unless a test replaces it.

	winAnnounced bool
	actionIndex  int // Sequential index for history records.

	Mu sync.Mutex // Protects all fields above.

	BroadcastFn func(ev GameEvent) // Receives every emitted event; called with Mu held.
	Historian   Historian          // Optional action history sink.
	Log         *logrus.Entry
}

// NewKlondikeGame creates a session configured from cfg. Call Restart to deal.
func NewKlondikeGame(cfg config.Config) *KlondikeGame {
	id, _ := uuid.NewRandom()
	return &KlondikeGame{
		ID:                id,
		Rules:             cfg.HouseRules(),
		Seed:              cfg.Seed,
		Solver:            engine.NewSolver(cfg.SolverConfig()),
		AutoSolveInterval: cfg.AutoSolveInterval,
		CardTracker:       newCardTracker(),
		now:               time.Now,
		Log:               cfg.Logger().WithField("game_id", id.String()),
	}
}

// AttachHistorian connects to the Redis server named by cfg.RedisAddr and
// publishes every action there. An empty address leaves history disabled.
func (g *KlondikeGame) AttachHistorian(ctx context.Context, cfg config.Config) error {
	if cfg.RedisAddr == "" {
		return nil
	}
	rdb, err := cache.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	g.Mu.Lock()
	defer g.Mu.Unlock()
	g.Historian = cache.NewPublisher(rdb, cfg.HistoryChannel)
	g.Log.WithField("channel", cfg.HistoryChannel).Info("action history enabled")
	return nil
}

// Restart stops any auto-solve run and deals a fresh layout at the current
// level.
func (g *KlondikeGame) Restart() {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	g.restart()
}

// RestartLevel switches to the given difficulty level and deals.
func (g *KlondikeGame) RestartLevel(level int) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if level < 0 {
		level = 0
	}
	if level > engine.MaxLevel {
		level = engine.MaxLevel
	}
	g.Rules.Level = level
	g.restart()
}

// restart deals a new game. Assumes lock is held by caller.
func (g *KlondikeGame) restart() {
	g.stopAutoSolve()

	g.Engine = engine.NewGame(g.Seed, g.Rules)
	deck := g.Engine.ShuffledDeck()
	g.Engine.DealFrom(deck)
	g.CardTracker.assign(deck)
	g.syncExposure()
	g.winAnnounced = false
	g.StartedAt = g.now()
	g.finishedAt = time.Time{}

	state := g.obfuscatedState()
	g.fireEvent(GameEvent{
		Type:  EventGameRestart,
		State: &state,
		Payload: map[string]interface{}{
			"level": g.Rules.Level,
			"band":  engine.BandFor(g.Rules.Level).String(),
		},
	})
	g.Log.WithFields(logrus.Fields{
		"level": g.Rules.Level,
		"seed":  g.Seed,
	}).Info("dealt new game")
	g.logAction(string(EventGameRestart), map[string]interface{}{
		"level":     g.Rules.Level,
		"seed":      g.Seed,
		"dealScore": engine.DealScore(&g.Engine),
	})
}

// IsWin reports whether the current game has been won.
func (g *KlondikeGame) IsWin() bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.Engine.IsWin()
}

// fireEvent stamps ev with the game ID and hands it to BroadcastFn.
// Assumes lock is held by caller.
func (g *KlondikeGame) fireEvent(ev GameEvent) {
	ev.GameID = g.ID
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	} else {
		g.Log.WithField("event", ev.Type).Debug("BroadcastFn is nil, dropping event")
	}
}

// reject emits a move_rejected event and returns err.
// Assumes lock is held by caller.
func (g *KlondikeGame) reject(intent string, err error) error {
	g.Log.WithError(err).WithField("intent", intent).Warn("intent rejected")
	g.fireEvent(GameEvent{
		Type:    EventMoveRejected,
		Reason:  err.Error(),
		Payload: map[string]interface{}{"intent": intent},
	})
	return err
}

// checkWin emits win_detected the first time the engine reports a win.
// Assumes lock is held by caller.
func (g *KlondikeGame) checkWin() {
	if !g.Engine.CheckWin() || g.winAnnounced {
		return
	}
	g.winAnnounced = true
	g.finishedAt = g.now()
	el := g.elapsed()
	stats := map[string]interface{}{
		"moves":     g.Engine.MoveCount,
		"score":     g.Engine.Score,
		"elapsedMs": el.Milliseconds(),
		"elapsed":   formatClock(el),
	}
	g.fireEvent(GameEvent{Type: EventWinDetected, Payload: stats})
	g.Log.WithFields(logrus.Fields(stats)).Info("game won")
	g.logAction(string(EventWinDetected), stats)
}

// Elapsed returns the play time of the current deal. The clock stops when
// the game is won.
func (g *KlondikeGame) Elapsed() time.Duration {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.elapsed()
}

// elapsed assumes lock is held by caller.
func (g *KlondikeGame) elapsed() time.Duration {
	if g.StartedAt.IsZero() {
		return 0
	}
	end := g.finishedAt
	if end.IsZero() {
		end = g.now()
	}
	return end.Sub(g.StartedAt)
}

// formatClock renders d as MM:SS; minutes keep counting past an hour.
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// logAction sends an action record to the historian, if one is set.
// Increments the internal action index for ordering.
// Assumes lock is held by caller.
func (g *KlondikeGame) logAction(actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if g.Historian == nil {
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	rec := cache.ActionRecord{
		GameID:        g.ID,
		ActionIndex:   g.actionIndex,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}

	h, log := g.Historian, g.Log
	go func(rec cache.ActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := h.PublishAction(ctx, rec); err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"action_index": rec.ActionIndex,
				"action_type":  rec.ActionType,
			}).Error("failed publishing action")
		}
	}(rec)
}
