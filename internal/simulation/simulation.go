// Package simulation plays batches of seeded deals through the auto-solver
// and aggregates the outcomes, mainly to tune and check difficulty levels.
package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"

	"github.com/jason-s-yu/klondike/engine"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Options configures one batch.
type Options struct {
	Level   int                 // Difficulty level dealt; 0 = plain shuffle.
	Games   int                 // Number of deals to play.
	Seed    uint64              // Batch seed; 0 picks a random one.
	Workers int                 // Concurrent games; <= 0 uses runtime.NumCPU.
	Solver  engine.SolverConfig // Zero fields take the engine defaults.
	Rules   engine.HouseRules   // Level is overwritten by Options.Level.

	Log *logrus.Entry // Optional; nil uses the standard logger.
}

// GameJob is a single deal to play.
type GameJob struct {
	SimID int
	Seed  uint64
}

// GameResult is the outcome of one job.
type GameResult struct {
	SimID  int
	Seed   uint64
	Reason engine.StopReason
	Steps  int
	Score  int
	// Progress is the share of cards on the foundations at the end.
	Progress float64
}

// Stats aggregates a batch.
type Stats struct {
	Level      int
	Games      int
	Wins       int
	Stuck      int
	Exhausted  int
	TotalSteps int
	Seed       uint64 // Batch seed actually used.
	Results    []GameResult
}

// WinRate returns the share of games won, or 0 for an empty batch.
func (s Stats) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Games)
}

// AvgSteps returns the mean solver steps per game.
func (s Stats) AvgSteps() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.TotalSteps) / float64(s.Games)
}

// GameSeeds derives n per-game seeds from a batch seed. The same batch seed
// always yields the same seeds, whatever the worker count.
func GameSeeds(seed uint64, n int) []uint64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	seeds := make([]uint64, n)
	for i := range seeds {
		for seeds[i] == 0 {
			seeds[i] = rng.Uint64()
		}
	}
	return seeds
}

// RunSingleGame deals one game and runs the solver to completion.
func RunSingleGame(level int, seed uint64, rules engine.HouseRules, cfg engine.SolverConfig) GameResult {
	rules.Level = level
	g := engine.NewGame(seed, rules)
	g.Deal()
	s := engine.NewSolver(cfg)
	reason := s.Run(&g)
	return GameResult{
		Seed:     seed,
		Reason:   reason,
		Steps:    s.Steps(),
		Score:    g.Score,
		Progress: g.Progress(),
	}
}

// RunBatch plays opts.Games deals concurrently. It returns early with the
// context's error if ctx is cancelled.
func RunBatch(ctx context.Context, opts Options) (Stats, error) {
	if opts.Games < 0 {
		return Stats{}, fmt.Errorf("simulation: negative game count %d", opts.Games)
	}
	if opts.Level < 0 || opts.Level > engine.MaxLevel {
		return Stats{}, fmt.Errorf("simulation: level %d out of range 0..%d", opts.Level, engine.MaxLevel)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64() | 1
	}
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	seeds := GameSeeds(seed, opts.Games)
	results := make([]GameResult, opts.Games)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, gameSeed := range seeds {
		job := GameJob{SimID: i, Seed: gameSeed}
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			res := RunSingleGame(opts.Level, job.Seed, opts.Rules, opts.Solver)
			res.SimID = job.SimID
			results[job.SimID] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Stats{}, err
	}
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}

	stats := aggregate(opts.Level, seed, results)
	log.WithFields(logrus.Fields{
		"level":     stats.Level,
		"games":     stats.Games,
		"wins":      stats.Wins,
		"win_rate":  fmt.Sprintf("%.3f", stats.WinRate()),
		"avg_steps": fmt.Sprintf("%.1f", stats.AvgSteps()),
		"seed":      seed,
	}).Info("simulation batch finished")
	return stats, nil
}

// RunLevels runs one batch per level with the same batch seed, so every level
// sees the same deal seeds.
func RunLevels(ctx context.Context, levels []int, opts Options) ([]Stats, error) {
	if opts.Seed == 0 {
		opts.Seed = rand.Uint64() | 1
	}
	out := make([]Stats, 0, len(levels))
	for _, level := range levels {
		opts.Level = level
		st, err := RunBatch(ctx, opts)
		if err != nil {
			return out, fmt.Errorf("level %d: %w", level, err)
		}
		out = append(out, st)
	}
	return out, nil
}

func aggregate(level int, seed uint64, results []GameResult) Stats {
	st := Stats{Level: level, Games: len(results), Seed: seed, Results: results}
	for _, r := range results {
		st.TotalSteps += r.Steps
		switch r.Reason {
		case engine.StopWon:
			st.Wins++
		case engine.StopStuck:
			st.Stuck++
		case engine.StopExhausted:
			st.Exhausted++
		}
	}
	return st
}
