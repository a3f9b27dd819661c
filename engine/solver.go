package engine

// ---------------------------------------------------------------------------
// Auto-solver
// ---------------------------------------------------------------------------

// SolverConfig bounds the auto-solver's escalation.
type SolverConfig struct {
	MaxStuck       int // consecutive revisited states before stopping as stuck
	BridgeAfter    int // revisited states before draws stop and bridging starts
	MaxRetries     int // face-down perturbations allowed per run
	MaxStockCycles int // recycles without progress before draws stop
	MaxSteps       int // hard cap on applied steps per run; 0 = unlimited
}

// DefaultSolverConfig returns the standard solver limits.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		MaxStuck:       10,
		BridgeAfter:    3,
		MaxRetries:     3,
		MaxStockCycles: 3,
		MaxSteps:       2000,
	}
}

// StopReason says why a solver run ended.
type StopReason uint8

const (
	StopNone      StopReason = iota // still running
	StopUser                        // Stop was called
	StopStuck                       // too many revisited states
	StopExhausted                   // no branch applied, or the step cap was hit
	StopWon                         // the game is won
)

func (r StopReason) String() string {
	switch r {
	case StopUser:
		return "user_stop"
	case StopStuck:
		return "stuck"
	case StopExhausted:
		return "exhausted"
	case StopWon:
		return "won"
	default:
		return "none"
	}
}

// Branch names the heuristic that produced a solver step, in priority order.
type Branch uint8

const (
	BranchNone Branch = iota
	BranchWasteToFoundation
	BranchTableauToFoundation
	BranchTableauToTableau
	BranchWasteToTableau
	BranchFlip
	BranchStock
	BranchBridge
	BranchPerturb
)

var branchNames = [...]string{
	"none",
	"waste_to_foundation",
	"tableau_to_foundation",
	"tableau_to_tableau",
	"waste_to_tableau",
	"flip",
	"stock",
	"bridge",
	"perturb",
}

func (b Branch) String() string {
	if int(b) < len(branchNames) {
		return branchNames[b]
	}
	return "unknown"
}

// SolverStep is the result of one Solver.Step call. At most one engine action
// is applied per step.
type SolverStep struct {
	Applied bool
	Branch  Branch
	Step    Step
	Stopped bool       // the run ended during this call
	Reason  StopReason // set when Stopped
}

// Solver is a greedy auto-player with escape hatches. It holds no reference
// to a game; the host passes the game to every Step, one step per tick.
type Solver struct {
	cfg SolverConfig

	running      bool
	reason       StopReason
	retryCount   int
	stockCycles  int
	stuckCounter int
	steps        int
	lastSig      uint64
	seen         map[uint64]struct{}
	pinned       Card
}

// NewSolver returns a stopped solver. Zero-valued limits fall back to the
// defaults.
func NewSolver(cfg SolverConfig) *Solver {
	def := DefaultSolverConfig()
	if cfg.MaxStuck <= 0 {
		cfg.MaxStuck = def.MaxStuck
	}
	if cfg.BridgeAfter <= 0 {
		cfg.BridgeAfter = def.BridgeAfter
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxStockCycles <= 0 {
		cfg.MaxStockCycles = def.MaxStockCycles
	}
	if cfg.MaxSteps < 0 {
		cfg.MaxSteps = 0
	}
	return &Solver{cfg: cfg, pinned: EmptyCard}
}

// Config returns the solver limits.
func (s *Solver) Config() SolverConfig { return s.cfg }

// Start begins a fresh run, clearing all counters.
func (s *Solver) Start() {
	s.running = true
	s.reason = StopNone
	s.retryCount = 0
	s.stockCycles = 0
	s.stuckCounter = 0
	s.steps = 0
	s.lastSig = 0
	s.seen = make(map[uint64]struct{})
	s.pinned = EmptyCard
}

// Stop ends the run. The next Step observes it.
func (s *Solver) Stop() {
	if s.running {
		s.halt(StopUser)
	}
}

// Running reports whether a run is in progress.
func (s *Solver) Running() bool { return s.running }

// Reason returns why the last run ended, or StopNone while running.
func (s *Solver) Reason() StopReason { return s.reason }

// Steps returns how many steps the current or last run applied.
func (s *Solver) Steps() int { return s.steps }

// LastSignature returns the signature seen by the most recent step.
func (s *Solver) LastSignature() uint64 { return s.lastSig }

// Retries returns how many perturbations the current or last run used.
func (s *Solver) Retries() int { return s.retryCount }

func (s *Solver) halt(r StopReason) SolverStep {
	s.running = false
	s.reason = r
	return SolverStep{Stopped: true, Reason: r}
}

// Step runs one solver step against g.
func (s *Solver) Step(g *GameState) SolverStep {
	if !s.running {
		return SolverStep{Reason: s.reason}
	}
	if g.CheckWin() {
		return s.halt(StopWon)
	}
	if s.cfg.MaxSteps > 0 && s.steps >= s.cfg.MaxSteps {
		return s.halt(StopExhausted)
	}

	sig := g.Signature()
	// The seen-set covers the previous signature as well as older cycles.
	if _, seen := s.seen[sig]; seen {
		s.stuckCounter++
	} else {
		s.stuckCounter = 0
	}
	s.lastSig = sig
	s.seen[sig] = struct{}{}
	if s.stuckCounter >= s.cfg.MaxStuck {
		return s.halt(StopStuck)
	}

	pin := s.pinned
	s.pinned = EmptyCard

	branch, step, ok := s.choose(g, pin)
	if !ok {
		return s.halt(StopExhausted)
	}
	if branch != BranchStock {
		s.stockCycles = 0
	}
	s.steps++

	out := SolverStep{Applied: true, Branch: branch, Step: step}
	if g.CheckWin() {
		s.running = false
		s.reason = StopWon
		out.Stopped = true
		out.Reason = StopWon
	}
	return out
}

// Run steps g until the run stops and returns the reason. It is meant for
// batch play; interactive hosts tick Step themselves.
func (s *Solver) Run(g *GameState) StopReason {
	s.Start()
	for s.running {
		s.Step(g)
	}
	return s.reason
}

// choose applies the first branch that succeeds.
func (s *Solver) choose(g *GameState, pin Card) (Branch, Step, bool) {
	if st, ok := s.wasteToFoundation(g); ok {
		return BranchWasteToFoundation, st, true
	}
	if st, ok := s.tableauToFoundation(g, pin); ok {
		return BranchTableauToFoundation, st, true
	}
	if st, ok := s.tableauToTableau(g); ok {
		return BranchTableauToTableau, st, true
	}
	if st, ok := s.wasteToTableau(g); ok {
		return BranchWasteToTableau, st, true
	}
	if st, ok := s.flip(g); ok {
		return BranchFlip, st, true
	}
	if st, ok := s.stock(g); ok {
		return BranchStock, st, true
	}
	if s.stuckCounter >= s.cfg.BridgeAfter {
		if st, ok := s.bridge(g); ok {
			return BranchBridge, st, true
		}
	}
	if st, ok := s.perturb(g); ok {
		return BranchPerturb, st, true
	}
	return BranchNone, Step{}, false
}

// apply runs a pre-validated move.
func apply(g *GameState, m Move) (Step, bool) {
	if !g.CanMove(m) {
		return Step{}, false
	}
	st, err := g.MoveStack(m)
	return st, err == nil
}

func (s *Solver) wasteToFoundation(g *GameState) (Step, bool) {
	if g.Waste.Empty() {
		return Step{}, false
	}
	to, ok := g.FoundationFor(g.Waste.TopCard())
	if !ok {
		return Step{}, false
	}
	return apply(g, Move{From: WasteID, Start: g.Waste.Len() - 1, To: to})
}

func (s *Solver) tableauToFoundation(g *GameState, pin Card) (Step, bool) {
	for i := range g.Tableau {
		p := &g.Tableau[i]
		top, ok := p.Top()
		if !ok || !top.FaceUp || top.Card == pin {
			continue
		}
		if to, ok := g.FoundationFor(top.Card); ok {
			return apply(g, Move{From: p.ID, Start: p.Len() - 1, To: to})
		}
	}
	return Step{}, false
}

// tableauToTableau scans each pile's face-up run longest first and applies the
// first useful move in pile order. A run that already starts a pile never
// moves to an empty pile, and a partial run only moves when the card it
// uncovers can go straight to a foundation; other moves would just shuffle.
func (s *Solver) tableauToTableau(g *GameState) (Step, bool) {
	for i := range g.Tableau {
		from := &g.Tableau[i]
		first := from.FaceUpStart()
		for start := first; start < from.Len(); start++ {
			if start > first {
				if _, ok := g.FoundationFor(from.Cards[start-1].Card); !ok {
					continue
				}
			}
			card := from.Cards[start].Card
			for j := range g.Tableau {
				to := &g.Tableau[j]
				if j == i || (start == 0 && to.Empty()) {
					continue
				}
				if CanPlaceToTableau(card, to) {
					return apply(g, Move{From: from.ID, Start: start, To: to.ID})
				}
			}
		}
	}
	return Step{}, false
}

func (s *Solver) wasteToTableau(g *GameState) (Step, bool) {
	if g.Waste.Empty() {
		return Step{}, false
	}
	card := g.Waste.TopCard()
	for i := range g.Tableau {
		if CanPlaceToTableau(card, &g.Tableau[i]) {
			return apply(g, Move{From: WasteID, Start: g.Waste.Len() - 1, To: g.Tableau[i].ID})
		}
	}
	return Step{}, false
}

func (s *Solver) flip(g *GameState) (Step, bool) {
	for i := range g.Tableau {
		if top, ok := g.Tableau[i].Top(); ok && !top.FaceUp {
			st, err := g.FlipTop(g.Tableau[i].ID)
			return st, err == nil
		}
	}
	return Step{}, false
}

// stock draws, or recycles once the stock runs dry. Draws stop once the
// recycle budget is spent or the solver keeps revisiting states.
func (s *Solver) stock(g *GameState) (Step, bool) {
	if s.stockCycles >= s.cfg.MaxStockCycles || s.stuckCounter >= s.cfg.BridgeAfter {
		return Step{}, false
	}
	if !g.Stock.Empty() {
		st, err := g.Draw()
		return st, err == nil && st.Applied()
	}
	st, err := g.RecycleWasteToStock()
	if err != nil {
		return Step{}, false
	}
	s.stockCycles++
	return st, true
}

// bridge moves a foundation top card back onto a tableau pile, but only when
// a face-up run resting on a face-down card could then be stacked on it. The
// bridge card is pinned for the next step so it is not sent straight back.
func (s *Solver) bridge(g *GameState) (Step, bool) {
	for i := range g.Foundation {
		f := &g.Foundation[i]
		card := f.TopCard()
		if card == EmptyCard || !s.bridgeUnlocks(g, card) {
			continue
		}
		for j := range g.Tableau {
			if !CanPlaceToTableau(card, &g.Tableau[j]) {
				continue
			}
			if st, ok := apply(g, Move{From: f.ID, Start: f.Len() - 1, To: g.Tableau[j].ID}); ok {
				s.pinned = card
				return st, true
			}
		}
	}
	return Step{}, false
}

func (s *Solver) bridgeUnlocks(g *GameState, card Card) bool {
	for i := range g.Tableau {
		p := &g.Tableau[i]
		start := p.FaceUpStart()
		if start == 0 || start >= p.Len() {
			continue
		}
		base := p.Cards[start].Card
		if base.Color() != card.Color() && base.Rank()+1 == card.Rank() {
			return true
		}
	}
	return false
}

// perturb reshuffles the identities of the face-down tableau cards. It is a
// bounded escape from dead ends rather than real play, and it clears the undo
// log since the recorded layout no longer exists.
func (s *Solver) perturb(g *GameState) (Step, bool) {
	if s.retryCount >= s.cfg.MaxRetries {
		return Step{}, false
	}
	var slots []*Slot
	for i := range g.Tableau {
		p := &g.Tableau[i]
		for k := range p.Cards {
			if !p.Cards[k].FaceUp {
				slots = append(slots, &p.Cards[k])
			}
		}
	}
	if len(slots) < 2 {
		return Step{}, false
	}
	s.retryCount++
	for i := len(slots) - 1; i > 0; i-- {
		j := int(g.randN(uint64(i + 1)))
		slots[i].Card, slots[j].Card = slots[j].Card, slots[i].Card
	}
	g.History.Clear()
	return Step{Kind: StepPerturb, Perturbed: len(slots)}, true
}
