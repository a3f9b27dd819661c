package engine

import "math/rand/v2"

// MaxLevel is the highest difficulty level accepted by DifficultyShuffle.
const MaxLevel = 100

// GenerateDeck returns the 52 standard cards, suit by suit, Ace to King.
// Orientation is not part of a Card; callers deal them face-down.
func GenerateDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for suit := uint8(0); suit < NumSuits; suit++ {
		for rank := RankAce; rank <= RankKing; rank++ {
			deck = append(deck, NewCard(suit, rank))
		}
	}
	return deck
}

// Shuffle permutes deck in place with Fisher-Yates from the unseeded
// global source.
func Shuffle(deck []Card) {
	for i := len(deck) - 1; i > 0; i-- {
		j := rand.IntN(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
}

// SeededShuffle permutes deck in place with Fisher-Yates driven by a 64-bit
// linear congruential generator. The same seed always yields the same order.
func SeededShuffle(deck []Card, seed uint64) {
	rng := seed
	for i := len(deck) - 1; i > 0; i-- {
		rng = rng*6364136223846793005 + 1442695040888963407
		j := int((rng >> 33) % uint64(i+1))
		deck[i], deck[j] = deck[j], deck[i]
	}
}

// LevelSeed derives the layout seed used for a difficulty level.
func LevelSeed(level int) uint64 {
	return uint64(level)*0x9E3779B97F4A7C15 + 1
}

// DifficultyShuffle deals the fixed layout for a level: SeededShuffle keyed by
// the level, followed by the band bias of ApplyDifficulty.
func DifficultyShuffle(deck []Card, level int) {
	SeededShuffle(deck, LevelSeed(level))
	ApplyDifficulty(deck, level)
}

// ---------------------------------------------------------------------------
// Difficulty bands
// ---------------------------------------------------------------------------

// Band groups difficulty levels.
type Band uint8

const (
	BandNone         Band = iota // level 0: no bias
	BandEasy                     // 1–20
	BandIntermediate             // 21–40
	BandAdvanced                 // 41–70
	BandMaster                   // 71–100
)

func (b Band) String() string {
	switch b {
	case BandEasy:
		return "easy"
	case BandIntermediate:
		return "intermediate"
	case BandAdvanced:
		return "advanced"
	case BandMaster:
		return "master"
	default:
		return "none"
	}
}

// BandFor returns the band of a level. Levels above MaxLevel count as master.
func BandFor(level int) Band {
	switch {
	case level <= 0:
		return BandNone
	case level <= 20:
		return BandEasy
	case level <= 40:
		return BandIntermediate
	case level <= 70:
		return BandAdvanced
	default:
		return BandMaster
	}
}

// bias is how many cards of each class a level forces into place.
type bias struct {
	promote int // aces/twos moved to tableau tops and early stock draws
	bury    int // aces/twos moved to the deepest face-down tableau slots
	crown   int // kings/queens moved to tableau tops
}

// difficultyTier groups levels in steps of five; every band starts on a tier
// boundary. All bias fields step on the same tier so a higher level never
// deals an easier layout than a lower one.
func difficultyTier(level int) int {
	if level > MaxLevel {
		level = MaxLevel
	}
	return (level - 1) / 5
}

// biasFor returns the placements of a level. Across levels promote never
// rises while bury and crown never fall.
func biasFor(level int) bias {
	t := difficultyTier(level)
	switch BandFor(level) {
	case BandEasy: // tiers 0-3
		return bias{promote: 8 - t}
	case BandIntermediate: // tiers 4-7
		return bias{promote: 3 - (t-4)/2, bury: (t - 4) / 2}
	case BandAdvanced: // tiers 8-13
		return bias{bury: 2 + (t-8)/2, crown: 1 + (t-8)/2}
	case BandMaster: // tiers 14-19
		return bias{bury: 5 + (t-14)/2, crown: 4 + (t-14)/2}
	}
	return bias{}
}

// Deal-order positions. The deck is dealt front to back: column c receives
// c+1 cards, the last one face-up; the remaining 24 form the stock with the
// final deck card on top (drawn first).
func tableauPos(col, depth int) int { return col*(col+1)/2 + depth }

var (
	topPositions  [NumTableaus]int
	drawPositions [8]int
	buryPositions []int
)

func init() {
	for c := 0; c < NumTableaus; c++ {
		topPositions[c] = tableauPos(c, c)
	}
	for i := range drawPositions {
		drawPositions[i] = DeckSize - 1 - i
	}
	// Deepest face-down slots first, longest columns first.
	for depth := 0; depth < NumTableaus-1; depth++ {
		for col := NumTableaus - 1; col > depth; col-- {
			buryPositions = append(buryPositions, tableauPos(col, depth))
		}
	}
}

var (
	lowRanks  = []uint8{RankAce, RankTwo}
	highRanks = []uint8{RankKing, RankQueen}
)

// ApplyDifficulty biases an already shuffled deck toward the level's band.
// Lower bands surface aces and twos; higher bands bury them and crown the
// tableau with kings. Only swaps are used, so the deck stays a permutation.
func ApplyDifficulty(deck []Card, level int) {
	if len(deck) != DeckSize {
		return
	}
	b := biasFor(level)
	var locked [DeckSize]bool

	if b.promote > 0 {
		targets := make([]int, 0, len(topPositions)+len(drawPositions))
		targets = append(targets, topPositions[:]...)
		targets = append(targets, drawPositions[:]...)
		placeRanks(deck, &locked, lowRanks, targets, b.promote)
	}
	if b.bury > 0 {
		placeRanks(deck, &locked, lowRanks, buryPositions, b.bury)
	}
	if b.crown > 0 {
		placeRanks(deck, &locked, highRanks, topPositions[:], b.crown)
	}
}

// placeRanks swaps up to n cards whose rank is in ranks (earlier ranks
// preferred) into the unlocked target positions, locking each filled target.
func placeRanks(deck []Card, locked *[DeckSize]bool, ranks []uint8, targets []int, n int) {
	placed := 0
	for _, pos := range targets {
		if placed == n {
			return
		}
		if locked[pos] {
			continue
		}
		if hasRank(deck[pos], ranks) {
			locked[pos] = true
			placed++
			continue
		}
		src := -1
		for _, r := range ranks {
			for i := range deck {
				if !locked[i] && deck[i].Rank() == r {
					src = i
					break
				}
			}
			if src >= 0 {
				break
			}
		}
		if src < 0 {
			return
		}
		deck[pos], deck[src] = deck[src], deck[pos]
		locked[pos] = true
		placed++
	}
}

func hasRank(c Card, ranks []uint8) bool {
	for _, r := range ranks {
		if c.Rank() == r {
			return true
		}
	}
	return false
}
