package engine

// dealWindow is how many upcoming stock draws DealScore treats as reachable.
const dealWindow = 8

// DealScore measures how accessible the low cards (Aces and Twos) of a fresh
// deal are: one point for each on a tableau top or within the next dealWindow
// stock draws, minus one for each buried face-down in the tableau. Easier
// layouts score higher.
func DealScore(g *GameState) int {
	score := 0
	for i := range g.Tableau {
		for _, s := range g.Tableau[i].Cards {
			if !hasRank(s.Card, lowRanks) {
				continue
			}
			if s.FaceUp {
				score++
			} else {
				score--
			}
		}
	}
	n := g.Stock.Len()
	for i := n - 1; i >= 0 && i >= n-dealWindow; i-- {
		if hasRank(g.Stock.Cards[i].Card, lowRanks) {
			score++
		}
	}
	return score
}

// Progress returns the fraction of the deck already on the foundations.
func (g *GameState) Progress() float64 {
	return float64(g.FoundationCount()) / DeckSize
}
