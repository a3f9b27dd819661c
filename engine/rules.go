package engine

// HouseRules holds configurable game rule settings.
type HouseRules struct {
	Level             int  // difficulty level 1–100; 0 = plain shuffle
	FoundationPoints  int  // score added per card landing on a foundation
	BlockRecycleOnAce bool // if true, Waste→Stock recycling is refused while the waste top is an Ace
}

// DefaultHouseRules returns the standard Klondike house rules.
func DefaultHouseRules() HouseRules {
	return HouseRules{
		Level:             0,
		FoundationPoints:  10,
		BlockRecycleOnAce: false,
	}
}

// level returns the effective difficulty level clamped to 0..MaxLevel.
func (r *HouseRules) level() int {
	switch {
	case r.Level < 0:
		return 0
	case r.Level > MaxLevel:
		return MaxLevel
	}
	return r.Level
}
