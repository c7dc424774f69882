package game

// EvaluatePlacement compares the cells the current player has placed against
// the strongest opponent, between -1 and 1.
func EvaluatePlacement(s State) float64 {
	gs, ok := s.(*GameState)
	if !ok {
		panic("unexpected state type")
	}
	placed := make([]float64, len(gs.Players))
	for i, p := range gs.Players {
		placed[i] = float64(TotalCells - p.Remaining.Cells())
	}
	return gs.againstBestOpponent(placed)
}

// EvaluateMobility compares the number of open corners of the current player
// against the strongest opponent, between -1 and 1.
func EvaluateMobility(s State) float64 {
	gs, ok := s.(*GameState)
	if !ok {
		panic("unexpected state type")
	}
	corners := make([]float64, len(gs.Players))
	for i, p := range gs.Players {
		if !p.HasPassed {
			corners[i] = float64(len(gs.Board.PlayerCorners(i)))
		}
	}
	return gs.againstBestOpponent(corners)
}

// EvaluatePlacementMobility averages placement and mobility.
func EvaluatePlacementMobility(s State) float64 {
	return (EvaluatePlacement(s) + EvaluateMobility(s)) / 2
}

func (gs *GameState) againstBestOpponent(values []float64) float64 {
	best := 0.0
	for i, v := range values {
		if i != gs.Current && v > best {
			best = v
		}
	}
	return normalize(values[gs.Current], best)
}

// normalize maps two non-negative quantities to (value - other) / (value + other).
func normalize(value float64, otherValue float64) float64 {
	if value+otherValue == 0 {
		return 0
	}
	return (value - otherValue) / (value + otherValue)
}
