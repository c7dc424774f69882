package agent

// EpsilonSchedule decays exploration linearly from Start to End over
// DecayEpisodes episodes, then holds at End.
type EpsilonSchedule struct {
	Start         float64
	End           float64
	DecayEpisodes int
	episodes      int
}

func (s *EpsilonSchedule) Value() float64 {
	if s.DecayEpisodes <= 0 {
		return s.End
	}
	ratio := min(1.0, float64(s.episodes)/float64(s.DecayEpisodes))
	return s.Start + (s.End-s.Start)*ratio
}

// Step records a finished episode.
func (s *EpsilonSchedule) Step() {
	s.episodes++
}

func (s *EpsilonSchedule) Episodes() int { return s.episodes }
