package profile

// StatsDelta is the write-back produced by recording one completed game for one player.
type StatsDelta struct {
	UserID string
	Played bool
	Won    bool
	Hosted bool
	Score  float64
}

// Apply returns s with delta folded in. AverageScore is recomputed from the totals.
func (s Stats) Apply(delta StatsDelta) Stats {
	if delta.Played {
		s.GamesPlayed++
		s.TotalScore += delta.Score
	}
	if delta.Won {
		s.GamesWon++
	}
	if delta.Hosted {
		s.GamesHosted++
	}
	if s.GamesPlayed > 0 {
		s.AverageScore = s.TotalScore / float64(s.GamesPlayed)
	}
	return s
}
