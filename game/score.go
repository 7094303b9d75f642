package game

// ScoreWeights parameterizes score = step term + differential term + outcome bonus.
type ScoreWeights struct {
	Step         int
	Differential int
	Win          int
	Tie          int
}

func (w ScoreWeights) Score(steps, differential int, status Status) int {
	score := steps*w.Step + differential*w.Differential
	switch status {
	case Win:
		score += w.Win
	case Tie:
		score += w.Tie
	}
	return score
}
