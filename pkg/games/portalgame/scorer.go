package portalgame

import (
	"math"

	"github.com/paulutsch/clembench/pkg/recorder"
	"github.com/paulutsch/clembench/pkg/scoring"
)

// Scorer turns a finished maze trace into episode scores. Winning episodes
// are graded on move efficiency against the recorded shortest path.
type Scorer struct{}

func (Scorer) ComputeScores(trace recorder.Trace) (map[string]float64, error) {
	outcome, err := scoring.ReadOutcome(trace)
	if err != nil {
		return nil, err
	}
	moves, err := scoring.IntKey(trace, scoring.MetricMoves)
	if err != nil {
		return nil, err
	}
	shortest, err := scoring.IntKey(trace, "shortest_path")
	if err != nil {
		return nil, err
	}

	scores := map[string]float64{
		scoring.MetricSuccess: boolScore(outcome.Success),
		scoring.MetricAborted: boolScore(outcome.Aborted),
		scoring.MetricMoves:   float64(moves),
	}

	// Aborted episodes carry no quality signal.
	if outcome.Aborted {
		scores[scoring.BenchScore] = math.NaN()
		return scores, nil
	}

	if !outcome.Success {
		scores[scoring.BenchScore] = 0
		return scores, nil
	}

	efficiency := 1.0
	if moves > 0 && shortest > 0 {
		efficiency = float64(shortest) / float64(moves)
		if efficiency > 1 {
			efficiency = 1
		}
	}
	scores["efficiency"] = efficiency
	scores[scoring.BenchScore] = 100 - 50*(1-efficiency)
	return scores, nil
}

func boolScore(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
