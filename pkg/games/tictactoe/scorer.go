package tictactoe

import (
	"github.com/paulutsch/clembench/pkg/recorder"
	"github.com/paulutsch/clembench/pkg/scoring"
)

// Scorer turns a finished board trace into episode scores. The headline
// score averages rule compliance and outcome, so a clean draw still earns
// credit.
type Scorer struct{}

func (Scorer) ComputeScores(trace recorder.Trace) (map[string]float64, error) {
	outcome, err := scoring.ReadOutcome(trace)
	if err != nil {
		return nil, err
	}
	episode, err := scoring.FloatKey(trace, scoring.MetricEpisodeScore)
	if err != nil {
		return nil, err
	}

	success := boolScore(outcome.Success)
	aborted := boolScore(outcome.Aborted)
	return map[string]float64{
		scoring.MetricSuccess:      success,
		scoring.MetricAborted:      aborted,
		scoring.MetricEpisodeScore: episode,
		scoring.BenchScore:         ((1 - aborted) + success) / 2 * 100,
	}, nil
}

func boolScore(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
