package hellogame

import (
	"github.com/paulutsch/clembench/pkg/recorder"
	"github.com/paulutsch/clembench/pkg/scoring"
)

// Scorer turns a finished greeting trace into episode scores.
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

	scores := map[string]float64{
		scoring.MetricSuccess:      boolScore(outcome.Success),
		scoring.MetricAborted:      boolScore(outcome.Aborted),
		scoring.MetricEpisodeScore: episode,
		scoring.BenchScore:         0,
	}
	if outcome.Success {
		scores[scoring.BenchScore] = 100
	}
	return scores, nil
}

func boolScore(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
