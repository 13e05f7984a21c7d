// Package scoring defines the external scorer contract: a finished
// episode's key/value trace goes in, named episode scores come out. How
// scores are aggregated across episodes is not this module's business.
package scoring

import (
	"fmt"

	"github.com/paulutsch/clembench/pkg/recorder"
)

// Standard trace keys and episode score names shared across games.
const (
	MetricSuccess      = "success"
	MetricAborted      = "aborted"
	MetricMoves        = "moves"
	MetricEpisodeScore = "episode_score"

	// BenchScore is the headline metric, scaled 0..100.
	BenchScore = "bench_score"
)

// Scorer computes named episode scores from a finished trace.
type Scorer interface {
	ComputeScores(trace recorder.Trace) (map[string]float64, error)
}

// BoolKey reads a boolean from the trace keys.
func BoolKey(trace recorder.Trace, key string) (bool, error) {
	v, ok := trace.Keys[key]
	if !ok {
		return false, fmt.Errorf("trace key %q missing", key)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("trace key %q is %T, not bool", key, v)
	}
	return b, nil
}

// IntKey reads an integer from the trace keys.
func IntKey(trace recorder.Trace, key string) (int, error) {
	v, ok := trace.Keys[key]
	if !ok {
		return 0, fmt.Errorf("trace key %q missing", key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	}
	return 0, fmt.Errorf("trace key %q is %T, not int", key, v)
}

// FloatKey reads a float from the trace keys.
func FloatKey(trace recorder.Trace, key string) (float64, error) {
	v, ok := trace.Keys[key]
	if !ok {
		return 0, fmt.Errorf("trace key %q missing", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	}
	return 0, fmt.Errorf("trace key %q is %T, not float", key, v)
}

// Outcome is the success/aborted pair every game records.
type Outcome struct {
	Success bool
	Aborted bool
}

// ReadOutcome extracts the common outcome flags from a trace.
func ReadOutcome(trace recorder.Trace) (Outcome, error) {
	success, err := BoolKey(trace, MetricSuccess)
	if err != nil {
		return Outcome{}, err
	}
	aborted, err := BoolKey(trace, MetricAborted)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Success: success, Aborted: aborted}, nil
}
