// Package recorder collects the episode trace: the per-round event log and
// the flat key/value record handed to the scorer when an episode ends.
// Sinks subscribe to events as they happen; dispatch is synchronous because
// an episode is strictly single-threaded.
package recorder

import (
	"time"

	"github.com/google/uuid"
	"github.com/paulutsch/clembench/pkg/logger"
	"github.com/sirupsen/logrus"
)

// GM is the sender/receiver tag for orchestrator-internal events.
const GM = "GM"

// Event is one logged interaction within an episode.
type Event struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Kind      string    `json:"type"`
	Content   any       `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Sink receives events as they are recorded.
type Sink interface {
	Record(ev Event) error
}

// Trace is the finished episode record consumed by scorers and stores.
type Trace struct {
	EpisodeID string             `json:"episode_id"`
	Game      string             `json:"game"`
	Players   map[string]string  `json:"players"`
	Rounds    [][]Event          `json:"rounds"`
	Keys      map[string]any     `json:"keys"`
}

// Recorder accumulates one episode's events and keys.
type Recorder struct {
	episodeID string
	game      string
	players   map[string]string
	rounds    [][]Event
	keys      map[string]any
	sinks     []Sink

	log *logrus.Entry
}

// New creates a recorder for one episode of the named game.
func New(gameName string) *Recorder {
	return &Recorder{
		episodeID: uuid.NewString(),
		game:      gameName,
		players:   make(map[string]string),
		rounds:    [][]Event{{}},
		keys:      make(map[string]any),
		log:       logger.Named("recorder"),
	}
}

// EpisodeID returns the episode's unique ID.
func (r *Recorder) EpisodeID() string { return r.episodeID }

// Attach subscribes a sink to all subsequent events.
func (r *Recorder) Attach(sink Sink) {
	r.sinks = append(r.sinks, sink)
}

// LogEvent records an interaction between two parties in the current round.
func (r *Recorder) LogEvent(from, to, kind string, content any) {
	ev := Event{From: from, To: to, Kind: kind, Content: content, Timestamp: time.Now().UTC()}
	cur := len(r.rounds) - 1
	r.rounds[cur] = append(r.rounds[cur], ev)
	for _, sink := range r.sinks {
		if err := sink.Record(ev); err != nil {
			r.log.WithError(err).Warn("sink failed to record event")
		}
	}
}

// LogSelf records an orchestrator-internal note (GM to GM).
func (r *Recorder) LogSelf(kind string, content any) {
	r.LogEvent(GM, GM, kind, content)
}

// LogKey stores a value in the flat key/value trace.
func (r *Recorder) LogKey(key string, value any) {
	r.keys[key] = value
}

// LogPlayers records the player roster (name to description).
func (r *Recorder) LogPlayers(players map[string]string) {
	for name, desc := range players {
		r.players[name] = desc
	}
}

// NextRound closes the current round; subsequent events belong to the next.
func (r *Recorder) NextRound() {
	r.rounds = append(r.rounds, []Event{})
}

// Trace snapshots the full episode record.
func (r *Recorder) Trace() Trace {
	players := make(map[string]string, len(r.players))
	for k, v := range r.players {
		players[k] = v
	}
	keys := make(map[string]any, len(r.keys))
	for k, v := range r.keys {
		keys[k] = v
	}
	rounds := make([][]Event, len(r.rounds))
	for i, round := range r.rounds {
		rounds[i] = append([]Event(nil), round...)
	}
	return Trace{
		EpisodeID: r.episodeID,
		Game:      r.game,
		Players:   players,
		Rounds:    rounds,
		Keys:      keys,
	}
}

// LogSink mirrors every event to the process log. Useful when watching a
// run live.
type LogSink struct {
	entry *logrus.Entry
}

// NewLogSink creates a sink writing to the shared logger.
func NewLogSink() *LogSink {
	return &LogSink{entry: logger.Named("transcript")}
}

func (s *LogSink) Record(ev Event) error {
	s.entry.WithFields(logrus.Fields{
		"from": ev.From,
		"to":   ev.To,
		"type": ev.Kind,
	}).Info(ev.Content)
	return nil
}
