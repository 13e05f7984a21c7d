package recorder

import "testing"

type captureSink struct {
	events []Event
}

func (s *captureSink) Record(ev Event) error {
	s.events = append(s.events, ev)
	return nil
}

func TestRecorderRounds(t *testing.T) {
	r := New("testgame")
	r.LogEvent(GM, "Player 1 (Echoer)", "send message", "hello")
	r.LogEvent("Player 1 (Echoer)", GM, "get message", "hi")
	r.NextRound()
	r.LogSelf("note", "round two")

	trace := r.Trace()
	if trace.Game != "testgame" {
		t.Errorf("trace game = %q, want testgame", trace.Game)
	}
	if trace.EpisodeID == "" {
		t.Error("trace has no episode id")
	}
	if len(trace.Rounds) != 2 {
		t.Fatalf("trace rounds = %d, want 2", len(trace.Rounds))
	}
	if len(trace.Rounds[0]) != 2 || len(trace.Rounds[1]) != 1 {
		t.Errorf("round sizes = %d, %d, want 2, 1", len(trace.Rounds[0]), len(trace.Rounds[1]))
	}
	if ev := trace.Rounds[1][0]; ev.From != GM || ev.To != GM || ev.Kind != "note" {
		t.Errorf("self event = %+v", ev)
	}
}

func TestSinkReceivesEvents(t *testing.T) {
	r := New("testgame")
	sink := &captureSink{}
	r.Attach(sink)

	r.LogEvent(GM, "Player 1 (Echoer)", "send message", "hello")
	r.LogSelf("note", 42)

	if len(sink.events) != 2 {
		t.Fatalf("sink received %d event(s), want 2", len(sink.events))
	}
	if sink.events[0].Kind != "send message" || sink.events[1].Kind != "note" {
		t.Errorf("sink kinds = %q, %q", sink.events[0].Kind, sink.events[1].Kind)
	}
}

func TestTraceIsSnapshot(t *testing.T) {
	r := New("testgame")
	r.LogKey("success", true)
	trace := r.Trace()

	r.LogKey("success", false)
	r.LogEvent(GM, GM, "late", "event")

	if got := trace.Keys["success"]; got != true {
		t.Errorf("snapshot key mutated: %v", got)
	}
	if len(trace.Rounds[0]) != 0 {
		t.Error("snapshot rounds mutated by later event")
	}
}

func TestLogPlayers(t *testing.T) {
	r := New("testgame")
	r.LogPlayers(map[string]string{
		GM:                  "Game master for testgame",
		"Player 1 (Echoer)": "Echoer (echo)",
	})
	trace := r.Trace()
	if trace.Players["Player 1 (Echoer)"] != "Echoer (echo)" {
		t.Errorf("players = %v", trace.Players)
	}
}
