package store

import (
	"path/filepath"
	"testing"

	"github.com/paulutsch/clembench/pkg/recorder"
)

func TestIndexInsertAndQuery(t *testing.T) {
	index, err := OpenIndex(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("OpenIndex failed: %v", err)
	}
	defer index.Close()

	rows := []EpisodeRow{
		{
			EpisodeID: "ep-1", RunID: "run-1", Game: "portalgame", Experiment: "portalgame_5x5",
			InstanceID: 0, Model: "gpt-4o-mini", Success: true, Moves: 6, BenchScore: 83.3,
		},
		{
			EpisodeID: "ep-2", RunID: "run-1", Game: "portalgame", Experiment: "portalgame_5x5",
			InstanceID: 1, Model: "gpt-4o-mini", Aborted: true, Moves: 2, BenchScore: 0,
		},
		{
			EpisodeID: "ep-3", RunID: "run-2", Game: "sudoku", Experiment: "sudoku_0.5",
			InstanceID: 0, Model: "gemini-2.0-flash", Moves: 20, BenchScore: 0,
		},
	}
	for _, row := range rows {
		if err := index.InsertEpisode(row); err != nil {
			t.Fatalf("InsertEpisode(%s) failed: %v", row.EpisodeID, err)
		}
	}

	got, err := index.RunEpisodes("run-1")
	if err != nil {
		t.Fatalf("RunEpisodes failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("run-1 episodes = %d, want 2", len(got))
	}
	if !got[0].Success || got[0].Moves != 6 {
		t.Errorf("episode 0 = %+v", got[0])
	}
	if !got[1].Aborted || got[1].Success {
		t.Errorf("episode 1 = %+v", got[1])
	}
	if got[0].RecordedAt.IsZero() {
		t.Error("recorded_at not populated")
	}
}

func TestIndexRejectsDuplicateEpisode(t *testing.T) {
	index, err := OpenIndex(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("OpenIndex failed: %v", err)
	}
	defer index.Close()

	row := EpisodeRow{EpisodeID: "ep-1", RunID: "run-1", Game: "hellogame", Experiment: "x", Model: "m"}
	if err := index.InsertEpisode(row); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if err := index.InsertEpisode(row); err == nil {
		t.Error("duplicate insert succeeded")
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl.zst")
	archive, err := OpenArchive(path)
	if err != nil {
		t.Fatalf("OpenArchive failed: %v", err)
	}

	rec := recorder.New("hellogame")
	rec.LogEvent(recorder.GM, "Player 1 (Greeter)", "send message", "hello")
	rec.LogKey("success", true)

	if err := archive.WriteTrace(rec.Trace()); err != nil {
		t.Fatalf("WriteTrace failed: %v", err)
	}
	if err := archive.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := archive.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	traces, err := ReadArchive(path)
	if err != nil {
		t.Fatalf("ReadArchive failed: %v", err)
	}
	if len(traces) != 1 {
		t.Fatalf("traces = %d, want 1", len(traces))
	}
	trace := traces[0]
	if trace.Game != "hellogame" || trace.EpisodeID == "" {
		t.Errorf("trace = %+v", trace)
	}
	if len(trace.Rounds) != 1 || len(trace.Rounds[0]) != 1 {
		t.Errorf("rounds = %v", trace.Rounds)
	}
	if got := trace.Keys["success"]; got != true {
		t.Errorf("success key = %v, want true", got)
	}
}
