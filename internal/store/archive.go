package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/paulutsch/clembench/pkg/recorder"
)

// Archive appends episode traces to a zstd-compressed JSONL file, one
// trace per line. One archive covers one benchmark run.
type Archive struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// OpenArchive opens (creating directories as needed) the archive at path.
func OpenArchive(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Archive{
		f:   f,
		enc: enc,
		w:   bufio.NewWriterSize(enc, 64*1024),
	}, nil
}

// WriteTrace appends one episode trace.
func (a *Archive) WriteTrace(trace recorder.Trace) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.f == nil {
		return fmt.Errorf("archive closed")
	}

	b, err := json.Marshal(trace)
	if err != nil {
		return fmt.Errorf("archive trace %s: %w", trace.EpisodeID, err)
	}
	if _, err := a.w.Write(b); err != nil {
		return err
	}
	if err := a.w.WriteByte('\n'); err != nil {
		return err
	}
	return a.w.Flush()
}

// Close flushes and closes the archive.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.f == nil {
		return nil
	}
	var firstErr error
	if err := a.w.Flush(); err != nil {
		firstErr = err
	}
	if err := a.enc.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.f.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	a.f, a.enc, a.w = nil, nil, nil
	return firstErr
}

// ReadArchive decompresses an archive and returns every trace in it.
func ReadArchive(path string) ([]recorder.Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var traces []recorder.Trace
	scanner := bufio.NewScanner(dec)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		var trace recorder.Trace
		if err := json.Unmarshal(scanner.Bytes(), &trace); err != nil {
			return nil, fmt.Errorf("read archive %s: %w", path, err)
		}
		traces = append(traces, trace)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return traces, nil
}
