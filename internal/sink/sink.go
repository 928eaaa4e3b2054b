// Package sink delivers emitted watch events to their destinations. A
// watcher fans each tick's events out to every configured sink; a sink
// failure fails the tick's delivery but never corrupts the snapshot, which
// was already written by the engine.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/flarewatch/flarewatch/internal/watch"
)

// Sink receives the events of one tick.
type Sink interface {
	Publish(ctx context.Context, events []watch.Event) error
	Close() error
}

// StdoutSink writes events as JSON lines. The zero destination is os.Stdout;
// tests inject a buffer.
type StdoutSink struct {
	mu  sync.Mutex
	out io.Writer
}

// NewStdoutSink writes JSON lines to out.
func NewStdoutSink(out io.Writer) *StdoutSink {
	return &StdoutSink{out: out}
}

func (s *StdoutSink) Publish(_ context.Context, events []watch.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	enc := json.NewEncoder(s.out)
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return fmt.Errorf("encode event %s: %w", ev.ID, err)
		}
	}
	return nil
}

func (s *StdoutSink) Close() error {
	return nil
}
