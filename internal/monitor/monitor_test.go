package monitor

import (
	"context"
	"strings"
	"testing"
	"time"

	"adaptive-core/internal/events"
)

// chanSink buffers delivered alerts so tests can await them.
type chanSink struct {
	out chan string
}

func (s *chanSink) Send(message string) error {
	s.out <- message
	return nil
}

func awaitAlert(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no alert delivered")
		return ""
	}
}

func TestMonitorForwardsAlertTopics(t *testing.T) {
	bus := events.NewBus()
	sink := &chanSink{out: make(chan string, 10)}
	m := &Monitor{Bus: bus, Sink: sink}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	bus.Publish(events.EventRiskAlert, "drawdown 32.0% on BTCUSDT")
	msg := awaitAlert(t, sink.out)
	if !strings.Contains(msg, string(events.EventRiskAlert)) {
		t.Fatalf("alert %q missing topic %q", msg, events.EventRiskAlert)
	}
	if !strings.Contains(msg, "drawdown 32.0% on BTCUSDT") {
		t.Fatalf("alert %q missing payload", msg)
	}

	bus.Publish(events.EventOverfitAlert, struct{ Gap float64 }{0.4})
	msg = awaitAlert(t, sink.out)
	if !strings.Contains(msg, string(events.EventOverfitAlert)) {
		t.Fatalf("alert %q missing topic %q", msg, events.EventOverfitAlert)
	}
	// Non-string payloads still produce a readable line.
	if !strings.Contains(msg, "alert triggered") {
		t.Fatalf("alert %q missing fallback payload text", msg)
	}
}

func TestMonitorWithoutSinkIsInert(t *testing.T) {
	m := &Monitor{Bus: events.NewBus()}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx) // must not panic or subscribe anything
}
