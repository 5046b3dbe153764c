package monitor

import (
	"context"
	"fmt"
	"log"
	"time"

	"adaptive-core/internal/events"
)

// Monitor watches bus events and forwards alert-worthy ones to a sink.
type Monitor struct {
	Bus  *events.Bus
	Sink AlertSink
}

func (m *Monitor) Start(ctx context.Context) {
	if m.Bus == nil || m.Sink == nil {
		log.Println("monitor not fully configured; skipping")
		return
	}
	m.watch(ctx, events.EventRiskAlert)
	m.watch(ctx, events.EventOverfitAlert)
}

func (m *Monitor) watch(ctx context.Context, topic events.Event) {
	stream, unsub := m.Bus.Subscribe(topic, 50)
	go func() {
		defer unsub()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-stream:
				if !ok {
					return
				}
				if err := m.Sink.Send(formatAlert(topic, msg)); err != nil {
					log.Printf("⚠️ alert delivery failed: %v", err)
				}
			}
		}
	}()
}

func formatAlert(topic events.Event, msg any) string {
	return "[" + time.Now().Format(time.RFC3339) + "] " + string(topic) + ": " + toString(msg)
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return "alert triggered"
	}
}
