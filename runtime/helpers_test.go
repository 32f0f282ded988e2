package runtime

import (
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"vitatrack/domain"
	"vitatrack/domain/event"
	"vitatrack/observability"
	"vitatrack/sink"
)

func newTestCoordinator() (*Coordinator, *observability.Metrics) {
	log := slog.New(slog.DiscardHandler)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	return NewCoordinator(log, NewRelay(log, metrics), metrics), metrics
}

func connect(c *Coordinator, id domain.ConnectionID) *sink.ConnectionSink {
	s := sink.NewConnectionSink(64)
	c.Connect(context.Background(), id, s)
	return s
}

// drain returns every event queued so far without waiting.
func drain(s *sink.ConnectionSink) []event.Event {
	var events []event.Event
	for {
		select {
		case e := <-s.Outbound:
			events = append(events, e)
		default:
			return events
		}
	}
}

func join(t *testing.T, c *Coordinator, id domain.ConnectionID, room domain.RoomID) error {
	t.Helper()
	return c.Handle(context.Background(), domain.JoinRoomCommand{Connection: id, Room: room})
}

func requireSingle[E event.Event](t *testing.T, s *sink.ConnectionSink) E {
	t.Helper()
	events := drain(s)
	require.Len(t, events, 1)
	e, ok := events[0].(E)
	require.Truef(t, ok, "unexpected event %T", events[0])
	return e
}
