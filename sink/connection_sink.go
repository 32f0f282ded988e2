package sink

import (
	"context"
	"sync"

	"vitatrack/domain/event"
	"vitatrack/errors"
)

// ConnectionSink is the outbound queue of one live connection.
// The coordinator and the relay push into it; the transport's write loop drains Outbound.
// Outbound is never closed: Close signals Done instead, so a late Consume cannot panic.
type ConnectionSink struct {
	Outbound chan event.Event
	done     chan struct{}
	once     sync.Once
}

func NewConnectionSink(bufferSize int) *ConnectionSink {
	return &ConnectionSink{
		Outbound: make(chan event.Event, bufferSize),
		done:     make(chan struct{}),
	}
}

// Consume enqueues e without blocking. A full queue drops e.
func (s *ConnectionSink) Consume(ctx context.Context, e event.Event) error {
	select {
	case <-s.done:
		return errors.ErrSinkClosed
	default:
	}
	select {
	case s.Outbound <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.ErrSinkFull
	}
}

// Done is closed once the connection is going away.
func (s *ConnectionSink) Done() <-chan struct{} {
	return s.done
}

func (s *ConnectionSink) Close() {
	s.once.Do(func() { close(s.done) })
}
