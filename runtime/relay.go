package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go4org/hashtriemap"

	"vitatrack/contract"
	"vitatrack/domain"
	"vitatrack/domain/event"
	"vitatrack/errors"
	"vitatrack/observability"
)

// Relay forwards events to one named connection.
//
// Delivery is best effort: a target that is no longer attached is dropped
// silently and nothing is queued or retried. The relay trusts the target ids
// it is given and performs no room membership check, so any live connection
// can be signaled by any other.
//
// Relay is safe for concurrent use.
type Relay struct {
	log     *slog.Logger
	metrics *observability.Metrics
	sinks   hashtriemap.HashTrieMap[domain.ConnectionID, contract.EventSink]
}

func NewRelay(log *slog.Logger, metrics *observability.Metrics) *Relay {
	return &Relay{log: log, metrics: metrics}
}

// Attach makes id reachable.
func (r *Relay) Attach(id domain.ConnectionID, sink contract.EventSink) {
	r.sinks.Store(id, sink)
}

// Detach makes id unreachable. Later deliveries to id are dropped.
func (r *Relay) Detach(id domain.ConnectionID) {
	r.sinks.LoadAndDelete(id)
}

// Notify hands e to the sink attached for id.
func (r *Relay) Notify(ctx context.Context, id domain.ConnectionID, e event.Event) error {
	sink, ok := r.sinks.Load(id)
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownTarget, id)
	}
	return sink.Consume(ctx, e)
}

// RelayOffer delivers a user-joined event to target only.
func (r *Relay) RelayOffer(ctx context.Context, target domain.ConnectionID, signal domain.Signal,
	caller domain.ConnectionID, metadata domain.Metadata) {
	r.deliver(ctx, observability.RelayOffer, target, event.UserJoined{
		Signal:   signal,
		CallerID: caller,
		Metadata: metadata,
	})
}

// RelayAnswer delivers a receiving-returned-signal event back to the original caller.
func (r *Relay) RelayAnswer(ctx context.Context, caller domain.ConnectionID, signal domain.Signal,
	answering domain.ConnectionID, metadata domain.Metadata) {
	r.deliver(ctx, observability.RelayAnswer, caller, event.ReceivingReturnedSignal{
		Signal:   signal,
		ID:       answering,
		Metadata: metadata,
	})
}

func (r *Relay) deliver(ctx context.Context, kind string, target domain.ConnectionID, e event.Event) {
	if err := r.Notify(ctx, target, e); err != nil {
		r.metrics.Relays.WithLabelValues(kind, observability.OutcomeDropped).Inc()
		r.log.Debug("Relay dropped", "kind", kind, "target", target, "error", err)
		return
	}
	r.metrics.Relays.WithLabelValues(kind, observability.OutcomeDelivered).Inc()
	r.log.Debug("Relay delivered", "kind", kind, "target", target)
}
