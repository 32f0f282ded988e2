package runtime

import (
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"vitatrack/domain"
	"vitatrack/domain/event"
	"vitatrack/errors"
	"vitatrack/mocks"
	"vitatrack/observability"
)

func newTestRelay() (*Relay, *observability.Metrics) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	return NewRelay(slog.New(slog.DiscardHandler), metrics), metrics
}

func TestRelay_RelayOffer_DeliversToTargetOnly(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	relay, metrics := newTestRelay()
	ctx := context.Background()

	target := mocks.NewMockEventSink(ctrl)
	bystander := mocks.NewMockEventSink(ctrl)
	relay.Attach("target", target)
	relay.Attach("bystander", bystander)

	// Then only the target is handed the offer
	target.EXPECT().Consume(gomock.Any(), event.UserJoined{
		Signal:   domain.Signal(`"X"`),
		CallerID: "caller",
		Metadata: domain.Metadata(`{"name":"alice"}`),
	}).Return(nil).Times(1)
	bystander.EXPECT().Consume(gomock.Any(), gomock.Any()).Times(0)

	// When an offer is relayed
	relay.RelayOffer(ctx, "target", domain.Signal(`"X"`), "caller", domain.Metadata(`{"name":"alice"}`))

	req.Equal(1.0, testutil.ToFloat64(metrics.Relays.WithLabelValues(observability.RelayOffer, observability.OutcomeDelivered)))
}

func TestRelay_RelayAnswer_DeliversToCaller(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	relay, metrics := newTestRelay()

	caller := mocks.NewMockEventSink(ctrl)
	relay.Attach("caller", caller)

	caller.EXPECT().Consume(gomock.Any(), event.ReceivingReturnedSignal{
		Signal: domain.Signal(`{"sdp":"answer"}`),
		ID:     "answering",
	}).Return(nil)

	relay.RelayAnswer(context.Background(), "caller", domain.Signal(`{"sdp":"answer"}`), "answering", nil)

	req.Equal(1.0, testutil.ToFloat64(metrics.Relays.WithLabelValues(observability.RelayAnswer, observability.OutcomeDelivered)))
}

func TestRelay_UnknownTarget_IsDroppedSilently(t *testing.T) {
	req := require.New(t)
	relay, metrics := newTestRelay()

	// When the target was never attached
	req.NotPanics(func() {
		relay.RelayOffer(context.Background(), "ghost", domain.Signal(`"X"`), "caller", nil)
	})

	// Then the drop is only visible in the metrics
	req.Equal(1.0, testutil.ToFloat64(metrics.Relays.WithLabelValues(observability.RelayOffer, observability.OutcomeDropped)))

	err := relay.Notify(context.Background(), "ghost", event.UserLeft{ID: "x"})
	req.ErrorIs(err, errors.ErrUnknownTarget)
}

func TestRelay_Detach(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	relay, metrics := newTestRelay()

	target := mocks.NewMockEventSink(ctrl)
	target.EXPECT().Consume(gomock.Any(), gomock.Any()).Times(0)
	relay.Attach("target", target)

	// When the target goes away before the offer arrives
	relay.Detach("target")
	relay.RelayOffer(context.Background(), "target", domain.Signal(`"X"`), "caller", nil)

	req.Equal(1.0, testutil.ToFloat64(metrics.Relays.WithLabelValues(observability.RelayOffer, observability.OutcomeDropped)))
}

func TestRelay_SinkError_CountsAsDropped(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	relay, metrics := newTestRelay()

	target := mocks.NewMockEventSink(ctrl)
	target.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(errors.ErrSinkFull)
	relay.Attach("target", target)

	relay.RelayOffer(context.Background(), "target", domain.Signal(`"X"`), "caller", nil)

	req.Equal(1.0, testutil.ToFloat64(metrics.Relays.WithLabelValues(observability.RelayOffer, observability.OutcomeDropped)))
	req.Zero(testutil.ToFloat64(metrics.Relays.WithLabelValues(observability.RelayOffer, observability.OutcomeDelivered)))
}
