// Package runtime holds the signaling state machine and its supervised background work.
// It tracks which connection is in which room and relays handshakes; it never
// inspects handshake payloads.
package runtime

import (
	"context"
	"log/slog"
	"time"

	"vitatrack/contract"
	"vitatrack/observability"
	"vitatrack/runtime/workers"
)

// Orchestrator wires the coordinator to its background workers and owns their lifecycle.
type Orchestrator struct {
	log               *slog.Logger
	supervisor        contract.ISupervisor
	coordinator       *Coordinator
	metrics           *observability.Metrics
	sweepInterval     time.Duration
	heartbeatInterval time.Duration
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, coordinator *Coordinator,
	metrics *observability.Metrics, sweepInterval, heartbeatInterval time.Duration) *Orchestrator {
	return &Orchestrator{
		log:               log,
		supervisor:        supervisor,
		coordinator:       coordinator,
		metrics:           metrics,
		sweepInterval:     sweepInterval,
		heartbeatInterval: heartbeatInterval,
	}
}

func (o *Orchestrator) Coordinator() *Coordinator {
	return o.coordinator
}

// Start registers the background workers and blocks until ctx is cancelled or Stop is called.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.supervisor.Add(
		workers.NewRoomSweeperWorker(o.log, o.coordinator, o.sweepInterval),
		workers.NewHeartbeatWorker(o.log, o.metrics, o.coordinator, o.heartbeatInterval),
	)
	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
	return nil
}

func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
