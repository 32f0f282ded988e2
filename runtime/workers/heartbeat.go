package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"vitatrack/observability"
)

// StatsSource reports the live signaling population.
type StatsSource interface {
	Snapshot() (connections, rooms, members int)
}

// HeartbeatWorker samples process health (RSS, CPU) into the metrics and logs
// a periodic summary of the signaling population.
type HeartbeatWorker struct {
	log      *slog.Logger
	metrics  *observability.Metrics
	source   StatsSource
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, metrics *observability.Metrics,
	source StatsSource, interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, metrics: metrics, source: source, interval: interval}
}

// Run returns an error when the process handle cannot be opened so the supervisor retries.
func (w *HeartbeatWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rss, cpu, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "error", err)
				continue
			}
			w.metrics.ProcessRSS.Set(float64(rss))
			w.metrics.ProcessCPU.Set(cpu)

			connections, rooms, members := w.source.Snapshot()
			w.log.Debug("Heartbeat",
				"connections", connections,
				"rooms", rooms,
				"members", members,
				"rss_bytes", rss,
				"cpu_percent", cpu)
		}
	}
}

func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
