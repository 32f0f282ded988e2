package workers

import (
	"context"
	"log/slog"
	"time"
)

// RoomSweeper is the subset of the coordinator the sweeper needs.
type RoomSweeper interface {
	SweepEmptyRooms() int
}

// RoomSweeperWorker periodically reclaims empty rooms.
// Correctness never depends on it; an unswept empty room behaves like a missing one.
type RoomSweeperWorker struct {
	log      *slog.Logger
	rooms    RoomSweeper
	interval time.Duration
}

func NewRoomSweeperWorker(log *slog.Logger, rooms RoomSweeper, interval time.Duration) *RoomSweeperWorker {
	return &RoomSweeperWorker{log: log, rooms: rooms, interval: interval}
}

func (w *RoomSweeperWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping room sweeper")
			return nil
		case <-ticker.C:
			if n := w.rooms.SweepEmptyRooms(); n > 0 {
				w.log.Debug("Empty rooms reclaimed", "count", n)
			}
		}
	}
}
