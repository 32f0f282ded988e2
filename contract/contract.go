//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"vitatrack/domain"
	"vitatrack/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging during supervision, avoiding manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink delivers events to one live connection.
// Consume must not block: delivery is best effort.
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

// ICoordinator is what the transport layer drives.
type ICoordinator interface {
	Connect(ctx context.Context, id domain.ConnectionID, sink EventSink)
	Handle(ctx context.Context, cmd domain.Command) error
	Disconnect(ctx context.Context, id domain.ConnectionID)
}
