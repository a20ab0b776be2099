//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"sms-relay/domain/event"
)

// EventSink consumes events pushed by the fan-out. Implementations must not
// block longer than the context allows; a slow sink only loses its own events.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// Session is one live connection handle. Several sessions may carry the same
// identity (multi-device); SessionID disambiguates them in the registry.
type Session interface {
	EventSink
	SessionID() string
	Identity() string
}

type IRegistry interface {
	Subscribe(topic string, s Session)
	Unsubscribe(topic string, s Session)
	DropConnection(s Session)
	DropTopic(topic string)
	SubscribersOf(topic string) []Session
}

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
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
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
