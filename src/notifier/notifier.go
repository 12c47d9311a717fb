package notifier

import (
	logger "github.com/sirupsen/logrus"
)

// Event names every domain change the store can emit.
type Event string

const (
	EventCreated   Event = "created"
	EventUpdated   Event = "updated"
	EventClosed    Event = "closed"
	EventRolledOut Event = "rolled_out"
	EventRolledIn  Event = "rolled_in"
	EventArchived  Event = "archived"
	EventDeleted   Event = "deleted"
)

// ChangeNotifier receives domain change events after every mutating
// operation. Calls are fire-and-forget: a notifier failure must never
// roll back the position or ledger mutation, so the interface has no
// error return. Implementations log their own failures.
type ChangeNotifier interface {
	Emit(event Event, payload interface{})
}

// LogNotifier writes events to the structured log. The default sink when
// no websocket clients are listening.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Emit(event Event, payload interface{}) {
	logger.WithFields(map[string]interface{}{
		"component": "notifier",
		"event":     string(event),
	}).Info("Position change event")
}

// Multi fans one event out to several notifiers.
type Multi []ChangeNotifier

func (m Multi) Emit(event Event, payload interface{}) {
	for _, n := range m {
		n.Emit(event, payload)
	}
}
