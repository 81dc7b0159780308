package alert

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/robgonnella/aegis/internal/device"
	"github.com/robgonnella/aegis/internal/event"
	"github.com/robgonnella/aegis/internal/logger"
)

// LogNotifier writes alerts to the application log
type LogNotifier struct {
	log logger.Logger
}

// NewLogNotifier returns a new instance of LogNotifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: logger.New()}
}

// Notify implements Notifier
func (n *LogNotifier) Notify(ctx context.Context, d *device.Device) error {
	n.log.Warn().
		Str("level", Level(d.RiskScore)).
		Str("ip", d.IP).
		Str("mac", d.MAC).
		Str("name", d.DisplayName).
		Int("risk", d.RiskScore).
		Str("ports", d.PortSummary).
		Msg("risky device detected")

	return nil
}

// EventNotifier publishes alerts to event listeners such as the ui
type EventNotifier struct {
	events event.Manager
}

// NewEventNotifier returns a new instance of EventNotifier
func NewEventNotifier(events event.Manager) *EventNotifier {
	return &EventNotifier{events: events}
}

// Notify implements Notifier
func (n *EventNotifier) Notify(ctx context.Context, d *device.Device) error {
	n.events.Send(event.Event{
		Type:    event.AlertEventType,
		Payload: d,
	})

	return nil
}

// Dedup notifies at most once per address for the life of the process.
// An address is only marked after a successful delivery.
type Dedup struct {
	next Notifier
	seen map[string]struct{}
	mux  sync.Mutex
}

// NewDedup wraps next with per address de-duplication
func NewDedup(next Notifier) *Dedup {
	return &Dedup{
		next: next,
		seen: map[string]struct{}{},
	}
}

// Notify implements Notifier
func (n *Dedup) Notify(ctx context.Context, d *device.Device) error {
	n.mux.Lock()
	_, ok := n.seen[d.IP]
	n.mux.Unlock()

	if ok {
		return nil
	}

	if err := n.next.Notify(ctx, d); err != nil {
		return err
	}

	n.mux.Lock()
	n.seen[d.IP] = struct{}{}
	n.mux.Unlock()

	return nil
}

// Multi fans an alert out to several notifiers
type Multi struct {
	notifiers []Notifier
}

// NewMulti returns a new instance of Multi
func NewMulti(notifiers ...Notifier) *Multi {
	return &Multi{notifiers: notifiers}
}

// Notify calls every notifier and returns their combined errors
func (n *Multi) Notify(ctx context.Context, d *device.Device) error {
	var result *multierror.Error

	for _, notifier := range n.notifiers {
		if err := notifier.Notify(ctx, d); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}
