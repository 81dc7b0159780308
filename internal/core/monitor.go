package core

import (
	"context"
	"errors"
	"time"

	"github.com/robgonnella/aegis/internal/device"
	"github.com/robgonnella/aegis/internal/event"
	"github.com/robgonnella/aegis/internal/isolation"
	"github.com/robgonnella/aegis/internal/scan"
)

const flushWindow = 50 * time.Millisecond

var monitoredEvents = []event.EventType{
	event.DeviceUpdateEventType,
	event.ScanStatusEventType,
	event.IsolationEventType,
	event.AlertEventType,
	event.ErrorEventType,
	event.FatalErrorEventType,
}

// StartMonitor logs every event and feeds the activity log until the core
// is closed. Close waits for pending events to be recorded.
func (c *Core) StartMonitor() {
	c.monitors.Add(1)

	go func() {
		defer c.monitors.Done()

		if err := c.monitor(); err != nil && !errors.Is(err, context.Canceled) {
			c.log.Error().Err(err).Msg("event monitor stopped")
		}
	}()
}

func (c *Core) monitor() error {
	evtReceiveChan := make(chan event.Event, 100)

	ids := []int{}

	for _, t := range monitoredEvents {
		ids = append(ids, c.eventManager.RegisterListener(t, evtReceiveChan))
	}

	defer func() {
		for _, id := range ids {
			c.eventManager.RemoveListener(id)
		}
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.flush(evtReceiveChan)
			return c.ctx.Err()
		case evt := <-evtReceiveChan:
			c.handleEvent(evt)
		}
	}
}

// flush handles events still arriving after close, such as the final
// restore of an isolated target
func (c *Core) flush(evtReceiveChan chan event.Event) {
	for {
		select {
		case evt := <-evtReceiveChan:
			c.handleEvent(evt)
		case <-time.After(flushWindow):
			return
		}
	}
}

func (c *Core) handleEvent(evt event.Event) {
	if c.activity != nil {
		c.activity.RecordEvent(evt)
	}

	switch payload := evt.Payload.(type) {
	case *device.Device:
		c.log.Debug().
			Str("type", string(evt.Type)).
			Str("ip", payload.IP).
			Str("mac", payload.MAC).
			Str("name", payload.DisplayName).
			Int("risk", payload.RiskScore).
			Msg("Event Received")
	case scan.Status:
		c.log.Debug().
			Str("type", string(evt.Type)).
			Str("id", payload.ID).
			Bool("running", payload.Running).
			Int("devices", payload.DeviceCount).
			Msg("Event Received")
	case isolation.Status:
		c.log.Debug().
			Str("type", string(evt.Type)).
			Str("target", payload.Target).
			Str("state", string(payload.State)).
			Str("error", payload.LastError).
			Msg("Event Received")
	case error:
		c.log.Error().Err(payload).Str("type", string(evt.Type)).Msg("Event Received")
	}
}
