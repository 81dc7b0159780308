package component

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rivo/tview"
	"github.com/robgonnella/aegis/internal/device"
	"github.com/robgonnella/aegis/internal/event"
	"github.com/robgonnella/aegis/internal/isolation"
	"github.com/robgonnella/aegis/internal/scan"
	"github.com/robgonnella/aegis/internal/ui/style"
)

// EventTable rolling log of the most recent events
type EventTable struct {
	table         *tview.Table
	columnHeaders []string
	count         uint
	maxEvents     uint
}

// NewEventTable returns a new instance of EventTable
func NewEventTable() *EventTable {
	columnHeaders := []string{
		"NO",
		"TIME",
		"EVENT TYPE",
		"DETAIL",
	}

	return &EventTable{
		table:         createTable("events", columnHeaders),
		columnHeaders: columnHeaders,
		count:         0,
		maxEvents:     100,
	}
}

// Primitive returns the root primitive for EventTable
func (t *EventTable) Primitive() tview.Primitive {
	return t.table
}

func describe(evt event.Event) (string, bool) {
	switch payload := evt.Payload.(type) {
	case *device.Device:
		if evt.Type == event.AlertEventType {
			return fmt.Sprintf("risky device %s (%s) risk %d", payload.DisplayName, payload.IP, payload.RiskScore), true
		}

		return fmt.Sprintf("%s (%s) %s", payload.DisplayName, payload.IP, payload.MAC), false
	case scan.Status:
		if payload.Running {
			return "scan " + payload.ID + " started", false
		}

		if payload.LastError != "" {
			return "scan " + payload.ID + " failed: " + payload.LastError, true
		}

		return fmt.Sprintf("scan %s found %d devices", payload.ID, payload.DeviceCount), false
	case isolation.Status:
		if payload.LastError != "" {
			return fmt.Sprintf("%s %s: %s", payload.Target, payload.State, payload.LastError), true
		}

		return fmt.Sprintf("%s %s", payload.Target, payload.State), false
	case error:
		return payload.Error(), true
	}

	return fmt.Sprint(evt.Payload), false
}

// UpdateTable appends an event dropping the oldest once full
func (t *EventTable) UpdateTable(evt event.Event) {
	t.count++

	detail, warn := describe(evt)

	row := []string{
		strconv.Itoa(int(t.count)),
		time.Now().Format(time.TimeOnly),
		string(evt.Type),
		detail,
	}

	color := style.ColorWhite

	if warn {
		color = style.ColorOrange
	}

	setRow(t.table, t.table.GetRowCount(), row, color)

	if t.count > t.maxEvents {
		t.table.RemoveRow(firstDataRow)
	}
}
