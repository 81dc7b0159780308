package activity

import (
	"fmt"

	"github.com/robgonnella/aegis/internal/device"
	"github.com/robgonnella/aegis/internal/event"
	"github.com/robgonnella/aegis/internal/isolation"
	"github.com/robgonnella/aegis/internal/logger"
	"github.com/robgonnella/aegis/internal/scan"
)

// Recorder writes user actions and background outcomes to the activity
// log. A failed write is logged and never returned.
type Recorder struct {
	repo Repo
	log  logger.Logger
}

// NewRecorder returns a new instance of Recorder
func NewRecorder(repo Repo) *Recorder {
	return &Recorder{
		repo: repo,
		log:  logger.New(),
	}
}

// Record appends a single entry
func (r *Recorder) Record(level Level, message string) {
	if _, err := r.repo.Add(&Entry{Level: level, Message: message}); err != nil {
		r.log.Error().Err(err).Str("message", message).Msg("failed to record activity")
	}
}

// RecordEvent appends an entry for events worth keeping. Other events are
// ignored.
func (r *Recorder) RecordEvent(evt event.Event) {
	level, message, ok := Describe(evt)

	if !ok {
		return
	}

	r.Record(level, message)
}

// Recent returns up to limit entries, newest first
func (r *Recorder) Recent(limit int) ([]*Entry, error) {
	return r.repo.Recent(limit)
}

// Describe turns an event into an activity entry. Device updates,
// transitional isolation states and non-fatal errors are not recorded.
func Describe(evt event.Event) (Level, string, bool) {
	switch payload := evt.Payload.(type) {
	case scan.Status:
		switch {
		case payload.Running:
			return Info, "Network scan started", true
		case payload.LastError != "":
			return Danger, "Network scan failed: " + payload.LastError, true
		default:
			return Success, fmt.Sprintf("Network scan completed: %d devices found", payload.DeviceCount), true
		}
	case isolation.Status:
		switch {
		case payload.State == isolation.StateActive:
			return Warning, fmt.Sprintf("Blocked device %s (%s)", payload.Target, payload.TargetMAC), true
		case payload.State == isolation.StateInactive && payload.LastError != "":
			return Danger, fmt.Sprintf("Failed to block device %s: %s", payload.Target, payload.LastError), true
		case payload.State == isolation.StateInactive:
			return Success, fmt.Sprintf("Unblocked device %s", payload.Target), true
		}
	case *device.Device:
		if evt.Type == event.AlertEventType {
			return Warning, fmt.Sprintf(
				"Risky device %s (%s) scored %d",
				payload.DisplayName,
				payload.IP,
				payload.RiskScore,
			), true
		}
	case error:
		// plain errors repeat a failure already carried by a status
		if evt.Type == event.FatalErrorEventType {
			return Danger, "Fatal: " + payload.Error(), true
		}
	}

	return "", "", false
}
