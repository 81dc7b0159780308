package event

// EventType identifies the kind of event being sent
type EventType string

const (
	// DeviceUpdateEventType payload is *device.Device
	DeviceUpdateEventType EventType = "device-update"
	// ScanStatusEventType payload is scan.Status
	ScanStatusEventType EventType = "scan-status"
	// IsolationEventType payload is isolation.Status
	IsolationEventType EventType = "isolation"
	// AlertEventType payload is *device.Device
	AlertEventType EventType = "alert"
	// ErrorEventType payload is error
	ErrorEventType EventType = "error"
	// FatalErrorEventType payload is error
	FatalErrorEventType EventType = "fatal-error"
)

// Event data structure representing any event we may want to react to
type Event struct {
	Type    EventType
	Payload any
}
