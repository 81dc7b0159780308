package alert

import (
	"context"

	"github.com/robgonnella/aegis/internal/device"
)

//go:generate mockgen -destination=../mock/alert/mock_alert.go -package=mock_alert . Notifier

// Notifier delivers a risk alert for a device
type Notifier interface {
	Notify(ctx context.Context, d *device.Device) error
}

// Alert levels
const (
	LevelCritical = "CRITICAL"
	LevelWarning  = "WARNING"
)

// Level returns the alert level for a risk score or an empty string when
// the score does not warrant an alert
func Level(risk int) string {
	switch {
	case risk >= 75:
		return LevelCritical
	case risk >= 40:
		return LevelWarning
	default:
		return ""
	}
}
