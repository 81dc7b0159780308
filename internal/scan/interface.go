package scan

import (
	"context"
	"time"

	"github.com/robgonnella/aegis/internal/discovery"
)

//go:generate mockgen -destination=../mock/scan/mock_scan.go -package=mock_scan . Processor,Runner

// Processor enriches and persists sweep results returning how many were
// stored
type Processor interface {
	Process(ctx context.Context, results []discovery.Result) int
}

// Runner runs a single synchronous scan pass
type Runner interface {
	Run(ctx context.Context, opts ...Option) (Status, error)
}

// Status snapshot of the orchestrator state
type Status struct {
	Running     bool
	ID          string
	StartedAt   *time.Time
	CompletedAt *time.Time
	DeviceCount int
	LastError   string
}

// SchedulerStatus snapshot of the periodic scheduler
type SchedulerStatus struct {
	Enabled  bool
	Interval time.Duration
}

type passOptions struct {
	clear bool
}

// Option modifies a single scan pass
type Option func(o *passOptions)

// WithClear removes every stored device before sweeping
func WithClear() Option {
	return func(o *passOptions) {
		o.clear = true
	}
}
