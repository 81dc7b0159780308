package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robgonnella/aegis/internal/device"
	"github.com/robgonnella/aegis/internal/discovery"
	"github.com/robgonnella/aegis/internal/event"
	"github.com/robgonnella/aegis/internal/exception"
	"github.com/robgonnella/aegis/internal/logger"
)

// Orchestrator runs sweep and enrichment passes, one at a time
type Orchestrator struct {
	sweeper   discovery.Sweeper
	processor Processor
	store     device.Service
	events    event.Manager
	cidr      string
	status    Status
	mux       sync.Mutex
	log       logger.Logger
}

// NewOrchestrator returns a new instance of Orchestrator sweeping cidr
func NewOrchestrator(
	cidr string,
	sweeper discovery.Sweeper,
	processor Processor,
	store device.Service,
	events event.Manager,
) *Orchestrator {
	return &Orchestrator{
		sweeper:   sweeper,
		processor: processor,
		store:     store,
		events:    events,
		cidr:      cidr,
		log:       logger.New(),
	}
}

// Status returns a copy of the current status
func (o *Orchestrator) Status() Status {
	o.mux.Lock()
	defer o.mux.Unlock()

	return o.status
}

// Start begins a pass in the background and returns immediately. If a
// pass is already running ErrScanInProgress is returned with the current
// status.
func (o *Orchestrator) Start(ctx context.Context, opts ...Option) (Status, error) {
	status, ok := o.begin()

	if !ok {
		return status, exception.ErrScanInProgress
	}

	go o.pass(ctx, opts...)

	return status, nil
}

// Run performs a pass and returns once it completes
func (o *Orchestrator) Run(ctx context.Context, opts ...Option) (Status, error) {
	status, ok := o.begin()

	if !ok {
		return status, exception.ErrScanInProgress
	}

	err := o.pass(ctx, opts...)

	return o.Status(), err
}

func (o *Orchestrator) begin() (Status, bool) {
	o.mux.Lock()

	if o.status.Running {
		status := o.status
		o.mux.Unlock()
		return status, false
	}

	now := time.Now()

	o.status.Running = true
	o.status.ID = uuid.New().String()
	o.status.StartedAt = &now
	o.status.CompletedAt = nil
	o.status.LastError = ""

	status := o.status

	o.mux.Unlock()

	o.log.Info().Str("id", status.ID).Str("cidr", o.cidr).Msg("scan started")
	o.sendStatus(status)

	return status, true
}

func (o *Orchestrator) finish(count int, err error) {
	o.mux.Lock()

	now := time.Now()

	o.status.Running = false
	o.status.CompletedAt = &now
	o.status.DeviceCount = count

	if err != nil {
		o.status.LastError = err.Error()
	}

	status := o.status

	o.mux.Unlock()

	o.log.Info().
		Str("id", status.ID).
		Int("devices", count).
		Str("error", status.LastError).
		Msg("scan complete")

	o.sendStatus(status)
}

func (o *Orchestrator) pass(ctx context.Context, opts ...Option) (err error) {
	options := &passOptions{}

	for _, opt := range opts {
		opt(options)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scan pass panicked: %v", r)
			o.log.Error().Err(err).Msg("recovered scan pass")
			o.finish(0, err)
		}
	}()

	if options.clear {
		if err := o.store.ClearAll(); err != nil {
			o.log.Error().Err(err).Msg("failed to clear devices before scan")
		}
	}

	results, err := o.sweeper.Sweep(ctx, o.cidr)

	if err != nil {
		o.log.Error().Err(err).Msg("sweep failed")
		o.reportError(err)
		o.finish(0, err)
		return err
	}

	count := 0

	if len(results) > 0 {
		count = o.processor.Process(ctx, results)
	}

	o.finish(count, nil)

	return nil
}

func (o *Orchestrator) sendStatus(status Status) {
	if o.events == nil {
		return
	}

	o.events.Send(event.Event{
		Type:    event.ScanStatusEventType,
		Payload: status,
	})
}

// a link that cannot be opened fails every later pass too, so it is
// reported as fatal
func (o *Orchestrator) reportError(err error) {
	if o.events == nil || errors.Is(err, context.Canceled) {
		return
	}

	if errors.Is(err, exception.ErrLinkUnavailable) {
		o.events.ReportFatalError(err)
		return
	}

	o.events.ReportError(err)
}
