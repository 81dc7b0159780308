package scan

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robgonnella/aegis/internal/exception"
	"github.com/robgonnella/aegis/internal/logger"
)

// DefaultStep how often a waiting scheduler checks for a stop request
const DefaultStep = time.Second

// Scheduler runs scan passes periodically until stopped
type Scheduler struct {
	ctx      context.Context
	runner   Runner
	interval time.Duration
	step     time.Duration
	enabled  bool
	stop     chan struct{}
	done     chan struct{}
	mux      sync.Mutex
	log      logger.Logger
}

// NewScheduler returns a new instance of Scheduler
func NewScheduler(ctx context.Context, runner Runner, interval time.Duration) *Scheduler {
	return &Scheduler{
		ctx:      ctx,
		runner:   runner,
		interval: interval,
		step:     DefaultStep,
		log:      logger.New(),
	}
}

// WithStep sets how often the wait between passes checks for a stop
func (s *Scheduler) WithStep(step time.Duration) *Scheduler {
	s.step = step
	return s
}

// Start enables periodic scanning. A non-positive interval keeps the
// current one. Returns false without doing anything if already enabled.
func (s *Scheduler) Start(interval time.Duration) bool {
	s.mux.Lock()
	defer s.mux.Unlock()

	if s.enabled {
		return false
	}

	if interval > 0 {
		s.interval = interval
	}

	s.enabled = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.loop(s.interval, s.stop, s.done)

	s.log.Info().Str("interval", s.interval.String()).Msg("auto scan enabled")

	return true
}

// Stop disables periodic scanning. The loop exits within one step, or
// after the pass in progress completes. Returns false if not enabled.
func (s *Scheduler) Stop() bool {
	s.mux.Lock()
	defer s.mux.Unlock()

	if !s.enabled {
		return false
	}

	s.enabled = false
	close(s.stop)

	s.log.Info().Msg("auto scan disabled")

	return true
}

// Wait blocks until the most recently started loop has exited
func (s *Scheduler) Wait() {
	s.mux.Lock()
	done := s.done
	s.mux.Unlock()

	if done != nil {
		<-done
	}
}

// Status returns the scheduler state
func (s *Scheduler) Status() SchedulerStatus {
	s.mux.Lock()
	defer s.mux.Unlock()

	return SchedulerStatus{
		Enabled:  s.enabled,
		Interval: s.interval,
	}
}

// SetInterval records a new interval. A running loop keeps its current
// interval until restarted, in which case false is returned.
func (s *Scheduler) SetInterval(interval time.Duration) bool {
	s.mux.Lock()
	defer s.mux.Unlock()

	if interval > 0 {
		s.interval = interval
	}

	return !s.enabled
}

func (s *Scheduler) loop(interval time.Duration, stop, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return
		case <-s.ctx.Done():
			return
		default:
		}

		if _, err := s.runner.Run(s.ctx); err != nil {
			if errors.Is(err, exception.ErrScanInProgress) {
				s.log.Debug().Msg("skipping scheduled scan, one is already running")
			} else {
				s.log.Error().Err(err).Msg("scheduled scan failed")
			}
		}

		if !s.wait(interval, stop) {
			return
		}
	}
}

// wait sleeps in steps until interval has passed. Returns false if a stop
// was requested while waiting.
func (s *Scheduler) wait(interval time.Duration, stop chan struct{}) bool {
	ticker := time.NewTicker(s.step)
	defer ticker.Stop()

	var waited time.Duration

	for waited < interval {
		select {
		case <-stop:
			return false
		case <-s.ctx.Done():
			return false
		case <-ticker.C:
			waited += s.step
		}
	}

	return true
}
