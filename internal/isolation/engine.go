package isolation

import (
	"context"
	"fmt"
	"net"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robgonnella/aegis/internal/config"
	"github.com/robgonnella/aegis/internal/device"
	"github.com/robgonnella/aegis/internal/event"
	"github.com/robgonnella/aegis/internal/exception"
	"github.com/robgonnella/aegis/internal/link"
	"github.com/robgonnella/aegis/internal/logger"
)

// GatewayFunc returns the local gateway address
type GatewayFunc func() net.IP

type entry struct {
	target net.IP
	live   atomic.Bool
	stop   chan struct{}
	done   chan struct{}
	prev   *entry
	status Status
	mux    sync.Mutex
}

func (e *entry) snapshot() Status {
	e.mux.Lock()
	defer e.mux.Unlock()

	return e.status
}

func (e *entry) update(fn func(s *Status)) Status {
	e.mux.Lock()
	defer e.mux.Unlock()

	fn(&e.status)

	return e.status
}

// Engine isolates targets by continuously poisoning the arp caches of the
// target and the gateway. One task runs per live target.
type Engine struct {
	open           link.Opener
	cache          link.NeighborCache
	gateway        GatewayFunc
	self           net.IP
	store          device.Service
	events         event.Manager
	interval       time.Duration
	restoreCount   int
	resolveTimeout time.Duration
	entries        map[string]*entry
	mux            sync.Mutex
	log            logger.Logger
}

// NewEngine returns a new instance of Engine. store and events may be nil.
func NewEngine(
	conf config.Isolation,
	self net.IP,
	gateway GatewayFunc,
	open link.Opener,
	cache link.NeighborCache,
	store device.Service,
	events event.Manager,
) *Engine {
	return &Engine{
		open:           open,
		cache:          cache,
		gateway:        gateway,
		self:           self,
		store:          store,
		events:         events,
		interval:       conf.Interval,
		restoreCount:   conf.RestoreCount,
		resolveTimeout: conf.ResolveTimeout,
		entries:        map[string]*entry{},
		log:            logger.New(),
	}
}

// Start begins isolating ip and returns immediately. Starting a target
// that is already live is a no-op. The host itself and the gateway are
// refused with ErrProtectedTarget.
func (e *Engine) Start(ip string) (Status, error) {
	target := net.ParseIP(ip).To4()

	if target == nil {
		return Status{}, fmt.Errorf("%w: %s", exception.ErrInvalidAddress, ip)
	}

	if e.self != nil && target.Equal(e.self) {
		return Status{}, fmt.Errorf("%w: %s is this host", exception.ErrProtectedTarget, ip)
	}

	gw := e.gateway()

	if gw == nil {
		return Status{}, fmt.Errorf("%w: unable to determine gateway", exception.ErrLinkUnavailable)
	}

	if target.Equal(gw) {
		return Status{}, fmt.Errorf("%w: %s is the gateway", exception.ErrProtectedTarget, ip)
	}

	key := target.String()

	e.mux.Lock()
	defer e.mux.Unlock()

	existing, ok := e.entries[key]

	if ok && existing.live.Load() {
		return existing.snapshot(), nil
	}

	now := time.Now()

	ent := &entry{
		target: target,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		prev:   existing,
		status: Status{
			Target:    key,
			State:     StateResolving,
			GatewayIP: gw.String(),
			StartedAt: &now,
		},
	}

	ent.live.Store(true)

	e.entries[key] = ent

	go e.run(ent, gw)

	status := ent.snapshot()

	e.send(status)

	return status, nil
}

// Stop asks the task isolating ip to restore the network and exit. It is
// a no-op for targets that are not live and never creates an entry.
func (e *Engine) Stop(ip string) Status {
	e.mux.Lock()
	ent, ok := e.entries[normalize(ip)]
	e.mux.Unlock()

	if !ok {
		return Status{Target: ip, State: StateInactive}
	}

	if ent.live.CompareAndSwap(true, false) {
		close(ent.stop)
	}

	return ent.snapshot()
}

// StopAll stops every live target and returns the addresses stopped
func (e *Engine) StopAll() []string {
	stopped := []string{}

	for _, ip := range e.Active() {
		e.Stop(ip)
		stopped = append(stopped, ip)
	}

	return stopped
}

// Status returns the isolation status of ip
func (e *Engine) Status(ip string) Status {
	e.mux.Lock()
	ent, ok := e.entries[normalize(ip)]
	e.mux.Unlock()

	if !ok {
		return Status{Target: ip, State: StateInactive}
	}

	return ent.snapshot()
}

// Active returns the sorted addresses of every live target
func (e *Engine) Active() []string {
	e.mux.Lock()
	defer e.mux.Unlock()

	active := []string{}

	for ip, ent := range e.entries {
		if ent.live.Load() {
			active = append(active, ip)
		}
	}

	sort.Strings(active)

	return active
}

// Done returns a channel closed once the task for ip has exited. The
// channel is already closed when ip has no task.
func (e *Engine) Done(ip string) <-chan struct{} {
	e.mux.Lock()
	ent, ok := e.entries[normalize(ip)]
	e.mux.Unlock()

	if !ok {
		done := make(chan struct{})
		close(done)
		return done
	}

	return ent.done
}

func (e *Engine) run(ent *entry, gw net.IP) {
	defer close(ent.done)

	if ent.prev != nil {
		// the previous task may still be restoring
		<-ent.prev.done
		ent.prev = nil
	}

	l, err := e.open()

	if err != nil {
		e.fail(ent, err)
		return
	}

	defer l.Close()

	ctx := context.Background()

	targetMAC, err := link.Lookup(ctx, l, e.cache, ent.target, e.resolveTimeout)

	if err != nil {
		e.fail(ent, fmt.Errorf("%w: %s", exception.ErrTargetOffline, ent.target.String()))
		return
	}

	gatewayMAC, err := link.Lookup(ctx, l, e.cache, gw, e.resolveTimeout)

	if err != nil {
		e.log.Warn().Err(err).Str("gateway", gw.String()).Msg("gateway unresolved, isolating target side only")
		gatewayMAC = nil
	}

	status := ent.update(func(s *Status) {
		s.State = StateActive
		s.TargetMAC = targetMAC.String()

		if gatewayMAC != nil {
			s.GatewayMAC = gatewayMAC.String()
		}
	})

	e.log.Info().
		Str("target", status.Target).
		Str("targetMAC", status.TargetMAC).
		Str("gateway", status.GatewayIP).
		Msg("isolation active")

	e.setBlocked(status.TargetMAC, true)
	e.send(status)

	for ent.live.Load() {
		e.poison(l, ent.target, targetMAC, gw, gatewayMAC)

		select {
		case <-ent.stop:
		case <-time.After(e.interval):
		}
	}

	status = ent.update(func(s *Status) {
		s.State = StateStopping
	})

	e.send(status)

	genuine, err := link.Lookup(ctx, l, e.cache, gw, e.resolveTimeout)

	if err != nil {
		e.log.Warn().Err(err).Str("gateway", gw.String()).Msg("failed to refresh gateway address for restore")
		genuine = gatewayMAC
	}

	e.restore(l, ent.target, targetMAC, gw, genuine)

	status = ent.update(func(s *Status) {
		s.State = StateInactive
	})

	e.log.Info().Str("target", status.Target).Msg("isolation stopped, network restored")

	e.setBlocked(status.TargetMAC, false)
	e.send(status)
}

// poison tells the target we are the gateway and the gateway we are the
// target. Both frames are unicast.
func (e *Engine) poison(l link.Link, target net.IP, targetMAC net.HardwareAddr, gw net.IP, gatewayMAC net.HardwareAddr) {
	if err := link.Reply(l, gw, l.HardwareAddr(), target, targetMAC); err != nil {
		e.log.Debug().Err(err).Str("target", target.String()).Msg("failed to send spoofed reply to target")
	}

	if gatewayMAC == nil {
		return
	}

	if err := link.Reply(l, target, l.HardwareAddr(), gw, gatewayMAC); err != nil {
		e.log.Debug().Err(err).Str("gateway", gw.String()).Msg("failed to send spoofed reply to gateway")
	}
}

// restore sends the genuine mappings to both parties
func (e *Engine) restore(l link.Link, target net.IP, targetMAC net.HardwareAddr, gw net.IP, gatewayMAC net.HardwareAddr) {
	gap := e.interval / 10

	for i := 0; i < e.restoreCount; i++ {
		if gatewayMAC != nil {
			if err := link.Reply(l, gw, gatewayMAC, target, targetMAC); err != nil {
				e.log.Debug().Err(err).Str("target", target.String()).Msg("failed to send restore to target")
			}

			if err := link.Reply(l, target, targetMAC, gw, gatewayMAC); err != nil {
				e.log.Debug().Err(err).Str("gateway", gw.String()).Msg("failed to send restore to gateway")
			}
		}

		if i < e.restoreCount-1 {
			time.Sleep(gap)
		}
	}
}

func (e *Engine) fail(ent *entry, err error) {
	ent.live.Store(false)

	status := ent.update(func(s *Status) {
		s.State = StateInactive
		s.LastError = err.Error()
	})

	e.log.Error().Err(err).Str("target", status.Target).Msg("isolation failed to start")

	e.send(status)
}

func (e *Engine) setBlocked(mac string, blocked bool) {
	if e.store == nil {
		return
	}

	if err := e.store.SetBlocked(mac, blocked); err != nil {
		e.log.Error().Err(err).Str("mac", mac).Msg("failed to record blocked state")
	}
}

func (e *Engine) send(status Status) {
	if e.events == nil {
		return
	}

	e.events.Send(event.Event{
		Type:    event.IsolationEventType,
		Payload: status,
	})
}

func normalize(ip string) string {
	parsed := net.ParseIP(ip).To4()

	if parsed == nil {
		return ip
	}

	return parsed.String()
}
