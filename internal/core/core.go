package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/robgonnella/aegis/internal/activity"
	"github.com/robgonnella/aegis/internal/classify"
	"github.com/robgonnella/aegis/internal/config"
	"github.com/robgonnella/aegis/internal/device"
	"github.com/robgonnella/aegis/internal/event"
	"github.com/robgonnella/aegis/internal/exception"
	"github.com/robgonnella/aegis/internal/isolation"
	"github.com/robgonnella/aegis/internal/logger"
	"github.com/robgonnella/aegis/internal/scan"
	"github.com/robgonnella/aegis/internal/util"
)

// Core represents our core data structure. Every trigger returns
// immediately and hands work to a background task.
type Core struct {
	ctx           context.Context
	cancel        context.CancelFunc
	conf          config.Config
	networkInfo   *util.NetworkInfo
	deviceService device.Service
	eventManager  event.Manager
	orchestrator  *scan.Orchestrator
	scheduler     *scan.Scheduler
	isolation     *isolation.Engine
	activity      *activity.Recorder
	monitors      sync.WaitGroup
	log           logger.Logger
}

// New returns new core module for given configuration
func New(
	ctx context.Context,
	conf config.Config,
	networkInfo *util.NetworkInfo,
	deviceService device.Service,
	eventManager event.Manager,
	orchestrator *scan.Orchestrator,
	scheduler *scan.Scheduler,
	engine *isolation.Engine,
	recorder *activity.Recorder,
) *Core {
	ctx, cancel := context.WithCancel(ctx)

	return &Core{
		ctx:           ctx,
		cancel:        cancel,
		conf:          conf,
		networkInfo:   networkInfo,
		deviceService: deviceService,
		eventManager:  eventManager,
		orchestrator:  orchestrator,
		scheduler:     scheduler,
		isolation:     engine,
		activity:      recorder,
		log:           logger.New(),
	}
}

// Conf returns the active configuration
func (c *Core) Conf() config.Config {
	return c.conf
}

// NetworkInfo returns the network this core operates on
func (c *Core) NetworkInfo() *util.NetworkInfo {
	return c.networkInfo
}

// Scan starts a scan pass in the background
func (c *Core) Scan() (scan.Status, error) {
	return c.orchestrator.Start(c.ctx)
}

// ForceScan clears every stored device then starts a scan pass in the
// background
func (c *Core) ForceScan() (scan.Status, error) {
	return c.orchestrator.Start(c.ctx, scan.WithClear())
}

// ScanNow runs a scan pass and waits for it to complete
func (c *Core) ScanNow(force bool) (scan.Status, error) {
	opts := []scan.Option{}

	if force {
		opts = append(opts, scan.WithClear())
	}

	return c.orchestrator.Run(c.ctx, opts...)
}

// ScanStatus returns the current scan status
func (c *Core) ScanStatus() scan.Status {
	return c.orchestrator.Status()
}

// StartAutoScan enables periodic scanning. A non-positive interval uses
// the configured one.
func (c *Core) StartAutoScan(interval time.Duration) bool {
	if !c.scheduler.Start(interval) {
		return false
	}

	c.record(activity.Info, fmt.Sprintf(
		"Automatic scanning enabled (every %s)",
		c.scheduler.Status().Interval,
	))

	return true
}

// StopAutoScan disables periodic scanning
func (c *Core) StopAutoScan() bool {
	if !c.scheduler.Stop() {
		return false
	}

	c.record(activity.Warning, "Automatic scanning disabled")

	return true
}

// AutoScanStatus returns the periodic scanner state
func (c *Core) AutoScanStatus() scan.SchedulerStatus {
	return c.scheduler.Status()
}

// SetAutoScanInterval records a new interval. Returns false when auto scan
// is running, in which case the interval applies after a restart.
func (c *Core) SetAutoScanInterval(interval time.Duration) bool {
	return c.scheduler.SetInterval(interval)
}

// resolveTarget accepts an ip or a hardware address of a stored device
func (c *Core) resolveTarget(target string) (string, error) {
	if ip := net.ParseIP(target); ip != nil {
		return ip.String(), nil
	}

	if _, err := net.ParseMAC(target); err != nil {
		return "", fmt.Errorf("%w: %s", exception.ErrInvalidAddress, target)
	}

	d, err := c.deviceService.Get(target)

	if err != nil {
		return "", err
	}

	return d.IP, nil
}

// Block starts isolating the device with the given ip or hardware address
func (c *Core) Block(target string) (isolation.Status, error) {
	ip, err := c.resolveTarget(target)

	if err != nil {
		return isolation.Status{}, err
	}

	return c.isolation.Start(ip)
}

// Unblock stops isolating the device with the given ip or hardware address
func (c *Core) Unblock(target string) (isolation.Status, error) {
	ip, err := c.resolveTarget(target)

	if err != nil {
		return isolation.Status{}, err
	}

	return c.isolation.Stop(ip), nil
}

// BlockStatus returns the isolation status of an ip
func (c *Core) BlockStatus(ip string) isolation.Status {
	return c.isolation.Status(ip)
}

// BlockDone returns a channel closed once isolation of ip has fully
// stopped and the network was restored
func (c *Core) BlockDone(ip string) <-chan struct{} {
	return c.isolation.Done(ip)
}

// Blocked returns every address currently isolated
func (c *Core) Blocked() []string {
	return c.isolation.Active()
}

// BlockAll isolates every known device except this host and the gateway
// and returns the addresses started
func (c *Core) BlockAll() ([]string, error) {
	devices, err := c.deviceService.ListAll()

	if err != nil {
		return nil, err
	}

	started := []string{}

	var result *multierror.Error

	for _, d := range devices {
		_, err := c.isolation.Start(d.IP)

		if errors.Is(err, exception.ErrProtectedTarget) {
			continue
		}

		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", d.IP, err))
			continue
		}

		started = append(started, d.IP)
	}

	c.log.Warn().Strs("targets", started).Msg("blocking all devices")

	return started, result.ErrorOrNil()
}

// UnblockAll stops every isolation and returns the addresses stopped
func (c *Core) UnblockAll() []string {
	return c.isolation.StopAll()
}

// Devices returns every stored device, most recently seen first
func (c *Core) Devices() ([]*device.Device, error) {
	return c.deviceService.ListAll()
}

// SetNickname sets the user supplied label of a device
func (c *Core) SetNickname(mac, nickname string) (*device.Device, error) {
	d, err := c.deviceService.SetNickname(mac, nickname)

	if err != nil {
		return nil, err
	}

	c.record(activity.Info, fmt.Sprintf("Label set for device %s: %q", d.MAC, nickname))

	return d, nil
}

// ClearDevices removes every stored device
func (c *Core) ClearDevices() error {
	if err := c.deviceService.ClearAll(); err != nil {
		return err
	}

	c.record(activity.Warning, "Cleared all stored devices")

	return nil
}

// RecentLogs returns up to limit activity log entries, newest first
func (c *Core) RecentLogs(limit int) ([]*activity.Entry, error) {
	if c.activity == nil {
		return []*activity.Entry{}, nil
	}

	return c.activity.Recent(limit)
}

func (c *Core) record(level activity.Level, message string) {
	if c.activity != nil {
		c.activity.Record(level, message)
	}
}

// Train builds a classifier model from stored devices and writes it to
// the configured model file
func (c *Core) Train() (*classify.Model, error) {
	devices, err := c.deviceService.ListAll()

	if err != nil {
		return nil, err
	}

	model, err := classify.Train(devices)

	if err != nil {
		return nil, err
	}

	if c.conf.Classifier.ModelFile == "" {
		return model, nil
	}

	if err := classify.SaveModel(c.conf.Classifier.ModelFile, model); err != nil {
		return nil, err
	}

	c.log.Info().
		Int("samples", model.Samples).
		Int("prefixes", len(model.Prefixes)).
		Str("file", c.conf.Classifier.ModelFile).
		Msg("classifier model trained")

	return model, nil
}

// RegisterEventListener registers a channel for events of a type
func (c *Core) RegisterEventListener(eventType event.EventType, channel chan event.Event) int {
	return c.eventManager.RegisterListener(eventType, channel)
}

// RemoveEventListener removes a previously registered listener
func (c *Core) RemoveEventListener(id int) {
	c.eventManager.RemoveListener(id)
}

// Close stops auto scanning, restores every isolated target and waits
// for restoration to finish
func (c *Core) Close() {
	c.scheduler.Stop()

	for _, ip := range c.isolation.StopAll() {
		<-c.isolation.Done(ip)
	}

	c.cancel()
	c.monitors.Wait()
}
