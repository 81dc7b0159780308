package enrich

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robgonnella/aegis/internal/alert"
	"github.com/robgonnella/aegis/internal/classify"
	"github.com/robgonnella/aegis/internal/device"
	"github.com/robgonnella/aegis/internal/discovery"
	"github.com/robgonnella/aegis/internal/logger"
	"github.com/robgonnella/aegis/internal/probe"
	"github.com/robgonnella/aegis/internal/resolve"
)

// Deps collaborators used to enrich and persist devices
type Deps struct {
	Vendors    resolve.VendorLookup
	Names      resolve.HostnameResolver
	OS         resolve.OSDetector
	Prober     probe.Prober
	Classifier classify.Classifier
	Store      device.Service
	Notifier   alert.Notifier
}

// Pipeline turns sweep results into persisted device records
type Pipeline struct {
	deps           Deps
	alertThreshold int
	workers        int
	log            logger.Logger
}

// NewPipeline returns a new instance of Pipeline. Devices scoring at or
// above alertThreshold are handed to the notifier after being persisted.
func NewPipeline(deps Deps, alertThreshold, workers int) *Pipeline {
	if workers < 1 {
		workers = 1
	}

	return &Pipeline{
		deps:           deps,
		alertThreshold: alertThreshold,
		workers:        workers,
		log:            logger.New(),
	}
}

// Enrich builds a device record for a single sweep result. Every step has
// a safe default so a record is always returned.
func (p *Pipeline) Enrich(ctx context.Context, r discovery.Result) *device.Device {
	ip := r.IP.String()
	mac := strings.ToLower(r.MAC.String())

	vendor := p.deps.Vendors.Lookup(ctx, mac)

	if vendor == "" {
		vendor = resolve.UnknownVendor
	}

	identity := p.deps.Names.Resolve(ctx, ip)

	fingerprint := p.deps.OS.Detect(ctx, ip)

	result, err := p.deps.Prober.Probe(ctx, ip)

	if err != nil || result == nil {
		p.log.Debug().Err(err).Str("ip", ip).Msg("port probe failed")
		result = &probe.Result{OpenPorts: []int{}}
	}

	risk := result.RiskScore

	if risk < 0 {
		risk = 0
	}

	if risk > probe.MaxRiskScore {
		risk = probe.MaxRiskScore
	}

	features := classify.Features{
		MAC:       mac,
		IP:        ip,
		Vendor:    vendor,
		Hostname:  identity.Name,
		TypeHint:  identity.TypeHint,
		OpenPorts: result.OpenPorts,
		RiskScore: risk,
	}

	features.OS = classify.RefineOS(features, fingerprint.OS)

	category := p.deps.Classifier.Classify(features)

	display, subLabel := classify.GenerateName(features, category)

	return &device.Device{
		MAC:         mac,
		IP:          ip,
		Vendor:      vendor,
		Hostname:    identity.Name,
		DisplayName: display,
		SubLabel:    subLabel,
		OS:          features.OS,
		Type:        string(category),
		OpenPorts:   result.OpenPorts,
		PortSummary: result.Summary(),
		Latency:     fingerprint.Latency,
		RiskScore:   risk,
		LastSeen:    time.Now(),
	}
}

// Process enriches and persists every result using a bounded pool of
// workers and returns how many records were stored
func (p *Pipeline) Process(ctx context.Context, results []discovery.Result) int {
	var stored int32

	sem := make(chan struct{}, p.workers)
	wg := sync.WaitGroup{}

	for _, r := range results {
		if r.IP == nil || len(r.MAC) == 0 {
			p.log.Warn().Str("ip", r.IP.String()).Msg("skipping malformed sweep result")
			continue
		}

		sem <- struct{}{}
		wg.Add(1)

		go func(r discovery.Result) {
			defer func() {
				if rec := recover(); rec != nil {
					p.log.Error().
						Str("ip", r.IP.String()).
						Str("panic", fmt.Sprint(rec)).
						Msg("enrichment worker recovered, device not stored")
				}

				<-sem
				wg.Done()
			}()

			if p.persist(ctx, r) {
				atomic.AddInt32(&stored, 1)
			}
		}(r)
	}

	wg.Wait()

	return int(stored)
}

func (p *Pipeline) persist(ctx context.Context, r discovery.Result) bool {
	d := p.Enrich(ctx, r)

	saved, err := p.deps.Store.Upsert(d)

	if err != nil {
		p.log.Error().Err(err).Str("ip", d.IP).Str("mac", d.MAC).Msg("failed to save device")
		return false
	}

	p.log.Info().
		Str("ip", saved.IP).
		Str("mac", saved.MAC).
		Str("name", saved.DisplayName).
		Int("risk", saved.RiskScore).
		Msg("device enriched")

	if p.deps.Notifier != nil && p.alertThreshold > 0 && saved.RiskScore >= p.alertThreshold {
		if err := p.deps.Notifier.Notify(ctx, saved); err != nil {
			p.log.Error().Err(err).Str("ip", saved.IP).Msg("failed to send alert")
		}
	}

	return true
}
