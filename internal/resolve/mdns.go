package resolve

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/robgonnella/aegis/internal/logger"
)

// BrowseFunc browses one service type, sending entries until ctx is done
type BrowseFunc func(ctx context.Context, service string, entries chan *zeroconf.ServiceEntry) error

// serviceHints maps advertised service types to device categories
var serviceHints = map[string]string{
	"_googlecast._tcp":      "media",
	"_airplay._tcp":         "media",
	"_raop._tcp":            "media",
	"_spotify-connect._tcp": "media",
	"_printer._tcp":         "printer",
	"_ipp._tcp":             "printer",
	"_pdl-datastream._tcp":  "printer",
	"_hap._tcp":             "iot",
	"_apple-mobdev2._tcp":   "mobile",
	"_workstation._tcp":     "laptop",
	"_smb._tcp":             "laptop",
}

// HintForService returns the device category implied by an mdns service
func HintForService(service string) string {
	return serviceHints[strings.TrimSuffix(service, ".")]
}

// MDNSBrowser answers name lookups from a snapshot of mdns advertisements.
// One snapshot is shared by every lookup until it is older than maxAge.
type MDNSBrowser struct {
	services []string
	window   time.Duration
	maxAge   time.Duration
	browse   BrowseFunc
	snapshot map[string]Identity
	taken    time.Time
	mux      sync.Mutex
	log      logger.Logger
}

// NewMDNSBrowser returns a browser backed by a zeroconf resolver
func NewMDNSBrowser(services []string, window time.Duration) *MDNSBrowser {
	return &MDNSBrowser{
		services: services,
		window:   window,
		maxAge:   time.Minute,
		browse:   zeroconfBrowse,
		snapshot: map[string]Identity{},
		log:      logger.New(),
	}
}

// WithBrowseFunc replaces the function used to browse the network
func (b *MDNSBrowser) WithBrowseFunc(fn BrowseFunc) *MDNSBrowser {
	b.browse = fn
	return b
}

func zeroconfBrowse(ctx context.Context, service string, entries chan *zeroconf.ServiceEntry) error {
	resolver, err := zeroconf.NewResolver(nil)

	if err != nil {
		return err
	}

	return resolver.Browse(ctx, service, "local.", entries)
}

// Source name of this source
func (b *MDNSBrowser) Source() string {
	return "mdns"
}

// Lookup returns the advertised identity for ip
func (b *MDNSBrowser) Lookup(ctx context.Context, ip string) (Identity, error) {
	b.mux.Lock()
	defer b.mux.Unlock()

	if b.taken.IsZero() || time.Since(b.taken) > b.maxAge {
		b.snapshot = b.refresh(ctx)
		b.taken = time.Now()
	}

	id, ok := b.snapshot[ip]

	if !ok {
		return Identity{}, errNoName
	}

	return id, nil
}

func (b *MDNSBrowser) refresh(ctx context.Context) map[string]Identity {
	ctx, cancel := context.WithTimeout(ctx, b.window)
	defer cancel()

	snapshot := map[string]Identity{}
	mux := sync.Mutex{}
	wg := sync.WaitGroup{}

	for _, service := range b.services {
		entries := make(chan *zeroconf.ServiceEntry)

		wg.Add(1)

		go func(results <-chan *zeroconf.ServiceEntry) {
			defer wg.Done()

			for {
				select {
				case <-ctx.Done():
					return
				case entry, ok := <-results:
					if !ok {
						return
					}

					mux.Lock()
					addEntry(snapshot, entry)
					mux.Unlock()
				}
			}
		}(entries)

		if err := b.browse(ctx, service, entries); err != nil {
			b.log.Debug().Err(err).Str("service", service).Msg("mdns browse failed")
		}
	}

	<-ctx.Done()
	wg.Wait()

	b.log.Debug().Int("hosts", len(snapshot)).Msg("mdns snapshot refreshed")

	return snapshot
}

func addEntry(snapshot map[string]Identity, entry *zeroconf.ServiceEntry) {
	if entry == nil || len(entry.AddrIPv4) == 0 {
		return
	}

	name := entry.HostName

	if name == "" {
		name = entry.Instance
	}

	hint := HintForService(entry.Service)

	for _, addr := range entry.AddrIPv4 {
		ip := addr.String()
		current := snapshot[ip]

		if current.Name == "" {
			current.Name = name
		}

		if current.TypeHint == "" {
			current.TypeHint = hint
		}

		snapshot[ip] = current
	}
}
