package probe

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/Ullaakut/nmap/v3"
	"github.com/robgonnella/aegis/internal/logger"
)

// NmapProber checks catalog ports with an nmap connect scan. When nmap is
// missing or fails the fallback prober is used instead.
type NmapProber struct {
	catalog  Catalog
	timeout  time.Duration
	fallback Prober
	log      logger.Logger
}

// NewNmapProber returns a new instance of NmapProber
func NewNmapProber(catalog Catalog, timeout time.Duration, fallback Prober) *NmapProber {
	return &NmapProber{
		catalog:  catalog,
		timeout:  timeout,
		fallback: fallback,
		log:      logger.New(),
	}
}

// Probe runs a single nmap scan against ip
func (p *NmapProber) Probe(ctx context.Context, ip string) (*Result, error) {
	ports := []string{}

	for _, port := range p.catalog.Ports() {
		ports = append(ports, strconv.Itoa(port))
	}

	// nmap's own host timeout bounds the scan, our context bounds the process
	scanCtx, cancel := context.WithTimeout(ctx, p.timeout*time.Duration(len(ports))+5*time.Second)
	defer cancel()

	scanner, err := nmap.NewScanner(
		scanCtx,
		nmap.WithTargets(ip),
		nmap.WithPorts(strings.Join(ports, ",")),
		nmap.WithConnectScan(),
		nmap.WithSkipHostDiscovery(),
		nmap.WithTimingTemplate(nmap.TimingAggressive),
	)

	if err != nil {
		return p.fallbackProbe(ctx, ip, err)
	}

	result, warnings, err := scanner.Run()

	if warnings != nil && len(*warnings) > 0 {
		fields := map[string]interface{}{}

		for i, warning := range *warnings {
			fields[strconv.Itoa(i)] = warning
		}

		p.log.Warn().
			Fields(fields).
			Str("ip", ip).
			Msg("encountered nmap warnings")
	}

	if err != nil {
		return p.fallbackProbe(ctx, ip, err)
	}

	open := []int{}

	for _, host := range result.Hosts {
		for _, port := range host.Ports {
			if port.Status() == nmap.Open {
				open = append(open, int(port.ID))
			}
		}
	}

	return p.catalog.NewResult(open), nil
}

func (p *NmapProber) fallbackProbe(ctx context.Context, ip string, cause error) (*Result, error) {
	if p.fallback == nil {
		return nil, cause
	}

	p.log.Warn().Err(cause).Str("ip", ip).Msg("nmap probe failed, using fallback prober")

	return p.fallback.Probe(ctx, ip)
}
