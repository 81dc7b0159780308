package discovery

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/projectdiscovery/mapcidr"
	"github.com/robgonnella/aegis/internal/exception"
	"github.com/robgonnella/aegis/internal/link"
	"github.com/robgonnella/aegis/internal/logger"
)

// ARPScanner discovers hosts by broadcasting arp requests to every address
// in a block and collecting the replies
type ARPScanner struct {
	open    link.Opener
	timeout time.Duration
	retries int
	log     logger.Logger
}

// NewARPScanner returns a new instance of ARPScanner. Each attempt waits
// timeout for replies and unanswered addresses are retried up to retries
// more times.
func NewARPScanner(open link.Opener, timeout time.Duration, retries int) *ARPScanner {
	return &ARPScanner{
		open:    open,
		timeout: timeout,
		retries: retries,
		log:     logger.New(),
	}
}

// expands a cidr or single address into a list of ipv4 targets
func expandTargets(cidr string) ([]net.IP, error) {
	ipList := []string{cidr}

	if strings.Contains(cidr, "/") {
		ips, err := mapcidr.IPAddresses(cidr)

		if err != nil {
			return nil, err
		}

		ipList = ips
	}

	targets := []net.IP{}

	for _, s := range ipList {
		ip := net.ParseIP(s).To4()

		if ip == nil {
			return nil, fmt.Errorf("%w: %s", exception.ErrInvalidAddress, s)
		}

		targets = append(targets, ip)
	}

	return targets, nil
}

// Sweep returns every host in cidr that answered, deduplicated by mac and
// ordered by address. When the link cannot be opened the result is empty
// and the error is returned for the caller to record.
func (s *ARPScanner) Sweep(ctx context.Context, cidr string) ([]Result, error) {
	results := []Result{}

	targets, err := expandTargets(cidr)

	if err != nil {
		return results, err
	}

	l, err := s.open()

	if err != nil {
		return results, err
	}

	defer l.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	packets := l.Listen(ctx)

	pending := map[string]net.IP{}

	for _, ip := range targets {
		if ip.Equal(l.IP()) {
			continue
		}

		pending[ip.String()] = ip
	}

	s.log.Info().
		Str("cidr", cidr).
		Int("targets", len(pending)).
		Msg("starting arp sweep")

	found := map[string]Result{}

	for attempt := 0; attempt <= s.retries && len(pending) > 0; attempt++ {
		if attempt > 0 {
			s.log.Debug().
				Int("attempt", attempt+1).
				Int("unanswered", len(pending)).
				Msg("retrying unanswered addresses")
		}

		for _, ip := range pending {
			if err := link.Request(l, ip); err != nil {
				s.log.Warn().Err(err).Str("ip", ip.String()).Msg("failed to send arp request")
			}
		}

		if !s.collect(ctx, l, packets, pending, found) {
			break
		}
	}

	for _, r := range found {
		results = append(results, r)
	}

	sort.Slice(results, func(i, j int) bool {
		return bytes.Compare(results[i].IP.To16(), results[j].IP.To16()) < 0
	})

	s.log.Info().
		Str("cidr", cidr).
		Int("found", len(results)).
		Msg("arp sweep complete")

	return results, nil
}

// collect reads replies for one attempt window. It returns false when the
// sweep should stop early.
func (s *ARPScanner) collect(
	ctx context.Context,
	l link.Link,
	packets <-chan link.Packet,
	pending map[string]net.IP,
	found map[string]Result,
) bool {
	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	for len(pending) > 0 {
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			return true
		case pkt, ok := <-packets:
			if !ok {
				return false
			}

			if pkt.Operation != link.OpReply || bytes.Equal(pkt.SenderMAC, l.HardwareAddr()) {
				continue
			}

			key := pkt.SenderIP.String()

			ip, ok := pending[key]

			if !ok {
				continue
			}

			delete(pending, key)

			mac := pkt.SenderMAC.String()

			if _, seen := found[mac]; seen {
				continue
			}

			found[mac] = Result{IP: ip, MAC: pkt.SenderMAC}
		}
	}

	return true
}
