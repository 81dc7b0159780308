package resolve

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/robgonnella/aegis/internal/logger"
)

// LLMNRPort port hosts answer link-local multicast name resolution on
const LLMNRPort = "5355"

var errNoName = errors.New("no name found")

// CleanHostname strips trailing dots, mdns "@host" parts and domain
// suffixes so "galaxy-s24.lan." becomes "galaxy-s24"
func CleanHostname(name string) string {
	name = strings.TrimSpace(strings.TrimSuffix(name, "."))

	if idx := strings.Index(name, "@"); idx != -1 {
		name = name[:idx]
	}

	if idx := strings.Index(name, "."); idx != -1 {
		name = name[:idx]
	}

	return strings.TrimSpace(name)
}

// NameResolver walks an ordered list of sources and returns the first
// usable name. Source failures fall through to the next source.
type NameResolver struct {
	sources []NameSource
	log     logger.Logger
}

// NewNameResolver returns a new instance of NameResolver
func NewNameResolver(sources ...NameSource) *NameResolver {
	return &NameResolver{
		sources: sources,
		log:     logger.New(),
	}
}

// Resolve returns the best identity found. Names of two characters or
// fewer are treated as absent.
func (r *NameResolver) Resolve(ctx context.Context, ip string) Identity {
	result := Identity{}

	for _, source := range r.sources {
		id, err := source.Lookup(ctx, ip)

		if err != nil {
			r.log.Debug().Err(err).Str("ip", ip).Str("source", source.Source()).Msg("name lookup failed")
			continue
		}

		if result.TypeHint == "" {
			result.TypeHint = id.TypeHint
		}

		name := CleanHostname(id.Name)

		if len(name) > 2 {
			result.Name = name
			return result
		}
	}

	return result
}

// PTRSource resolves names with a reverse PTR query. The servers function
// decides who is asked, which lets the same code serve unicast dns and
// llmnr.
type PTRSource struct {
	name    string
	servers func(ip string) []string
	client  *dns.Client
}

// NewPTRSource returns a PTRSource asking the servers returned by servers
func NewPTRSource(name string, servers func(ip string) []string, timeout time.Duration) *PTRSource {
	return &PTRSource{
		name:    name,
		servers: servers,
		client:  &dns.Client{Net: "udp", Timeout: timeout},
	}
}

// NewReverseDNS returns a PTRSource that asks the system's configured
// nameservers
func NewReverseDNS(resolvConf string, timeout time.Duration) *PTRSource {
	servers := []string{}

	if conf, err := dns.ClientConfigFromFile(resolvConf); err == nil {
		for _, s := range conf.Servers {
			servers = append(servers, net.JoinHostPort(s, conf.Port))
		}
	}

	return NewPTRSource("reverse-dns", func(string) []string {
		return servers
	}, timeout)
}

// NewLLMNR returns a PTRSource that asks the host itself over llmnr
func NewLLMNR(timeout time.Duration) *PTRSource {
	return NewPTRSource("llmnr", func(ip string) []string {
		return []string{net.JoinHostPort(ip, LLMNRPort)}
	}, timeout)
}

// Source name of this source
func (s *PTRSource) Source() string {
	return s.name
}

// Lookup sends a PTR query for ip to each server until one answers
func (s *PTRSource) Lookup(ctx context.Context, ip string) (Identity, error) {
	arpa, err := dns.ReverseAddr(ip)

	if err != nil {
		return Identity{}, err
	}

	msg := new(dns.Msg)
	msg.SetQuestion(arpa, dns.TypePTR)

	var lastErr error = errNoName

	for _, server := range s.servers(ip) {
		in, _, err := s.client.ExchangeContext(ctx, msg, server)

		if err != nil {
			lastErr = err
			continue
		}

		for _, rr := range in.Answer {
			if ptr, ok := rr.(*dns.PTR); ok && ptr.Ptr != "" {
				return Identity{Name: ptr.Ptr}, nil
			}
		}
	}

	return Identity{}, lastErr
}
