package probe

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/robgonnella/aegis/internal/logger"
)

// Dialer opens a tcp connection
type Dialer func(ctx context.Context, network, address string) (net.Conn, error)

// ConnectProber checks ports with a full tcp connect per port
type ConnectProber struct {
	catalog     Catalog
	timeout     time.Duration
	concurrency int
	dial        Dialer
	log         logger.Logger
}

// NewConnectProber returns a new instance of ConnectProber
func NewConnectProber(catalog Catalog, timeout time.Duration, concurrency int) *ConnectProber {
	if concurrency < 1 {
		concurrency = 1
	}

	dialer := &net.Dialer{}

	return &ConnectProber{
		catalog:     catalog,
		timeout:     timeout,
		concurrency: concurrency,
		dial:        dialer.DialContext,
		log:         logger.New(),
	}
}

// WithDialer replaces the dialer used for connection attempts
func (p *ConnectProber) WithDialer(dial Dialer) *ConnectProber {
	p.dial = dial
	return p
}

// Probe attempts every catalog port. A failed attempt only marks that port
// closed.
func (p *ConnectProber) Probe(ctx context.Context, ip string) (*Result, error) {
	semaphore := make(chan struct{}, p.concurrency)
	wg := &sync.WaitGroup{}
	mux := sync.Mutex{}
	open := []int{}

	for _, svc := range p.catalog {
		semaphore <- struct{}{} // acquire
		wg.Add(1)

		go func(port int) {
			defer func() {
				<-semaphore // release
				wg.Done()
			}()

			if p.isOpen(ctx, ip, port) {
				mux.Lock()
				open = append(open, port)
				mux.Unlock()
			}
		}(svc.Port)
	}

	wg.Wait()

	result := p.catalog.NewResult(open)

	p.log.Debug().
		Str("ip", ip).
		Ints("open", result.OpenPorts).
		Int("risk", result.RiskScore).
		Msg("probe complete")

	return result, nil
}

func (p *ConnectProber) isOpen(ctx context.Context, ip string, port int) bool {
	dialCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.dial(dialCtx, "tcp", net.JoinHostPort(ip, strconv.Itoa(port)))

	if err != nil {
		return false
	}

	conn.Close()

	return true
}
