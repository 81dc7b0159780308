package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/robgonnella/aegis/internal/logger"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// UnknownVendor reported when no vendor could be determined
const UnknownVendor = "Unknown Vendor"

var errVendorNotFound = errors.New("vendor not found")

// IsLocallyAdministered reports whether mac has the locally administered
// bit set, which is how randomized privacy addresses appear
func IsLocallyAdministered(mac string) bool {
	hw, err := net.ParseMAC(mac)

	if err != nil || len(hw) == 0 {
		return false
	}

	return hw[0]&0x02 != 0
}

// HTTPVendorResolver looks vendors up from a macvendors style http api
type HTTPVendorResolver struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	cache   map[string]string
	mux     sync.RWMutex
	log     logger.Logger
}

// NewVendorResolver returns a new instance of HTTPVendorResolver. A
// non-positive rateLimit disables throttling.
func NewVendorResolver(baseURL string, timeout time.Duration, rateLimit float64, burst int) *HTTPVendorResolver {
	limit := rate.Inf

	if rateLimit > 0 {
		limit = rate.Limit(rateLimit)
	}

	if burst < 1 {
		burst = 1
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "vendor-lookup",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errVendorNotFound)
		},
	})

	return &HTTPVendorResolver{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
		breaker: breaker,
		cache:   map[string]string{},
		log:     logger.New(),
	}
}

// Lookup returns the vendor for mac or UnknownVendor. Definitive answers
// are cached for the life of the resolver, transient failures are not.
func (r *HTTPVendorResolver) Lookup(ctx context.Context, mac string) string {
	key := strings.ToLower(mac)

	r.mux.RLock()
	vendor, ok := r.cache[key]
	r.mux.RUnlock()

	if ok {
		return vendor
	}

	if IsLocallyAdministered(key) {
		r.store(key, UnknownVendor)
		return UnknownVendor
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return UnknownVendor
	}

	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.fetch(ctx, key)
	})

	if errors.Is(err, errVendorNotFound) {
		r.store(key, UnknownVendor)
		return UnknownVendor
	}

	if err != nil {
		r.log.Debug().Err(err).Str("mac", key).Msg("vendor lookup failed")
		return UnknownVendor
	}

	vendor = result.(string)

	r.store(key, vendor)

	return vendor
}

func (r *HTTPVendorResolver) store(mac, vendor string) {
	r.mux.Lock()
	r.cache[mac] = vendor
	r.mux.Unlock()
}

func (r *HTTPVendorResolver) fetch(ctx context.Context, mac string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/"+mac, nil)

	if err != nil {
		return "", err
	}

	resp, err := r.client.Do(req)

	if err != nil {
		return "", err
	}

	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))

		if err != nil {
			return "", err
		}

		vendor := strings.TrimSpace(string(body))

		if vendor == "" {
			return "", errVendorNotFound
		}

		return vendor, nil
	case http.StatusNotFound:
		return "", errVendorNotFound
	default:
		return "", fmt.Errorf("vendor api returned status %d", resp.StatusCode)
	}
}
