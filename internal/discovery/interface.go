package discovery

import (
	"context"
	"net"
)

//go:generate mockgen -destination=../mock/discovery/mock_discovery.go -package=mock_discovery . Sweeper

// Result a live host observed during a sweep
type Result struct {
	IP  net.IP
	MAC net.HardwareAddr
}

// Sweeper interface for enumerating live hosts in a cidr block
type Sweeper interface {
	Sweep(ctx context.Context, cidr string) ([]Result, error)
}
