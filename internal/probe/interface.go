package probe

import "context"

//go:generate mockgen -destination=../mock/probe/mock_probe.go -package=mock_probe . Prober

// Prober interface for checking which catalog ports are open on a host
type Prober interface {
	Probe(ctx context.Context, ip string) (*Result, error)
}
