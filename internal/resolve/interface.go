package resolve

import "context"

//go:generate mockgen -destination=../mock/resolve/mock_resolve.go -package=mock_resolve . VendorLookup,NameSource,HostnameResolver,OSDetector

// VendorLookup maps a hardware address to a vendor string
type VendorLookup interface {
	Lookup(ctx context.Context, mac string) string
}

// Identity what a name source learned about a host
type Identity struct {
	Name string
	// TypeHint optional device category suggested by advertised services
	TypeHint string
}

// NameSource one step of the name resolution chain
type NameSource interface {
	Source() string
	Lookup(ctx context.Context, ip string) (Identity, error)
}

// HostnameResolver resolves the best available name for a host
type HostnameResolver interface {
	Resolve(ctx context.Context, ip string) Identity
}

// OSDetector infers a coarse os family for a host
type OSDetector interface {
	Detect(ctx context.Context, ip string) Fingerprint
}
