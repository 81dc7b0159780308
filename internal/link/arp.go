package link

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	"github.com/robgonnella/aegis/internal/exception"
)

// Request broadcasts a "who-has ip" request from the link's own identity
func Request(l Link, ip net.IP) error {
	return l.WriteARP(Broadcast, Packet{
		Operation: OpRequest,
		SenderMAC: l.HardwareAddr(),
		SenderIP:  l.IP(),
		TargetIP:  ip,
	})
}

// Reply sends a unicast "senderIP is-at senderMAC" reply to target
func Reply(l Link, senderIP net.IP, senderMAC net.HardwareAddr, targetIP net.IP, targetMAC net.HardwareAddr) error {
	return l.WriteARP(targetMAC, Packet{
		Operation: OpReply,
		SenderMAC: senderMAC,
		SenderIP:  senderIP,
		TargetMAC: targetMAC,
		TargetIP:  targetIP,
	})
}

// IsReplyFrom reports whether pkt is a reply sent by ip from someone other
// than self
func IsReplyFrom(pkt Packet, ip net.IP, self net.HardwareAddr) bool {
	if pkt.Operation != OpReply {
		return false
	}

	if bytes.Equal(pkt.SenderMAC, self) {
		return false
	}

	return pkt.SenderIP.Equal(ip)
}

// Resolve sends a single request for ip and waits up to timeout for the
// matching reply
func Resolve(ctx context.Context, l Link, ip net.IP, timeout time.Duration) (net.HardwareAddr, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	packets := l.Listen(ctx)

	if err := Request(l, ip); err != nil {
		return nil, err
	}

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", exception.ErrTargetOffline, ip.String())
		case pkt, ok := <-packets:
			if !ok {
				return nil, fmt.Errorf("%w: %s", exception.ErrTargetOffline, ip.String())
			}

			if IsReplyFrom(pkt, ip, l.HardwareAddr()) {
				return pkt.SenderMAC, nil
			}
		}
	}
}

// Lookup consults the neighbor cache first and falls back to an explicit
// request when the cache has no entry
func Lookup(ctx context.Context, l Link, cache NeighborCache, ip net.IP, timeout time.Duration) (net.HardwareAddr, error) {
	if cache != nil {
		if mac, ok := cache.Lookup(ip); ok {
			return mac, nil
		}
	}

	return Resolve(ctx, l, ip, timeout)
}
