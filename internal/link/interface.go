package link

import (
	"context"
	"net"
)

//go:generate mockgen -destination=../mock/link/mock_link.go -package=mock_link . Link,NeighborCache

// Operation arp opcode
type Operation uint16

const (
	// OpRequest "who-has"
	OpRequest Operation = 1
	// OpReply "is-at"
	OpReply Operation = 2
)

// Packet a decoded arp frame
type Packet struct {
	Operation Operation
	SenderMAC net.HardwareAddr
	SenderIP  net.IP
	TargetMAC net.HardwareAddr
	TargetIP  net.IP
}

// Link raw access to the local segment for arp traffic
type Link interface {
	HardwareAddr() net.HardwareAddr
	IP() net.IP
	// WriteARP sends pkt inside an ethernet frame addressed to dst
	WriteARP(dst net.HardwareAddr, pkt Packet) error
	// Listen returns arp packets received until ctx is done or the link
	// is closed, at which point the channel is closed
	Listen(ctx context.Context) <-chan Packet
	Close() error
}

// NeighborCache read access to the operating system's arp table
type NeighborCache interface {
	Lookup(ip net.IP) (net.HardwareAddr, bool)
}

// Opener opens a new Link
type Opener func() (Link, error)
