package link

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"github.com/robgonnella/aegis/internal/exception"
	"github.com/robgonnella/aegis/internal/logger"
)

// Broadcast ethernet broadcast address
var Broadcast = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

var zeroMAC = net.HardwareAddr{0, 0, 0, 0, 0, 0}

// PcapLink implements Link on top of a live pcap handle filtered to arp
type PcapLink struct {
	iface     *net.Interface
	ip        net.IP
	handle    *pcap.Handle
	listeners map[int]chan Packet
	nextID    int
	done      chan struct{}
	closeOnce sync.Once
	writeMux  sync.Mutex
	mux       sync.Mutex
	log       logger.Logger
}

// OpenPcap opens a live capture on iface. Failures wrap
// exception.ErrLinkUnavailable.
func OpenPcap(iface *net.Interface, ip net.IP) (*PcapLink, error) {
	if iface == nil {
		return nil, fmt.Errorf("%w: no interface", exception.ErrLinkUnavailable)
	}

	handle, err := pcap.OpenLive(iface.Name, 65536, true, 500*time.Millisecond)

	if err != nil {
		return nil, fmt.Errorf("%w: %s", exception.ErrLinkUnavailable, err.Error())
	}

	if err := handle.SetBPFFilter("arp"); err != nil {
		handle.Close()
		return nil, fmt.Errorf("%w: %s", exception.ErrLinkUnavailable, err.Error())
	}

	l := &PcapLink{
		iface:     iface,
		ip:        ip.To4(),
		handle:    handle,
		listeners: map[int]chan Packet{},
		done:      make(chan struct{}),
		log:       logger.New(),
	}

	go l.readPackets()

	return l, nil
}

// HardwareAddr returns the interface's mac
func (l *PcapLink) HardwareAddr() net.HardwareAddr {
	return l.iface.HardwareAddr
}

// IP returns the host's ipv4 address on this link
func (l *PcapLink) IP() net.IP {
	return l.ip
}

// WriteARP serializes and sends an arp packet to dst
func (l *PcapLink) WriteARP(dst net.HardwareAddr, pkt Packet) error {
	eth := layers.Ethernet{
		SrcMAC:       l.iface.HardwareAddr,
		DstMAC:       dst,
		EthernetType: layers.EthernetTypeARP,
	}

	targetMAC := pkt.TargetMAC

	if targetMAC == nil {
		targetMAC = zeroMAC
	}

	arp := layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         uint16(pkt.Operation),
		SourceHwAddress:   []byte(pkt.SenderMAC),
		SourceProtAddress: []byte(pkt.SenderIP.To4()),
		DstHwAddress:      []byte(targetMAC),
		DstProtAddress:    []byte(pkt.TargetIP.To4()),
	}

	buf := gopacket.NewSerializeBuffer()

	opts := gopacket.SerializeOptions{
		FixLengths:       true,
		ComputeChecksums: true,
	}

	if err := gopacket.SerializeLayers(buf, opts, &eth, &arp); err != nil {
		return err
	}

	l.writeMux.Lock()
	defer l.writeMux.Unlock()

	return l.handle.WritePacketData(buf.Bytes())
}

// Listen registers a new packet listener
func (l *PcapLink) Listen(ctx context.Context) <-chan Packet {
	ch := make(chan Packet, 256)

	l.mux.Lock()

	select {
	case <-l.done:
		l.mux.Unlock()
		close(ch)
		return ch
	default:
	}

	id := l.nextID
	l.nextID++
	l.listeners[id] = ch

	l.mux.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-l.done:
		}

		l.mux.Lock()
		defer l.mux.Unlock()

		if c, ok := l.listeners[id]; ok {
			delete(l.listeners, id)
			close(c)
		}
	}()

	return ch
}

// Close stops reading and releases the capture handle
func (l *PcapLink) Close() error {
	l.closeOnce.Do(func() {
		close(l.done)
		l.handle.Close()
	})

	return nil
}

func (l *PcapLink) readPackets() {
	src := gopacket.NewPacketSource(l.handle, layers.LayerTypeEthernet)
	packets := src.Packets()

	for {
		select {
		case <-l.done:
			return
		case packet, ok := <-packets:
			if !ok {
				return
			}

			arpLayer := packet.Layer(layers.LayerTypeARP)

			if arpLayer == nil {
				continue
			}

			arp := arpLayer.(*layers.ARP)

			l.broadcast(Packet{
				Operation: Operation(arp.Operation),
				SenderMAC: net.HardwareAddr(append([]byte{}, arp.SourceHwAddress...)),
				SenderIP:  net.IP(append([]byte{}, arp.SourceProtAddress...)),
				TargetMAC: net.HardwareAddr(append([]byte{}, arp.DstHwAddress...)),
				TargetIP:  net.IP(append([]byte{}, arp.DstProtAddress...)),
			})
		}
	}
}

func (l *PcapLink) broadcast(pkt Packet) {
	l.mux.Lock()
	defer l.mux.Unlock()

	for _, ch := range l.listeners {
		select {
		case ch <- pkt:
		default:
			l.log.Debug().Str("sender", pkt.SenderIP.String()).Msg("listener full, dropping arp packet")
		}
	}
}
