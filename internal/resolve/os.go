package resolve

import (
	"context"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/robgonnella/aegis/internal/logger"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// Coarse os families inferred from reply ttl
const (
	OSUnix    = "Linux/Unix/macOS"
	OSWindows = "Windows"
	OSNetwork = "Network Device"
	OSUnknown = "Unknown"
)

const protocolICMP = 1

// OSFromTTL maps an observed ttl to an os family. Hosts start at 64, 128
// or 255 and each hop decrements, so the bucket is the next initial value
// at or above the observation.
func OSFromTTL(ttl int) string {
	switch {
	case ttl <= 0:
		return OSUnknown
	case ttl <= 64:
		return OSUnix
	case ttl <= 128:
		return OSWindows
	case ttl <= 255:
		return OSNetwork
	default:
		return OSUnknown
	}
}

// Fingerprint the outcome of a single echo probe
type Fingerprint struct {
	OS      string
	TTL     int
	Latency *float64
}

// ICMPDetector sends one echo request and reads the reply ttl
type ICMPDetector struct {
	timeout time.Duration
	id      int
	seq     uint32
	log     logger.Logger
}

// NewICMPDetector returns a new instance of ICMPDetector
func NewICMPDetector(timeout time.Duration) *ICMPDetector {
	return &ICMPDetector{
		timeout: timeout,
		id:      os.Getpid() & 0xffff,
		log:     logger.New(),
	}
}

// listen prefers a raw socket and falls back to an unprivileged ping socket
func listen() (*icmp.PacketConn, bool, error) {
	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")

	if err == nil {
		return conn, true, nil
	}

	conn, err = icmp.ListenPacket("udp4", "0.0.0.0")

	if err != nil {
		return nil, false, err
	}

	return conn, false, nil
}

// Detect never fails, any problem yields OSUnknown
func (d *ICMPDetector) Detect(ctx context.Context, ip string) Fingerprint {
	unknown := Fingerprint{OS: OSUnknown}

	dstIP := net.ParseIP(ip).To4()

	if dstIP == nil {
		return unknown
	}

	conn, privileged, err := listen()

	if err != nil {
		d.log.Debug().Err(err).Msg("icmp unavailable")
		return unknown
	}

	defer conn.Close()

	pc := conn.IPv4PacketConn()

	if err := pc.SetControlMessage(ipv4.FlagTTL, true); err != nil {
		d.log.Debug().Err(err).Msg("ttl control messages unavailable")
	}

	seq := int(atomic.AddUint32(&d.seq, 1) & 0xffff)

	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   d.id,
			Seq:  seq,
			Data: []byte("aegis"),
		},
	}

	data, err := msg.Marshal(nil)

	if err != nil {
		return unknown
	}

	var dst net.Addr = &net.IPAddr{IP: dstIP}

	if !privileged {
		dst = &net.UDPAddr{IP: dstIP}
	}

	deadline := time.Now().Add(d.timeout)

	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := conn.SetReadDeadline(deadline); err != nil {
		return unknown
	}

	start := time.Now()

	if _, err := conn.WriteTo(data, dst); err != nil {
		d.log.Debug().Err(err).Str("ip", ip).Msg("failed to send echo")
		return unknown
	}

	buf := make([]byte, 1500)

	for {
		n, cm, peer, err := pc.ReadFrom(buf)

		if err != nil {
			return unknown
		}

		if !sameHost(peer, dstIP) {
			continue
		}

		reply, err := icmp.ParseMessage(protocolICMP, buf[:n])

		if err != nil || reply.Type != ipv4.ICMPTypeEchoReply {
			continue
		}

		echo, ok := reply.Body.(*icmp.Echo)

		// unprivileged sockets have their id rewritten by the kernel
		if !ok || echo.Seq != seq || (privileged && echo.ID != d.id) {
			continue
		}

		latency := float64(time.Since(start).Microseconds()) / 1000

		ttl := 0

		if cm != nil {
			ttl = cm.TTL
		}

		return Fingerprint{
			OS:      OSFromTTL(ttl),
			TTL:     ttl,
			Latency: &latency,
		}
	}
}

func sameHost(addr net.Addr, ip net.IP) bool {
	switch a := addr.(type) {
	case *net.IPAddr:
		return a.IP.Equal(ip)
	case *net.UDPAddr:
		return a.IP.Equal(ip)
	default:
		return false
	}
}
