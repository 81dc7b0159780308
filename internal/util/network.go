package util

import (
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/jackpal/gateway"
)

// NetworkInfo describes the host's position on the local segment
type NetworkInfo struct {
	Hostname  string
	Interface *net.Interface
	Gateway   net.IP
	UserIP    net.IP
	Cidr      string
}

// get network interface associated with ip
func getIPNetByIP(ip net.IP) (*net.Interface, *net.IPNet, error) {
	interfaces, err := net.Interfaces()

	if err != nil {
		return nil, nil, err
	}

	for _, iface := range interfaces {
		addrs, err := iface.Addrs()

		if err != nil {
			continue
		}

		for _, addr := range addrs {
			_, ipnet, err := net.ParseCIDR(addr.String())

			if err != nil {
				continue
			}

			if ipnet.Contains(ip) {
				iface := iface
				return &iface, ipnet, nil
			}
		}
	}

	return nil, nil, errors.New("failed to find IPNet")
}

// get first ipv4 address assigned to the named interface
func getInterfaceIP(iface *net.Interface) (net.IP, error) {
	addrs, err := iface.Addrs()

	if err != nil {
		return nil, err
	}

	for _, addr := range addrs {
		ip, _, err := net.ParseCIDR(addr.String())

		if err != nil {
			continue
		}

		if ip.To4() != nil {
			return ip.To4(), nil
		}
	}

	return nil, fmt.Errorf("no ipv4 address on interface %s", iface.Name)
}

// OutboundIP returns the address traffic to the internet would leave from
func OutboundIP() (net.IP, error) {
	target := "8.8.8.8"

	if gw, err := gateway.DiscoverGateway(); err == nil {
		target = gw.String()
	}

	// udp doesn't make a full connection and will find the default ip
	// that traffic will use if say 2 are configured (wired and wireless)
	conn, err := net.Dial("udp", target+":80")

	if err != nil {
		return nil, err
	}

	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)

	return localAddr.IP.To4(), nil
}

// DefaultCIDR returns the /24 block containing ip
func DefaultCIDR(ip net.IP) string {
	ip4 := ip.To4()

	if ip4 == nil {
		return ""
	}

	return fmt.Sprintf("%d.%d.%d.0/24", ip4[0], ip4[1], ip4[2])
}

// FallbackGateway returns the conventional x.x.x.1 gateway for ip
func FallbackGateway(ip net.IP) net.IP {
	ip4 := ip.To4()

	if ip4 == nil {
		return nil
	}

	return net.IPv4(ip4[0], ip4[1], ip4[2], 1).To4()
}

// GatewayIP discovers the default gateway, falling back to x.x.x.1 of the
// host address when discovery fails
func GatewayIP(userIP net.IP) net.IP {
	gw, err := gateway.DiscoverGateway()

	if err != nil || gw.To4() == nil {
		return FallbackGateway(userIP)
	}

	return gw.To4()
}

// GetNetworkInfo returns the interface, host ip, gateway and default cidr.
// An empty ifaceName selects the interface of the preferred outbound ip.
func GetNetworkInfo(ifaceName string) (*NetworkInfo, error) {
	host, err := os.Hostname()

	if err != nil {
		return nil, err
	}

	var iface *net.Interface
	var userIP net.IP

	if ifaceName != "" {
		iface, err = net.InterfaceByName(ifaceName)

		if err != nil {
			return nil, err
		}

		userIP, err = getInterfaceIP(iface)

		if err != nil {
			return nil, err
		}
	} else {
		userIP, err = OutboundIP()

		if err != nil {
			return nil, err
		}

		iface, _, err = getIPNetByIP(userIP)

		if err != nil {
			return nil, err
		}
	}

	return &NetworkInfo{
		Hostname:  host,
		Interface: iface,
		Gateway:   GatewayIP(userIP),
		UserIP:    userIP,
		Cidr:      DefaultCIDR(userIP),
	}, nil
}
