package link

import (
	"bufio"
	"net"
	"os"
	"strings"
)

// DefaultNeighborTable linux location of the kernel arp table
const DefaultNeighborTable = "/proc/net/arp"

// ProcNeighborCache reads the kernel arp table from a procfs style file.
// Platforms without the file always miss.
type ProcNeighborCache struct {
	Path string
}

// NewProcNeighborCache returns a cache backed by /proc/net/arp
func NewProcNeighborCache() *ProcNeighborCache {
	return &ProcNeighborCache{Path: DefaultNeighborTable}
}

// Lookup returns the cached mac for ip if one is complete
func (c *ProcNeighborCache) Lookup(ip net.IP) (net.HardwareAddr, bool) {
	entries := c.Entries()

	mac, ok := entries[ip.String()]

	return mac, ok
}

// Entries returns every complete entry keyed by ip
func (c *ProcNeighborCache) Entries() map[string]net.HardwareAddr {
	entries := map[string]net.HardwareAddr{}

	file, err := os.Open(c.Path)

	if err != nil {
		return entries
	}

	defer file.Close()

	scanner := bufio.NewScanner(file)

	// header
	scanner.Scan()

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())

		if len(fields) < 4 {
			continue
		}

		// 0x0 flags mark an incomplete entry
		if fields[2] == "0x0" {
			continue
		}

		mac, err := net.ParseMAC(fields[3])

		if err != nil || mac.String() == zeroMAC.String() {
			continue
		}

		ip := net.ParseIP(fields[0])

		if ip == nil {
			continue
		}

		entries[ip.String()] = mac
	}

	return entries
}
