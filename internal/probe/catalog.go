package probe

import (
	"strings"

	"github.com/robgonnella/aegis/internal/util"
)

// MaxRiskScore upper bound of any risk score
const MaxRiskScore = 100

// Service a probed port, its label and its risk weight
type Service struct {
	Port   int
	Label  string
	Weight int
}

// Catalog ordered set of probed services
type Catalog []Service

// DefaultCatalog weights clear-text remote access highest, then remote
// desktop and file sharing, then databases, then plain web and finally
// encrypted admin, IoT control and media ports.
var DefaultCatalog = Catalog{
	{Port: 23, Label: "Telnet", Weight: 50},
	{Port: 21, Label: "FTP", Weight: 30},
	{Port: 139, Label: "NetBIOS", Weight: 30},
	{Port: 445, Label: "SMB", Weight: 30},
	{Port: 3389, Label: "RDP", Weight: 30},
	{Port: 5900, Label: "VNC", Weight: 30},
	{Port: 3306, Label: "MySQL", Weight: 20},
	{Port: 5432, Label: "PostgreSQL", Weight: 20},
	{Port: 1433, Label: "MSSQL", Weight: 20},
	{Port: 27017, Label: "MongoDB", Weight: 20},
	{Port: 6379, Label: "Redis", Weight: 20},
	{Port: 9200, Label: "Elasticsearch", Weight: 20},
	{Port: 80, Label: "HTTP", Weight: 10},
	{Port: 8080, Label: "Alt-HTTP", Weight: 10},
	{Port: 22, Label: "SSH", Weight: 5},
	{Port: 443, Label: "HTTPS", Weight: 5},
	{Port: 1883, Label: "MQTT", Weight: 5},
	{Port: 8123, Label: "Home Assistant", Weight: 5},
	{Port: 554, Label: "RTSP", Weight: 5},
	{Port: 32400, Label: "Plex", Weight: 5},
	{Port: 8096, Label: "Jellyfin", Weight: 5},
	{Port: 9100, Label: "JetDirect", Weight: 5},
}

// Ports returns the catalog's ports in catalog order
func (c Catalog) Ports() []int {
	ports := make([]int, 0, len(c))

	for _, s := range c {
		ports = append(ports, s.Port)
	}

	return ports
}

// Lookup returns the catalog entry for port
func (c Catalog) Lookup(port int) (Service, bool) {
	for _, s := range c {
		if s.Port == port {
			return s, true
		}
	}

	return Service{}, false
}

// Score sums the weights of open ports and caps the total at MaxRiskScore.
// Ports missing from the catalog contribute nothing.
func (c Catalog) Score(open []int) int {
	score := 0

	for _, p := range open {
		if s, ok := c.Lookup(p); ok {
			score += s.Weight
		}
	}

	if score > MaxRiskScore {
		return MaxRiskScore
	}

	return score
}

// Result the outcome of probing one host
type Result struct {
	OpenPorts []int
	Labels    []string
	RiskScore int
}

// Summary human readable list of open services
func (r *Result) Summary() string {
	if r == nil || len(r.Labels) == 0 {
		return "No open ports"
	}

	return strings.Join(r.Labels, ", ")
}

// NewResult builds a Result from the set of open ports
func (c Catalog) NewResult(open []int) *Result {
	ports := util.SortedUnique(open)

	labels := []string{}

	for _, p := range ports {
		if s, ok := c.Lookup(p); ok {
			labels = append(labels, s.Label)
		}
	}

	return &Result{
		OpenPorts: ports,
		Labels:    labels,
		RiskScore: c.Score(ports),
	}
}
