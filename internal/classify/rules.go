package classify

import (
	"strings"

	"github.com/robgonnella/aegis/internal/util"
)

// Rule a single named predicate in the classification table
type Rule struct {
	Name     string
	Category Category
	Match    func(f Features) bool
}

var (
	routerKeywords  = []string{"cisco", "netgear", "tp-link", "linksys", "asus router", "d-link", "ubiquiti", "mikrotik", "router", "gateway", "modem"}
	mobileKeywords  = []string{"iphone", "ipad", "android", "galaxy", "pixel", "oneplus"}
	mobileVendors   = []string{"apple", "samsung", "google"}
	iotKeywords     = []string{"philips hue", "nest", "ring", "ecobee", "sonos", "amazon echo", "google home", "alexa", "smart", "iot", "espressif", "tuya"}
	iotPorts        = []int{1883, 8123, 5683}
	mediaKeywords   = []string{"roku", "chromecast", "apple tv", "fire tv", "nvidia shield"}
	mediaPorts      = []int{32400, 8096, 554}
	databasePorts   = []int{3306, 5432, 27017, 1433, 6379, 9200}
	remoteAdmin     = []int{22, 3389, 5900}
	pcKeywords      = []string{"dell", "hp", "lenovo", "asus", "acer", "msi", "laptop", "desktop"}
	printerVendors  = []string{"hp", "canon", "epson", "brother", "xerox", "lexmark"}
	printerPorts    = []int{9100, 631}
	serverRiskFloor = 20
)

// DefaultRules the ordered rule table, first match wins
var DefaultRules = []Rule{
	{
		Name:     "network-equipment",
		Category: Router,
		Match: func(f Features) bool {
			return containsAny(f.Vendor, routerKeywords) || containsAny(f.Hostname, routerKeywords)
		},
	},
	{
		Name:     "mobile-oem",
		Category: Mobile,
		Match: func(f Features) bool {
			if containsAny(f.Hostname, mobileKeywords) {
				return true
			}

			return f.TypeHint == string(Mobile) && containsAny(f.Vendor, mobileVendors)
		},
	},
	{
		Name:     "iot",
		Category: IoT,
		Match: func(f Features) bool {
			return containsAny(f.Vendor, iotKeywords) ||
				containsAny(f.Hostname, iotKeywords) ||
				anyOpen(f.OpenPorts, iotPorts) ||
				f.TypeHint == string(IoT)
		},
	},
	{
		Name:     "media",
		Category: Media,
		Match: func(f Features) bool {
			return containsAny(f.Vendor, mediaKeywords) ||
				containsAny(f.Hostname, mediaKeywords) ||
				anyOpen(f.OpenPorts, mediaPorts) ||
				f.TypeHint == string(Media)
		},
	},
	{
		Name:     "server",
		Category: Server,
		Match: func(f Features) bool {
			if anyOpen(f.OpenPorts, databasePorts) {
				return true
			}

			return anyOpen(f.OpenPorts, remoteAdmin) && f.RiskScore > serverRiskFloor
		},
	},
	{
		Name:     "pc-oem",
		Category: Laptop,
		Match: func(f Features) bool {
			return containsAny(f.Vendor, pcKeywords) || f.TypeHint == string(Laptop)
		},
	},
	{
		Name:     "printer",
		Category: Printer,
		Match: func(f Features) bool {
			if f.TypeHint == string(Printer) {
				return true
			}

			return containsAny(f.Vendor, printerVendors) && anyOpen(f.OpenPorts, printerPorts)
		},
	},
}

// RuleClassifier classifies with an ordered rule table
type RuleClassifier struct {
	rules []Rule
}

// NewRuleClassifier returns a RuleClassifier over DefaultRules
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{rules: DefaultRules}
}

// Classify implements Classifier
func (c *RuleClassifier) Classify(f Features) Category {
	category, _ := c.Match(f)
	return category
}

// Match returns the category and the name of the rule that produced it.
// The rule name is empty when nothing matched.
func (c *RuleClassifier) Match(f Features) (Category, string) {
	for _, rule := range c.rules {
		if rule.Match(f) {
			return rule.Category, rule.Name
		}
	}

	return Unknown, ""
}

func containsAny(value string, keywords []string) bool {
	value = strings.ToLower(value)

	if value == "" {
		return false
	}

	for _, k := range keywords {
		if strings.Contains(value, k) {
			return true
		}
	}

	return false
}

func anyOpen(open []int, ports []int) bool {
	for _, p := range ports {
		if util.SliceIncludes(open, p) {
			return true
		}
	}

	return false
}
