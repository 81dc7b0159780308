package classify

import (
	"fmt"
	"strings"

	"github.com/robgonnella/aegis/internal/device"
	"github.com/robgonnella/aegis/internal/resolve"
	"github.com/robgonnella/aegis/internal/util"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Labels used for devices hiding behind a randomized hardware address
const (
	PrivateDeviceName  = "Private Device"
	PrivateDeviceLabel = "Randomized MAC (Privacy Mode)"
)

// a Caser holds state so each call gets its own
func titled(s string) string {
	return cases.Title(language.English).String(s)
}

func knownVendor(vendor string) bool {
	vendor = strings.TrimSpace(vendor)
	return vendor != "" && vendor != resolve.UnknownVendor
}

func knownOS(os string) bool {
	return os != "" && os != resolve.OSUnknown
}

func lastOctet(ip string) string {
	parts := strings.Split(ip, ".")
	return parts[len(parts)-1]
}

// GenerateName returns the display name and sub-label for a device.
// Precedence is resolved name, then vendor with category, then category
// with address, then the address alone.
func GenerateName(f Features, category Category) (string, string) {
	name := resolve.CleanHostname(f.Hostname)
	typed := category != "" && category != Unknown

	if len(name) > 2 && name != f.IP {
		display := name

		if typed {
			display = fmt.Sprintf("%s (%s)", name, titled(string(category)))
		}

		switch {
		case knownVendor(f.Vendor):
			return display, f.Vendor
		case knownOS(f.OS):
			return display, f.OS
		default:
			return display, "Device at " + lastOctet(f.IP)
		}
	}

	if knownVendor(f.Vendor) {
		display := f.Vendor

		if typed {
			brand := strings.Fields(f.Vendor)[0]
			display = fmt.Sprintf("%s %s", brand, titled(string(category)))
		}

		if knownOS(f.OS) {
			return display, f.OS
		}

		return display, "IP: " + f.IP
	}

	if resolve.IsLocallyAdministered(f.MAC) {
		return PrivateDeviceName, PrivateDeviceLabel
	}

	if typed {
		display := titled(string(category)) + " Device"

		if knownOS(f.OS) {
			return display, fmt.Sprintf("%s - %s", f.OS, f.IP)
		}

		return display, f.IP
	}

	if knownOS(f.OS) {
		return "Device-" + lastOctet(f.IP), f.OS
	}

	return "Device-" + lastOctet(f.IP), "Unknown Device"
}

// RefineOS sharpens the ttl based os label using hostname, vendor and
// port patterns. ttlLabel is returned when no pattern applies.
func RefineOS(f Features, ttlLabel string) string {
	host := strings.ToLower(f.Hostname)
	vendor := strings.ToLower(f.Vendor)

	switch {
	case containsAny(host, []string{"windows", "desktop", "pc-", "win-"}):
		return "Windows"
	case ttlLabel == resolve.OSWindows && (util.SliceIncludes(f.OpenPorts, 3389) || util.SliceIncludes(f.OpenPorts, 445)):
		return "Windows"
	case containsAny(host, []string{"linux", "ubuntu", "debian", "raspberry"}):
		return "Linux"
	case ttlLabel == resolve.OSUnix && util.SliceIncludes(f.OpenPorts, 22):
		return "Linux/Unix"
	case containsAny(host, []string{"iphone", "ipad", "ipod"}):
		return "iOS"
	case containsAny(host, []string{"macbook", "imac", "mac-"}):
		return "macOS"
	case strings.Contains(vendor, "apple") && containsAny(host, []string{"ios", "mobile"}):
		return "iOS"
	case strings.Contains(vendor, "apple") && ttlLabel == resolve.OSUnix:
		return "macOS"
	case strings.Contains(host, "android"):
		return "Android"
	case f.TypeHint == string(Mobile) && containsAny(vendor, []string{"samsung", "google", "xiaomi", "huawei"}):
		return "Android"
	case containsAny(vendor, []string{"cisco", "netgear", "tp-link", "linksys"}):
		return "Router OS"
	}

	if ttlLabel == "" {
		return resolve.OSUnknown
	}

	return ttlLabel
}

// Summary returns a one line human readable description of d
func Summary(d *device.Device, t Thresholds) string {
	name := d.IP

	switch {
	case d.Nickname != nil && *d.Nickname != "":
		name = *d.Nickname
	case d.Hostname != "":
		name = d.Hostname
	case knownVendor(d.Vendor):
		name = d.Vendor
	}

	category := d.Type

	if category == "" {
		category = string(Unknown)
	}

	os := d.OS

	if os == "" {
		os = resolve.OSUnknown
	}

	verdict := Evaluate(FeaturesFromDevice(d), t)

	status := []string{fmt.Sprintf("%d open ports", verdict.OpenPortCount)}

	if len(verdict.CriticalPorts) > 0 {
		status = append(status, "critical services exposed")
	}

	if d.Latency != nil {
		status = append(status, fmt.Sprintf("%.1fms latency", *d.Latency))
	}

	risk := "Low Risk"

	if verdict.Harmful {
		risk = "High Risk"
	}

	return fmt.Sprintf(
		"%s: %s | %s | %s | %s",
		name,
		titled(category),
		os,
		strings.Join(status, ", "),
		risk,
	)
}
