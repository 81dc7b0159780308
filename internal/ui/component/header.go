package component

import (
	"fmt"
	"strings"
	"time"

	"github.com/rivo/tview"
	"github.com/robgonnella/aegis/internal/scan"
	"github.com/robgonnella/aegis/internal/ui/style"
)

const appText = `
 █████╗ ███████╗ ██████╗ ██╗███████╗
██╔══██╗██╔════╝██╔════╝ ██║██╔════╝
███████║█████╗  ██║  ███╗██║███████╗
██╔══██║██╔══╝  ██║   ██║██║╚════██║
██║  ██║███████╗╚██████╔╝██║███████║
╚═╝  ╚═╝╚══════╝ ╚═════╝ ╚═╝╚══════╝`

// Header shows the title, key legend and live status lines
type Header struct {
	root         *tview.Flex
	legend       *Legend
	scanText     *tview.TextView
	autoScanText *tview.TextView
	blockedText  *tview.TextView
}

// NewHeader returns a new instance of Header
func NewHeader(userIP, gateway, cidr string) *Header {
	h := &Header{
		legend: NewLegend(),
	}

	title := tview.NewTextView().
		SetText(appText).
		SetTextColor(style.ColorPurple)

	network := tview.NewTextView().
		SetText(fmt.Sprintf("IP: %s, Gateway: %s, Network: %s", userIP, gateway, cidr))
	network.SetTextColor(style.ColorLightGreen)

	h.scanText = tview.NewTextView().SetText("scan: idle")
	h.scanText.SetTextColor(style.ColorLightGreen)

	h.autoScanText = tview.NewTextView().SetText("auto scan: off")
	h.autoScanText.SetTextColor(style.ColorLightGreen)

	h.blockedText = tview.NewTextView().SetText("blocked: none")
	h.blockedText.SetTextColor(style.ColorOrange)

	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(title, 0, 1, false).
		AddItem(network, 1, 1, false)

	status := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(tview.NewTextView(), 1, 1, false).
		AddItem(h.scanText, 1, 1, false).
		AddItem(h.autoScanText, 1, 1, false).
		AddItem(h.blockedText, 0, 1, false)

	h.root = tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(left, 45, 1, false).
		AddItem(h.legend.Primitive(), 0, 1, false).
		AddItem(status, 0, 1, false)

	return h
}

// Primitive returns the root primitive for Header
func (h *Header) Primitive() tview.Primitive {
	return h.root
}

// Height returns the number of rows the header needs
func (h *Header) Height() int {
	return h.legend.Height() + 2
}

// SetScanStatus renders the state of the most recent scan pass
func (h *Header) SetScanStatus(status scan.Status) {
	switch {
	case status.Running:
		h.scanText.SetText("scan: running…")
	case status.LastError != "":
		h.scanText.SetText("scan: failed - " + status.LastError)
	case status.CompletedAt != nil:
		h.scanText.SetText(fmt.Sprintf(
			"scan: %d devices at %s",
			status.DeviceCount,
			status.CompletedAt.Format(time.Kitchen),
		))
	default:
		h.scanText.SetText("scan: idle")
	}
}

// SetAutoScanStatus renders the periodic scanner state
func (h *Header) SetAutoScanStatus(status scan.SchedulerStatus) {
	if !status.Enabled {
		h.autoScanText.SetText("auto scan: off")
		return
	}

	h.autoScanText.SetText("auto scan: every " + status.Interval.String())
}

// SetBlocked renders the addresses currently isolated
func (h *Header) SetBlocked(ips []string) {
	if len(ips) == 0 {
		h.blockedText.SetText("blocked: none")
		return
	}

	h.blockedText.SetText("blocked: " + strings.Join(ips, ", "))
}
