package component

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
	"github.com/robgonnella/aegis/internal/classify"
	"github.com/robgonnella/aegis/internal/device"
	"github.com/robgonnella/aegis/internal/ui/style"
)

// DeviceTable lists every stored device
type DeviceTable struct {
	table         *tview.Table
	columnHeaders []string
	thresholds    classify.Thresholds
}

// NewDeviceTable returns a new instance of DeviceTable
func NewDeviceTable(thresholds classify.Thresholds) *DeviceTable {
	columnHeaders := []string{
		"NAME",
		"IP",
		"MAC",
		"VENDOR",
		"TYPE",
		"OS",
		"PORTS",
		"RISK",
		"BLOCKED",
	}

	return &DeviceTable{
		table:         createTable("devices", columnHeaders),
		columnHeaders: columnHeaders,
		thresholds:    thresholds,
	}
}

// Primitive returns the root primitive for DeviceTable
func (t *DeviceTable) Primitive() tview.Primitive {
	return t.table
}

// Selected returns the ip and mac of the selected row
func (t *DeviceTable) Selected() (string, string, bool) {
	row, _ := t.table.GetSelection()

	if row < firstDataRow || row >= t.table.GetRowCount() {
		return "", "", false
	}

	return t.table.GetCell(row, 1).Text, t.table.GetCell(row, 2).Text, true
}

// UpdateTable replaces every row with the given devices
func (t *DeviceTable) UpdateTable(devices []*device.Device) {
	clearRows(t.table)

	for rowIdx, d := range devices {
		name := d.DisplayName

		if d.Nickname != nil && *d.Nickname != "" {
			name = *d.Nickname
		}

		ports := make([]string, 0, len(d.OpenPorts))

		for _, p := range d.OpenPorts {
			ports = append(ports, fmt.Sprint(p))
		}

		blocked := "no"

		if d.Blocked {
			blocked = "yes"
		}

		verdict := classify.Evaluate(classify.FeaturesFromDevice(d), t.thresholds)

		row := []string{
			name,
			d.IP,
			d.MAC,
			d.Vendor,
			d.Type,
			d.OS,
			strings.Join(ports, ","),
			fmt.Sprint(d.RiskScore),
			blocked,
		}

		color := style.ColorWhite

		if verdict.Harmful {
			color = style.ColorRed
		}

		if d.Blocked {
			color = style.ColorDimGrey
		}

		setRow(t.table, rowIdx+firstDataRow, row, color)
	}
}
