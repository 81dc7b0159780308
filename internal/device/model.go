package device

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// DeviceModel is the gorm row representation of a Device
type DeviceModel struct {
	MAC         string `gorm:"primaryKey"`
	IP          string `gorm:"index"`
	Vendor      string
	Hostname    string
	DisplayName string
	SubLabel    string
	OS          string
	Type        string
	OpenPorts   datatypes.JSON
	PortSummary string
	Latency     *float64
	RiskScore   int
	Nickname    *string
	Blocked     bool
	LastSeen    time.Time `gorm:"index"`
}

// TableName overrides gorm's pluralized default
func (DeviceModel) TableName() string {
	return "devices"
}

func modelToDevice(model *DeviceModel) (*Device, error) {
	ports := []int{}

	if len(model.OpenPorts) > 0 {
		if err := json.Unmarshal([]byte(model.OpenPorts.String()), &ports); err != nil {
			return nil, err
		}
	}

	return &Device{
		MAC:         model.MAC,
		IP:          model.IP,
		Vendor:      model.Vendor,
		Hostname:    model.Hostname,
		DisplayName: model.DisplayName,
		SubLabel:    model.SubLabel,
		OS:          model.OS,
		Type:        model.Type,
		OpenPorts:   ports,
		PortSummary: model.PortSummary,
		Latency:     model.Latency,
		RiskScore:   model.RiskScore,
		Nickname:    model.Nickname,
		Blocked:     model.Blocked,
		LastSeen:    model.LastSeen,
	}, nil
}

func deviceToModel(d *Device) (*DeviceModel, error) {
	ports := d.OpenPorts

	if ports == nil {
		ports = []int{}
	}

	portBytes, err := json.Marshal(ports)

	if err != nil {
		return nil, err
	}

	return &DeviceModel{
		MAC:         d.MAC,
		IP:          d.IP,
		Vendor:      d.Vendor,
		Hostname:    d.Hostname,
		DisplayName: d.DisplayName,
		SubLabel:    d.SubLabel,
		OS:          d.OS,
		Type:        d.Type,
		OpenPorts:   datatypes.JSON(portBytes),
		PortSummary: d.PortSummary,
		Latency:     d.Latency,
		RiskScore:   d.RiskScore,
		Nickname:    d.Nickname,
		Blocked:     d.Blocked,
		LastSeen:    d.LastSeen,
	}, nil
}
