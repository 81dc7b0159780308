package classify

import (
	"github.com/robgonnella/aegis/internal/device"
)

//go:generate mockgen -destination=../mock/classify/mock_classify.go -package=mock_classify . Classifier

// Category device category produced by a Classifier
type Category string

// Known device categories
const (
	Router  Category = "router"
	Mobile  Category = "mobile"
	IoT     Category = "iot"
	Media   Category = "media"
	Server  Category = "server"
	Laptop  Category = "laptop"
	Printer Category = "printer"
	Unknown Category = "unknown"
)

// Features the inputs every classifier and naming function works from
type Features struct {
	MAC       string
	IP        string
	Vendor    string
	Hostname  string
	TypeHint  string
	OS        string
	OpenPorts []int
	RiskScore int
}

// FeaturesFromDevice builds Features out of a stored device
func FeaturesFromDevice(d *device.Device) Features {
	return Features{
		MAC:       d.MAC,
		IP:        d.IP,
		Vendor:    d.Vendor,
		Hostname:  d.Hostname,
		OS:        d.OS,
		OpenPorts: d.OpenPorts,
		RiskScore: d.RiskScore,
	}
}

// Classifier maps features to a device category
type Classifier interface {
	Classify(f Features) Category
}

// Predictor a learned model answering for the features it recognizes
type Predictor interface {
	Predict(f Features) (Category, bool)
}
