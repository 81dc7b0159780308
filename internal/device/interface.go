package device

import "time"

//go:generate mockgen -destination=../mock/device/mock_device.go -package=mock_device . Repo,Service

// Device is the persisted view of a host observed on the local segment
type Device struct {
	MAC         string
	IP          string
	Vendor      string
	Hostname    string
	DisplayName string
	SubLabel    string
	OS          string
	Type        string
	OpenPorts   []int
	PortSummary string
	Latency     *float64
	RiskScore   int
	// nil means "not supplied" and keeps whatever is stored
	Nickname *string
	Blocked  bool
	LastSeen time.Time
}

// Repo interface representing access to stored devices
type Repo interface {
	GetAll() ([]*Device, error)
	GetByMAC(mac string) (*Device, error)
	GetByIP(ip string) (*Device, error)
	Save(d *Device) (*Device, error)
	Count() (int64, error)
	DeleteAll() error
}

// Service interface for manipulating devices
type Service interface {
	Upsert(d *Device) (*Device, error)
	ListAll() ([]*Device, error)
	Get(mac string) (*Device, error)
	GetByIP(ip string) (*Device, error)
	Count() (int, error)
	ClearAll() error
	SetNickname(mac, nickname string) (*Device, error)
	SetBlocked(mac string, blocked bool) error
}
