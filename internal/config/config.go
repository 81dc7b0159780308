package config

import (
	"errors"
	"os"
	"time"

	"github.com/imdario/mergo"
	"gopkg.in/yaml.v3"
)

// Discovery configures the link-layer sweep
type Discovery struct {
	CIDR    string        `yaml:"cidr"`
	Timeout time.Duration `yaml:"timeout"`
	Retries int           `yaml:"retries"`
}

// Probe configures the port prober
type Probe struct {
	// Backend is "connect" or "nmap"
	Backend     string        `yaml:"backend"`
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
}

// Vendor configures hardware vendor lookups
type Vendor struct {
	URL       string        `yaml:"url"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rateLimit"`
	Burst     int           `yaml:"burst"`
}

// Resolver configures hostname and os resolution
type Resolver struct {
	DNSTimeout   time.Duration `yaml:"dnsTimeout"`
	PingTimeout  time.Duration `yaml:"pingTimeout"`
	MDNSWindow   time.Duration `yaml:"mdnsWindow"`
	MDNSServices []string      `yaml:"mdnsServices"`
}

// Risk holds the thresholds used to flag devices
type Risk struct {
	AlertThreshold   int   `yaml:"alertThreshold"`
	HarmfulScore     int   `yaml:"harmfulScore"`
	HarmfulPortCount int   `yaml:"harmfulPortCount"`
	CriticalPorts    []int `yaml:"criticalPorts"`
}

// Scheduler configures periodic scanning
type Scheduler struct {
	Interval time.Duration `yaml:"interval"`
}

// Isolation configures the arp isolation loops
type Isolation struct {
	Interval       time.Duration `yaml:"interval"`
	RestoreCount   int           `yaml:"restoreCount"`
	ResolveTimeout time.Duration `yaml:"resolveTimeout"`
}

// SMTP mail relay settings for alert delivery
type SMTP struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

// Alerts configures risk notifications
type Alerts struct {
	SMTP SMTP `yaml:"smtp"`
}

// Classifier configures the learned device classifier
type Classifier struct {
	ModelFile string `yaml:"modelFile"`
}

// Enrich configures the enrichment worker pool
type Enrich struct {
	Workers int `yaml:"workers"`
}

// Config represents the data structure of our user provided yaml configuration
type Config struct {
	Interface  string     `yaml:"interface"`
	Discovery  Discovery  `yaml:"discovery"`
	Probe      Probe      `yaml:"probe"`
	Vendor     Vendor     `yaml:"vendor"`
	Resolver   Resolver   `yaml:"resolver"`
	Risk       Risk       `yaml:"risk"`
	Scheduler  Scheduler  `yaml:"scheduler"`
	Isolation  Isolation  `yaml:"isolation"`
	Alerts     Alerts     `yaml:"alerts"`
	Classifier Classifier `yaml:"classifier"`
	Enrich     Enrich     `yaml:"enrich"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Discovery: Discovery{
			Timeout: 4 * time.Second,
			Retries: 2,
		},
		Probe: Probe{
			Backend:     "connect",
			Timeout:     200 * time.Millisecond,
			Concurrency: 16,
		},
		Vendor: Vendor{
			URL:       "https://api.macvendors.com",
			Timeout:   time.Second,
			RateLimit: 1,
			Burst:     1,
		},
		Resolver: Resolver{
			DNSTimeout:  500 * time.Millisecond,
			PingTimeout: time.Second,
			MDNSWindow:  3 * time.Second,
			MDNSServices: []string{
				"_workstation._tcp",
				"_device-info._tcp",
				"_airplay._tcp",
				"_googlecast._tcp",
				"_ipp._tcp",
				"_printer._tcp",
				"_smb._tcp",
				"_ssh._tcp",
				"_http._tcp",
				"_hap._tcp",
			},
		},
		Risk: Risk{
			AlertThreshold:   40,
			HarmfulScore:     50,
			HarmfulPortCount: 5,
			CriticalPorts:    []int{21, 23, 139, 445, 3389, 5900, 3306, 5432, 1433, 27017, 6379, 9200},
		},
		Scheduler: Scheduler{
			Interval: 5 * time.Minute,
		},
		Isolation: Isolation{
			Interval:       time.Second,
			RestoreCount:   5,
			ResolveTimeout: 2 * time.Second,
		},
		Alerts: Alerts{
			SMTP: SMTP{
				Port: 587,
				To:   []string{},
			},
		},
		Enrich: Enrich{
			Workers: 8,
		},
	}
}

// New returns umarshaled data structure of user provided config merged
// over the defaults. A missing file yields the defaults.
func New(confPath string) (*Config, error) {
	defaults := Default()

	raw, err := os.ReadFile(confPath)

	if errors.Is(err, os.ErrNotExist) {
		return defaults, nil
	}

	if err != nil {
		return nil, err
	}

	var conf Config

	if err := yaml.Unmarshal(raw, &conf); err != nil {
		return nil, err
	}

	if err := mergo.Merge(&conf, defaults); err != nil {
		return nil, err
	}

	return &conf, nil
}

// Init writes the built-in configuration to confPath. An existing file is
// only replaced when overwrite is set. Returns whether a file was written.
func Init(confPath string, overwrite bool) (bool, error) {
	if !overwrite {
		if _, err := os.Stat(confPath); err == nil {
			return false, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return false, err
		}
	}

	if err := Write(confPath, *Default()); err != nil {
		return false, err
	}

	return true, nil
}

// Write writes the configuration to the given path as yaml
func Write(confPath string, conf Config) error {
	file, err := os.Create(confPath)

	if err != nil {
		return err
	}

	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)

	return encoder.Encode(conf)
}
