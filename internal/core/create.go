package core

import (
	"context"
	"net"

	"github.com/robgonnella/aegis/internal/activity"
	"github.com/robgonnella/aegis/internal/alert"
	"github.com/robgonnella/aegis/internal/classify"
	"github.com/robgonnella/aegis/internal/config"
	"github.com/robgonnella/aegis/internal/device"
	"github.com/robgonnella/aegis/internal/discovery"
	"github.com/robgonnella/aegis/internal/enrich"
	"github.com/robgonnella/aegis/internal/event"
	"github.com/robgonnella/aegis/internal/isolation"
	"github.com/robgonnella/aegis/internal/link"
	"github.com/robgonnella/aegis/internal/probe"
	"github.com/robgonnella/aegis/internal/resolve"
	"github.com/robgonnella/aegis/internal/scan"
	"github.com/robgonnella/aegis/internal/util"
	"github.com/spf13/viper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const resolvConf = "/etc/resolv.conf"

// OpenDatabase opens the sqlite database and migrates the device and
// activity tables
func OpenDatabase(dbFile string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbFile), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})

	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&device.DeviceModel{}, &activity.LogModel{}); err != nil {
		return nil, err
	}

	return db, nil
}

// LoadConfig reads the configuration file shared through viper
func LoadConfig() (*config.Config, error) {
	confPath, _ := viper.Get("config-path").(string)

	conf, err := config.New(confPath)

	if err != nil {
		return nil, err
	}

	if conf.Classifier.ModelFile == "" {
		conf.Classifier.ModelFile, _ = viper.Get("model-file").(string)
	}

	return conf, nil
}

func newProber(conf config.Probe) probe.Prober {
	connect := probe.NewConnectProber(probe.DefaultCatalog, conf.Timeout, conf.Concurrency)

	if conf.Backend == "nmap" {
		return probe.NewNmapProber(probe.DefaultCatalog, conf.Timeout, connect)
	}

	return connect
}

func newNotifier(conf config.Config, events event.Manager) alert.Notifier {
	notifiers := []alert.Notifier{
		alert.NewLogNotifier(),
		alert.NewEventNotifier(events),
	}

	smtp := alert.NewSMTPNotifier(
		conf.Alerts.SMTP,
		classify.ThresholdsFromConfig(conf.Risk),
	)

	if smtp.Enabled() {
		notifiers = append(notifiers, smtp)
	}

	return alert.NewDedup(alert.NewMulti(notifiers...))
}

// CreateNewAppCore creates and returns a new instance of *core.Core wired
// from configuration
func CreateNewAppCore(ctx context.Context, conf config.Config, db *gorm.DB) (*Core, error) {
	networkInfo, err := util.GetNetworkInfo(conf.Interface)

	if err != nil {
		return nil, err
	}

	cidr := conf.Discovery.CIDR

	if cidr == "" {
		cidr = networkInfo.Cidr
	}

	eventManager := event.NewEventManager()

	deviceRepo := device.NewSqliteRepo(db)
	deviceService := device.NewService(deviceRepo, eventManager)

	opener := func() (link.Link, error) {
		l, err := link.OpenPcap(networkInfo.Interface, networkInfo.UserIP)

		if err != nil {
			return nil, err
		}

		return l, nil
	}

	sweeper := discovery.NewARPScanner(opener, conf.Discovery.Timeout, conf.Discovery.Retries)

	names := resolve.NewNameResolver(
		resolve.NewReverseDNS(resolvConf, conf.Resolver.DNSTimeout),
		resolve.NewLLMNR(conf.Resolver.DNSTimeout),
		resolve.NewMDNSBrowser(conf.Resolver.MDNSServices, conf.Resolver.MDNSWindow),
	)

	pipeline := enrich.NewPipeline(enrich.Deps{
		Vendors: resolve.NewVendorResolver(
			conf.Vendor.URL,
			conf.Vendor.Timeout,
			conf.Vendor.RateLimit,
			conf.Vendor.Burst,
		),
		Names:      names,
		OS:         resolve.NewICMPDetector(conf.Resolver.PingTimeout),
		Prober:     newProber(conf.Probe),
		Classifier: classify.LoadClassifier(conf.Classifier.ModelFile),
		Store:      deviceService,
		Notifier:   newNotifier(conf, eventManager),
	}, conf.Risk.AlertThreshold, conf.Enrich.Workers)

	orchestrator := scan.NewOrchestrator(cidr, sweeper, pipeline, deviceService, eventManager)

	scheduler := scan.NewScheduler(ctx, orchestrator, conf.Scheduler.Interval)

	gateway := networkInfo.Gateway

	engine := isolation.NewEngine(
		conf.Isolation,
		networkInfo.UserIP,
		func() net.IP { return gateway },
		opener,
		link.NewProcNeighborCache(),
		deviceService,
		eventManager,
	)

	c := New(
		ctx,
		conf,
		networkInfo,
		deviceService,
		eventManager,
		orchestrator,
		scheduler,
		engine,
		activity.NewRecorder(activity.NewSqliteRepo(db)),
	)

	c.StartMonitor()

	return c, nil
}

// CreateFromRuntimeConfig loads the configuration file and database shared
// through viper and returns a fully wired core
func CreateFromRuntimeConfig(ctx context.Context) (*Core, error) {
	conf, err := LoadConfig()

	if err != nil {
		return nil, err
	}

	dbFile, _ := viper.Get("database-file").(string)

	db, err := OpenDatabase(dbFile)

	if err != nil {
		return nil, err
	}

	return CreateNewAppCore(ctx, *conf, db)
}
