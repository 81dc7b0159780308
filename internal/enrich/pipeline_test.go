package enrich_test

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/robgonnella/aegis/internal/classify"
	"github.com/robgonnella/aegis/internal/device"
	"github.com/robgonnella/aegis/internal/discovery"
	"github.com/robgonnella/aegis/internal/enrich"
	mock_alert "github.com/robgonnella/aegis/internal/mock/alert"
	mock_classify "github.com/robgonnella/aegis/internal/mock/classify"
	mock_device "github.com/robgonnella/aegis/internal/mock/device"
	mock_probe "github.com/robgonnella/aegis/internal/mock/probe"
	mock_resolve "github.com/robgonnella/aegis/internal/mock/resolve"
	"github.com/robgonnella/aegis/internal/probe"
	"github.com/robgonnella/aegis/internal/resolve"
	"github.com/robgonnella/aegis/internal/test_util"
	"github.com/stretchr/testify/assert"
)

type mocks struct {
	vendors  *mock_resolve.MockVendorLookup
	names    *mock_resolve.MockHostnameResolver
	os       *mock_resolve.MockOSDetector
	prober   *mock_probe.MockProber
	store    *mock_device.MockService
	notifier *mock_alert.MockNotifier
}

func setup(ctrl *gomock.Controller) (*enrich.Pipeline, mocks) {
	return setupWithClassifier(ctrl, classify.NewRuleClassifier())
}

func setupWithClassifier(ctrl *gomock.Controller, classifier classify.Classifier) (*enrich.Pipeline, mocks) {
	m := mocks{
		vendors:  mock_resolve.NewMockVendorLookup(ctrl),
		names:    mock_resolve.NewMockHostnameResolver(ctrl),
		os:       mock_resolve.NewMockOSDetector(ctrl),
		prober:   mock_probe.NewMockProber(ctrl),
		store:    mock_device.NewMockService(ctrl),
		notifier: mock_alert.NewMockNotifier(ctrl),
	}

	pipeline := enrich.NewPipeline(enrich.Deps{
		Vendors:    m.vendors,
		Names:      m.names,
		OS:         m.os,
		Prober:     m.prober,
		Classifier: classifier,
		Store:      m.store,
		Notifier:   m.notifier,
	}, 40, 4)

	return pipeline, m
}

func result(ip, mac string) discovery.Result {
	hw, _ := net.ParseMAC(mac)

	return discovery.Result{
		IP:  net.ParseIP(ip).To4(),
		MAC: hw,
	}
}

func TestEnrich(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	ctx := context.Background()

	t.Run("builds a complete record", func(st *testing.T) {
		pipeline, m := setup(ctrl)

		m.vendors.EXPECT().Lookup(ctx, "00:1a:2b:3c:4d:5e").Return("Cisco Systems")
		m.names.EXPECT().Resolve(ctx, "192.168.1.1").Return(resolve.Identity{Name: "gateway"})
		m.os.EXPECT().Detect(ctx, "192.168.1.1").Return(resolve.Fingerprint{
			OS:      resolve.OSNetwork,
			TTL:     255,
			Latency: test_util.Float(1.5),
		})
		m.prober.EXPECT().Probe(ctx, "192.168.1.1").Return(probe.DefaultCatalog.NewResult([]int{443, 80}), nil)

		d := pipeline.Enrich(ctx, result("192.168.1.1", "00:1A:2B:3C:4D:5E"))

		assert.Equal(st, "00:1a:2b:3c:4d:5e", d.MAC)
		assert.Equal(st, "192.168.1.1", d.IP)
		assert.Equal(st, "Cisco Systems", d.Vendor)
		assert.Equal(st, "gateway", d.Hostname)
		assert.Equal(st, string(classify.Router), d.Type)
		assert.Equal(st, "gateway (Router)", d.DisplayName)
		assert.Equal(st, "Cisco Systems", d.SubLabel)
		assert.Equal(st, "Router OS", d.OS)
		assert.Equal(st, []int{80, 443}, d.OpenPorts)
		assert.Equal(st, "HTTP, HTTPS", d.PortSummary)
		assert.Equal(st, 15, d.RiskScore)
		assert.Equal(st, 1.5, *d.Latency)
		assert.Nil(st, d.Nickname)
		assert.False(st, d.LastSeen.IsZero())
	})

	t.Run("uses safe defaults when every step fails", func(st *testing.T) {
		pipeline, m := setup(ctrl)

		m.vendors.EXPECT().Lookup(ctx, "00:11:22:33:44:55").Return("")
		m.names.EXPECT().Resolve(ctx, "192.168.1.50").Return(resolve.Identity{})
		m.os.EXPECT().Detect(ctx, "192.168.1.50").Return(resolve.Fingerprint{OS: resolve.OSUnknown})
		m.prober.EXPECT().Probe(ctx, "192.168.1.50").Return(nil, errors.New("network down"))

		d := pipeline.Enrich(ctx, result("192.168.1.50", "00:11:22:33:44:55"))

		assert.Equal(st, resolve.UnknownVendor, d.Vendor)
		assert.Equal(st, string(classify.Unknown), d.Type)
		assert.Equal(st, "Device-50", d.DisplayName)
		assert.Equal(st, "No open ports", d.PortSummary)
		assert.Equal(st, 0, d.RiskScore)
		assert.Empty(st, d.OpenPorts)
	})

	t.Run("keeps risk within bounds", func(st *testing.T) {
		pipeline, m := setup(ctrl)

		m.vendors.EXPECT().Lookup(ctx, gomock.Any()).Return("Acme")
		m.names.EXPECT().Resolve(ctx, gomock.Any()).Return(resolve.Identity{})
		m.os.EXPECT().Detect(ctx, gomock.Any()).Return(resolve.Fingerprint{})
		m.prober.EXPECT().Probe(ctx, gomock.Any()).Return(&probe.Result{RiskScore: 250}, nil)

		d := pipeline.Enrich(ctx, result("192.168.1.51", "00:11:22:33:44:56"))

		assert.Equal(st, probe.MaxRiskScore, d.RiskScore)
	})
}

func expectQuietHost(m mocks, ctx context.Context, times int) {
	m.vendors.EXPECT().Lookup(ctx, gomock.Any()).Return("Acme").Times(times)
	m.names.EXPECT().Resolve(ctx, gomock.Any()).Return(resolve.Identity{}).Times(times)
	m.os.EXPECT().Detect(ctx, gomock.Any()).Return(resolve.Fingerprint{}).Times(times)
}

func TestProcess(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	ctx := context.Background()

	t.Run("zero results enrich nothing", func(st *testing.T) {
		pipeline, _ := setup(ctrl)

		assert.Equal(st, 0, pipeline.Process(ctx, []discovery.Result{}))
	})

	t.Run("persists every device and alerts risky ones", func(st *testing.T) {
		pipeline, m := setup(ctrl)

		expectQuietHost(m, ctx, 3)

		m.prober.EXPECT().Probe(ctx, "10.0.0.2").Return(probe.DefaultCatalog.NewResult([]int{22}), nil)
		m.prober.EXPECT().Probe(ctx, "10.0.0.3").Return(probe.DefaultCatalog.NewResult([]int{23}), nil)
		m.prober.EXPECT().Probe(ctx, "10.0.0.4").Return(probe.DefaultCatalog.NewResult([]int{80}), nil)

		m.store.EXPECT().Upsert(gomock.Any()).DoAndReturn(func(d *device.Device) (*device.Device, error) {
			return d, nil
		}).Times(3)

		m.notifier.EXPECT().Notify(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, d *device.Device) error {
			assert.Equal(st, "10.0.0.3", d.IP)
			return nil
		})

		stored := pipeline.Process(ctx, []discovery.Result{
			result("10.0.0.2", "00:00:00:00:00:02"),
			result("10.0.0.3", "00:00:00:00:00:03"),
			result("10.0.0.4", "00:00:00:00:00:04"),
		})

		assert.Equal(st, 3, stored)
	})

	t.Run("store failure does not abort the batch", func(st *testing.T) {
		pipeline, m := setup(ctrl)

		expectQuietHost(m, ctx, 2)

		m.prober.EXPECT().Probe(ctx, gomock.Any()).Return(probe.DefaultCatalog.NewResult([]int{}), nil).Times(2)

		var calls int32

		m.store.EXPECT().Upsert(gomock.Any()).DoAndReturn(func(d *device.Device) (*device.Device, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				return nil, errors.New("database is locked")
			}
			return d, nil
		}).Times(2)

		stored := pipeline.Process(ctx, []discovery.Result{
			result("10.0.0.5", "00:00:00:00:00:05"),
			result("10.0.0.6", "00:00:00:00:00:06"),
		})

		assert.Equal(st, 1, stored)
	})

	t.Run("alert failure is only logged", func(st *testing.T) {
		pipeline, m := setup(ctrl)

		expectQuietHost(m, ctx, 1)

		m.prober.EXPECT().Probe(ctx, gomock.Any()).Return(probe.DefaultCatalog.NewResult([]int{23, 21}), nil)
		m.store.EXPECT().Upsert(gomock.Any()).DoAndReturn(func(d *device.Device) (*device.Device, error) {
			return d, nil
		})
		m.notifier.EXPECT().Notify(ctx, gomock.Any()).Return(errors.New("relay down"))

		stored := pipeline.Process(ctx, []discovery.Result{result("10.0.0.7", "00:00:00:00:00:07")})

		assert.Equal(st, 1, stored)
	})

	t.Run("worker failure does not crash the batch", func(st *testing.T) {
		classifier := mock_classify.NewMockClassifier(ctrl)

		pipeline, m := setupWithClassifier(ctrl, classifier)

		expectQuietHost(m, ctx, 2)

		m.prober.EXPECT().Probe(ctx, gomock.Any()).Return(probe.DefaultCatalog.NewResult([]int{}), nil).Times(2)

		classifier.EXPECT().Classify(gomock.Any()).DoAndReturn(func(f classify.Features) classify.Category {
			if f.IP == "10.0.0.9" {
				panic("classifier bug")
			}
			return classify.Unknown
		}).Times(2)

		m.store.EXPECT().Upsert(gomock.Any()).DoAndReturn(func(d *device.Device) (*device.Device, error) {
			assert.Equal(st, "10.0.0.10", d.IP)
			return d, nil
		})

		var stored int

		assert.NotPanics(st, func() {
			stored = pipeline.Process(ctx, []discovery.Result{
				result("10.0.0.9", "00:00:00:00:00:09"),
				result("10.0.0.10", "00:00:00:00:00:10"),
			})
		})

		assert.Equal(st, 1, stored)
	})

	t.Run("skips malformed results", func(st *testing.T) {
		pipeline, _ := setup(ctrl)

		stored := pipeline.Process(ctx, []discovery.Result{{IP: net.ParseIP("10.0.0.8")}})

		assert.Equal(st, 0, stored)
	})
}
