package core_test

import (
	"context"
	"fmt"
	"net"
	"path"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/robgonnella/aegis/internal/activity"
	"github.com/robgonnella/aegis/internal/config"
	"github.com/robgonnella/aegis/internal/core"
	"github.com/robgonnella/aegis/internal/device"
	"github.com/robgonnella/aegis/internal/discovery"
	"github.com/robgonnella/aegis/internal/event"
	"github.com/robgonnella/aegis/internal/exception"
	"github.com/robgonnella/aegis/internal/isolation"
	"github.com/robgonnella/aegis/internal/link"
	mock_device "github.com/robgonnella/aegis/internal/mock/device"
	mock_discovery "github.com/robgonnella/aegis/internal/mock/discovery"
	mock_scan "github.com/robgonnella/aegis/internal/mock/scan"
	"github.com/robgonnella/aegis/internal/scan"
	"github.com/robgonnella/aegis/internal/test_util"
	"github.com/robgonnella/aegis/internal/util"
	"github.com/stretchr/testify/assert"
)

var networkInfo = &util.NetworkInfo{
	Hostname:  "test-host",
	Interface: &net.Interface{Name: "eth0"},
	Gateway:   net.ParseIP("192.168.1.1").To4(),
	UserIP:    net.ParseIP("192.168.1.5").To4(),
	Cidr:      "192.168.1.0/24",
}

type fixture struct {
	core      *core.Core
	sweeper   *mock_discovery.MockSweeper
	processor *mock_scan.MockProcessor
	devices   *mock_device.MockService
}

func setup(st *testing.T, ctrl *gomock.Controller, conf config.Config) fixture {
	sweeper := mock_discovery.NewMockSweeper(ctrl)
	processor := mock_scan.NewMockProcessor(ctrl)
	devices := mock_device.NewMockService(ctrl)

	ctx := context.Background()

	eventManager := event.NewEventManager()

	db, err := test_util.GetDBConnection(path.Join(st.TempDir(), "activity.db"))

	if err != nil {
		st.Logf("failed to create test db: %s", err.Error())
		st.FailNow()
	}

	if err := test_util.Migrate(db, &activity.LogModel{}); err != nil {
		st.Logf("failed to migrate test db: %s", err.Error())
		st.FailNow()
	}

	orchestrator := scan.NewOrchestrator(networkInfo.Cidr, sweeper, processor, devices, eventManager)

	scheduler := scan.NewScheduler(ctx, orchestrator, conf.Scheduler.Interval).
		WithStep(5 * time.Millisecond)

	opener := func() (link.Link, error) {
		return nil, exception.ErrLinkUnavailable
	}

	engine := isolation.NewEngine(
		conf.Isolation,
		networkInfo.UserIP,
		func() net.IP { return networkInfo.Gateway },
		opener,
		nil,
		nil,
		eventManager,
	)

	c := core.New(
		ctx,
		conf,
		networkInfo,
		devices,
		eventManager,
		orchestrator,
		scheduler,
		engine,
		activity.NewRecorder(activity.NewSqliteRepo(db)),
	)

	c.StartMonitor()

	st.Cleanup(c.Close)

	return fixture{
		core:      c,
		sweeper:   sweeper,
		processor: processor,
		devices:   devices,
	}
}

func TestCore(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	conf := *config.Default()

	t.Run("returns config and network info", func(st *testing.T) {
		f := setup(st, ctrl, conf)

		assert.Equal(st, conf, f.core.Conf())
		assert.Equal(st, networkInfo, f.core.NetworkInfo())
	})

	t.Run("scan returns immediately and rejects overlap", func(st *testing.T) {
		f := setup(st, ctrl, conf)

		release := make(chan struct{})

		f.sweeper.EXPECT().Sweep(gomock.Any(), networkInfo.Cidr).DoAndReturn(
			func(context.Context, string) ([]discovery.Result, error) {
				<-release
				return []discovery.Result{}, nil
			},
		)

		status, err := f.core.Scan()

		assert.NoError(st, err)
		assert.True(st, status.Running)

		_, err = f.core.Scan()

		assert.ErrorIs(st, err, exception.ErrScanInProgress)

		close(release)

		assert.Eventually(st, func() bool {
			return !f.core.ScanStatus().Running
		}, time.Second, 5*time.Millisecond)

		assert.Equal(st, 0, f.core.ScanStatus().DeviceCount)
	})

	t.Run("force scan clears devices first", func(st *testing.T) {
		f := setup(st, ctrl, conf)

		gomock.InOrder(
			f.devices.EXPECT().ClearAll().Return(nil),
			f.sweeper.EXPECT().Sweep(gomock.Any(), networkInfo.Cidr).Return([]discovery.Result{}, nil),
		)

		status, err := f.core.ScanNow(true)

		assert.NoError(st, err)
		assert.False(st, status.Running)
	})

	t.Run("controls auto scan", func(st *testing.T) {
		f := setup(st, ctrl, conf)

		f.sweeper.EXPECT().Sweep(gomock.Any(), networkInfo.Cidr).Return([]discovery.Result{}, nil).AnyTimes()

		assert.True(st, f.core.SetAutoScanInterval(time.Hour))
		assert.True(st, f.core.StartAutoScan(0))
		assert.False(st, f.core.StartAutoScan(0))
		assert.False(st, f.core.SetAutoScanInterval(time.Minute))

		status := f.core.AutoScanStatus()

		assert.True(st, status.Enabled)

		assert.True(st, f.core.StopAutoScan())
		assert.False(st, f.core.AutoScanStatus().Enabled)
	})

	t.Run("blocks by ip", func(st *testing.T) {
		f := setup(st, ctrl, conf)

		status, err := f.core.Block("192.168.1.20")

		assert.NoError(st, err)
		assert.Equal(st, "192.168.1.20", status.Target)

		<-f.core.BlockDone("192.168.1.20")

		// the link cannot be opened in tests
		assert.Equal(st, isolation.StateInactive, f.core.BlockStatus("192.168.1.20").State)
		assert.Empty(st, f.core.Blocked())
	})

	t.Run("blocks by hardware address", func(st *testing.T) {
		f := setup(st, ctrl, conf)

		f.devices.EXPECT().Get("00:11:22:33:44:55").Return(&device.Device{
			MAC: "00:11:22:33:44:55",
			IP:  "192.168.1.30",
		}, nil)

		status, err := f.core.Block("00:11:22:33:44:55")

		assert.NoError(st, err)
		assert.Equal(st, "192.168.1.30", status.Target)

		<-f.core.BlockDone("192.168.1.30")
	})

	t.Run("rejects invalid and protected targets", func(st *testing.T) {
		f := setup(st, ctrl, conf)

		_, err := f.core.Block("nonsense")
		assert.ErrorIs(st, err, exception.ErrInvalidAddress)

		_, err = f.core.Block(networkInfo.Gateway.String())
		assert.ErrorIs(st, err, exception.ErrProtectedTarget)

		_, err = f.core.Block(networkInfo.UserIP.String())
		assert.ErrorIs(st, err, exception.ErrProtectedTarget)
	})

	t.Run("unblock of unknown target is a no-op", func(st *testing.T) {
		f := setup(st, ctrl, conf)

		status, err := f.core.Unblock("192.168.1.77")

		assert.NoError(st, err)
		assert.Equal(st, isolation.StateInactive, status.State)
		assert.Empty(st, f.core.Blocked())
	})

	t.Run("block all skips this host and the gateway", func(st *testing.T) {
		f := setup(st, ctrl, conf)

		f.devices.EXPECT().ListAll().Return([]*device.Device{
			{IP: networkInfo.Gateway.String()},
			{IP: networkInfo.UserIP.String()},
			{IP: "192.168.1.40"},
			{IP: "192.168.1.41"},
		}, nil)

		started, err := f.core.BlockAll()

		assert.NoError(st, err)
		assert.Equal(st, []string{"192.168.1.40", "192.168.1.41"}, started)

		<-f.core.BlockDone("192.168.1.40")
		<-f.core.BlockDone("192.168.1.41")

		assert.Empty(st, f.core.UnblockAll())
	})

	t.Run("trains and saves model", func(st *testing.T) {
		trainConf := conf
		trainConf.Classifier.ModelFile = path.Join(st.TempDir(), "model.yml")

		f := setup(st, ctrl, trainConf)

		devices := []*device.Device{}

		for i := 0; i < 10; i++ {
			devices = append(devices, &device.Device{
				MAC:  fmt.Sprintf("00:11:22:00:00:%02x", i),
				Type: "media",
			})
		}

		f.devices.EXPECT().ListAll().Return(devices, nil)

		model, err := f.core.Train()

		assert.NoError(st, err)
		assert.Equal(st, 10, model.Samples)
		assert.FileExists(st, trainConf.Classifier.ModelFile)
	})

	t.Run("refuses to train without enough samples", func(st *testing.T) {
		f := setup(st, ctrl, conf)

		f.devices.EXPECT().ListAll().Return([]*device.Device{}, nil)

		_, err := f.core.Train()

		assert.ErrorIs(st, err, exception.ErrNotEnoughSamples)
	})

	t.Run("passes device operations through", func(st *testing.T) {
		f := setup(st, ctrl, conf)

		nickname := "office printer"

		f.devices.EXPECT().ListAll().Return([]*device.Device{}, nil)
		f.devices.EXPECT().SetNickname("00:11:22:33:44:55", nickname).Return(&device.Device{Nickname: &nickname}, nil)
		f.devices.EXPECT().ClearAll().Return(nil)

		devices, err := f.core.Devices()

		assert.NoError(st, err)
		assert.Empty(st, devices)

		d, err := f.core.SetNickname("00:11:22:33:44:55", nickname)

		assert.NoError(st, err)
		assert.Equal(st, nickname, *d.Nickname)

		assert.NoError(st, f.core.ClearDevices())
	})

	t.Run("delivers events to listeners", func(st *testing.T) {
		f := setup(st, ctrl, conf)

		f.sweeper.EXPECT().Sweep(gomock.Any(), networkInfo.Cidr).Return([]discovery.Result{}, nil)

		statusChan := make(chan event.Event, 10)

		id := f.core.RegisterEventListener(event.ScanStatusEventType, statusChan)

		defer f.core.RemoveEventListener(id)

		_, err := f.core.ScanNow(false)

		assert.NoError(st, err)

		evt := <-statusChan

		assert.Equal(st, event.ScanStatusEventType, evt.Type)
	})

	t.Run("records actions and outcomes in the activity log", func(st *testing.T) {
		f := setup(st, ctrl, conf)

		nickname := "garage cam"

		f.devices.EXPECT().SetNickname("de:ad:be:ef:00:01", nickname).Return(&device.Device{
			MAC:      "de:ad:be:ef:00:01",
			Nickname: &nickname,
		}, nil)

		_, err := f.core.SetNickname("de:ad:be:ef:00:01", nickname)

		assert.NoError(st, err)

		_, err = f.core.Block("192.168.1.40")

		assert.NoError(st, err)

		<-f.core.BlockDone("192.168.1.40")

		assert.Eventually(st, func() bool {
			entries, err := f.core.RecentLogs(10)

			if err != nil {
				return false
			}

			messages := []string{}

			for _, e := range entries {
				messages = append(messages, e.Message)
			}

			return util.SliceIncludes(messages, `Label set for device de:ad:be:ef:00:01: "garage cam"`) &&
				util.SliceIncludes(messages, "Failed to block device 192.168.1.40: link-layer access unavailable")
		}, time.Second, 10*time.Millisecond)
	})
}
