package isolation_test

import (
	"bytes"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/robgonnella/aegis/internal/config"
	"github.com/robgonnella/aegis/internal/exception"
	"github.com/robgonnella/aegis/internal/isolation"
	"github.com/robgonnella/aegis/internal/link"
	mock_device "github.com/robgonnella/aegis/internal/mock/device"
	mock_link "github.com/robgonnella/aegis/internal/mock/link"
	"github.com/stretchr/testify/assert"
)

var (
	selfIP     = net.ParseIP("192.168.1.5").To4()
	selfMAC    = mac("00:00:00:00:00:05")
	gatewayIP  = net.ParseIP("192.168.1.1").To4()
	gatewayMAC = mac("00:00:00:00:00:01")
	targetIP   = net.ParseIP("192.168.1.20").To4()
	targetMAC  = mac("00:00:00:00:00:20")
)

func mac(s string) net.HardwareAddr {
	hw, _ := net.ParseMAC(s)
	return hw
}

var conf = config.Isolation{
	Interval:       10 * time.Millisecond,
	RestoreCount:   5,
	ResolveTimeout: 30 * time.Millisecond,
}

type frame struct {
	dst net.HardwareAddr
	pkt link.Packet
}

type recorder struct {
	frames []frame
	mux    sync.Mutex
}

func (r *recorder) write(dst net.HardwareAddr, pkt link.Packet) error {
	r.mux.Lock()
	defer r.mux.Unlock()

	r.frames = append(r.frames, frame{dst: dst, pkt: pkt})

	return nil
}

func (r *recorder) count(fn func(f frame) bool) int {
	r.mux.Lock()
	defer r.mux.Unlock()

	n := 0

	for _, f := range r.frames {
		if fn(f) {
			n++
		}
	}

	return n
}

func gateway() net.IP {
	return gatewayIP
}

func mockLink(ctrl *gomock.Controller, rec *recorder) *mock_link.MockLink {
	l := mock_link.NewMockLink(ctrl)

	var packets <-chan link.Packet = make(chan link.Packet)

	l.EXPECT().HardwareAddr().Return(selfMAC).AnyTimes()
	l.EXPECT().IP().Return(selfIP).AnyTimes()
	l.EXPECT().Listen(gomock.Any()).Return(packets).AnyTimes()
	l.EXPECT().WriteARP(gomock.Any(), gomock.Any()).DoAndReturn(rec.write).AnyTimes()
	l.EXPECT().Close().Return(nil)

	return l
}

func resolvingCache(ctrl *gomock.Controller) *mock_link.MockNeighborCache {
	cache := mock_link.NewMockNeighborCache(ctrl)

	cache.EXPECT().Lookup(gomock.Any()).DoAndReturn(func(ip net.IP) (net.HardwareAddr, bool) {
		switch {
		case ip.Equal(targetIP):
			return targetMAC, true
		case ip.Equal(gatewayIP):
			return gatewayMAC, true
		default:
			return nil, false
		}
	}).AnyTimes()

	return cache
}

func TestEngineValidation(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	opener := func() (link.Link, error) {
		return nil, errors.New("should not open")
	}

	engine := isolation.NewEngine(conf, selfIP, gateway, opener, nil, nil, nil)

	t.Run("rejects malformed address", func(st *testing.T) {
		_, err := engine.Start("not-an-ip")
		assert.ErrorIs(st, err, exception.ErrInvalidAddress)
	})

	t.Run("refuses to isolate this host", func(st *testing.T) {
		_, err := engine.Start(selfIP.String())
		assert.ErrorIs(st, err, exception.ErrProtectedTarget)
	})

	t.Run("refuses to isolate the gateway", func(st *testing.T) {
		_, err := engine.Start(gatewayIP.String())
		assert.ErrorIs(st, err, exception.ErrProtectedTarget)
	})

	t.Run("stopping unknown target creates nothing", func(st *testing.T) {
		status := engine.Stop("192.168.1.99")

		assert.Equal(st, isolation.StateInactive, status.State)
		assert.Empty(st, engine.Active())
		assert.Equal(st, isolation.StateInactive, engine.Status("192.168.1.99").State)

		<-engine.Done("192.168.1.99")
	})
}

func TestEngineLifecycle(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	rec := &recorder{}

	l := mockLink(ctrl, rec)

	var opens int32

	opener := func() (link.Link, error) {
		atomic.AddInt32(&opens, 1)
		return l, nil
	}

	store := mock_device.NewMockService(ctrl)

	gomock.InOrder(
		store.EXPECT().SetBlocked(targetMAC.String(), true).Return(nil),
		store.EXPECT().SetBlocked(targetMAC.String(), false).Return(nil),
	)

	engine := isolation.NewEngine(conf, selfIP, gateway, opener, resolvingCache(ctrl), store, nil)

	first, err := engine.Start(targetIP.String())

	assert.NoError(t, err)
	assert.Equal(t, isolation.StateResolving, first.State)

	_, err = engine.Start(targetIP.String())

	assert.NoError(t, err)
	assert.Equal(t, []string{targetIP.String()}, engine.Active())

	assert.Eventually(t, func() bool {
		return engine.Status(targetIP.String()).State == isolation.StateActive
	}, time.Second, 5*time.Millisecond)

	// wait for a few spoofing rounds
	assert.Eventually(t, func() bool {
		return rec.count(func(f frame) bool {
			return bytes.Equal(f.dst, targetMAC) && bytes.Equal(f.pkt.SenderMAC, selfMAC)
		}) >= 2
	}, time.Second, 5*time.Millisecond)

	status := engine.Status(targetIP.String())

	assert.Equal(t, targetMAC.String(), status.TargetMAC)
	assert.Equal(t, gatewayMAC.String(), status.GatewayMAC)

	engine.Stop(targetIP.String())
	engine.Stop(targetIP.String())

	<-engine.Done(targetIP.String())

	assert.Equal(t, isolation.StateInactive, engine.Status(targetIP.String()).State)
	assert.Empty(t, engine.Active())
	assert.Equal(t, int32(1), atomic.LoadInt32(&opens))

	t.Run("spoofs both parties with unicast replies", func(st *testing.T) {
		toTarget := rec.count(func(f frame) bool {
			return bytes.Equal(f.dst, targetMAC) &&
				f.pkt.Operation == link.OpReply &&
				f.pkt.SenderIP.Equal(gatewayIP) &&
				bytes.Equal(f.pkt.SenderMAC, selfMAC)
		})

		toGateway := rec.count(func(f frame) bool {
			return bytes.Equal(f.dst, gatewayMAC) &&
				f.pkt.Operation == link.OpReply &&
				f.pkt.SenderIP.Equal(targetIP) &&
				bytes.Equal(f.pkt.SenderMAC, selfMAC)
		})

		broadcasts := rec.count(func(f frame) bool {
			return bytes.Equal(f.dst, link.Broadcast)
		})

		assert.GreaterOrEqual(st, toTarget, 2)
		assert.GreaterOrEqual(st, toGateway, 2)
		assert.Equal(st, 0, broadcasts)
	})

	t.Run("restores genuine mappings", func(st *testing.T) {
		restoredTarget := rec.count(func(f frame) bool {
			return bytes.Equal(f.dst, targetMAC) &&
				f.pkt.SenderIP.Equal(gatewayIP) &&
				bytes.Equal(f.pkt.SenderMAC, gatewayMAC)
		})

		restoredGateway := rec.count(func(f frame) bool {
			return bytes.Equal(f.dst, gatewayMAC) &&
				f.pkt.SenderIP.Equal(targetIP) &&
				bytes.Equal(f.pkt.SenderMAC, targetMAC)
		})

		assert.Equal(st, conf.RestoreCount, restoredTarget)
		assert.Equal(st, conf.RestoreCount, restoredGateway)
	})
}

func TestEngineOfflineTarget(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	rec := &recorder{}

	l := mockLink(ctrl, rec)

	opener := func() (link.Link, error) {
		return l, nil
	}

	cache := mock_link.NewMockNeighborCache(ctrl)
	cache.EXPECT().Lookup(gomock.Any()).Return(nil, false).AnyTimes()

	store := mock_device.NewMockService(ctrl)

	engine := isolation.NewEngine(conf, selfIP, gateway, opener, cache, store, nil)

	_, err := engine.Start(targetIP.String())

	assert.NoError(t, err)

	<-engine.Done(targetIP.String())

	status := engine.Status(targetIP.String())

	assert.Equal(t, isolation.StateInactive, status.State)
	assert.Contains(t, status.LastError, exception.ErrTargetOffline.Error())
	assert.Empty(t, engine.Active())

	replies := rec.count(func(f frame) bool {
		return f.pkt.Operation == link.OpReply
	})

	assert.Equal(t, 0, replies)
}

func TestEngineLinkUnavailable(t *testing.T) {
	opener := func() (link.Link, error) {
		return nil, exception.ErrLinkUnavailable
	}

	engine := isolation.NewEngine(conf, selfIP, gateway, opener, nil, nil, nil)

	_, err := engine.Start(targetIP.String())

	assert.NoError(t, err)

	<-engine.Done(targetIP.String())

	status := engine.Status(targetIP.String())

	assert.Equal(t, isolation.StateInactive, status.State)
	assert.Equal(t, exception.ErrLinkUnavailable.Error(), status.LastError)
}

func TestEngineStopAll(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	rec := &recorder{}

	otherIP := "192.168.1.21"

	opener := func() (link.Link, error) {
		return mockLink(ctrl, rec), nil
	}

	cache := mock_link.NewMockNeighborCache(ctrl)
	macs := map[string]net.HardwareAddr{
		gatewayIP.String(): gatewayMAC,
		targetIP.String():  targetMAC,
		otherIP:            mac("00:00:00:00:00:21"),
	}

	cache.EXPECT().Lookup(gomock.Any()).DoAndReturn(func(ip net.IP) (net.HardwareAddr, bool) {
		hw, ok := macs[ip.String()]
		return hw, ok
	}).AnyTimes()

	engine := isolation.NewEngine(conf, selfIP, gateway, opener, cache, nil, nil)

	_, err := engine.Start(targetIP.String())
	assert.NoError(t, err)

	_, err = engine.Start(otherIP)
	assert.NoError(t, err)

	assert.Equal(t, []string{targetIP.String(), otherIP}, engine.Active())

	stopped := engine.StopAll()

	assert.Equal(t, []string{targetIP.String(), otherIP}, stopped)

	<-engine.Done(targetIP.String())
	<-engine.Done(otherIP)

	assert.Empty(t, engine.Active())
}
