package alert_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/emersion/go-sasl"
	"github.com/golang/mock/gomock"
	"github.com/robgonnella/aegis/internal/alert"
	"github.com/robgonnella/aegis/internal/classify"
	"github.com/robgonnella/aegis/internal/config"
	"github.com/robgonnella/aegis/internal/device"
	"github.com/robgonnella/aegis/internal/event"
	mock_alert "github.com/robgonnella/aegis/internal/mock/alert"
	mock_event "github.com/robgonnella/aegis/internal/mock/event"
	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, alert.LevelCritical, alert.Level(75))
	assert.Equal(t, alert.LevelCritical, alert.Level(100))
	assert.Equal(t, alert.LevelWarning, alert.Level(40))
	assert.Equal(t, alert.LevelWarning, alert.Level(74))
	assert.Equal(t, "", alert.Level(39))
}

func TestDedup(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	ctx := context.Background()

	t.Run("notifies once per address", func(st *testing.T) {
		next := mock_alert.NewMockNotifier(ctrl)

		d := &device.Device{IP: "10.0.0.2", RiskScore: 50}

		next.EXPECT().Notify(ctx, d).Return(nil).Times(1)

		dedup := alert.NewDedup(next)

		assert.NoError(st, dedup.Notify(ctx, d))
		assert.NoError(st, dedup.Notify(ctx, d))
	})

	t.Run("retries after failed delivery", func(st *testing.T) {
		next := mock_alert.NewMockNotifier(ctrl)

		d := &device.Device{IP: "10.0.0.3", RiskScore: 50}

		gomock.InOrder(
			next.EXPECT().Notify(ctx, d).Return(errors.New("relay down")),
			next.EXPECT().Notify(ctx, d).Return(nil),
		)

		dedup := alert.NewDedup(next)

		assert.Error(st, dedup.Notify(ctx, d))
		assert.NoError(st, dedup.Notify(ctx, d))
		assert.NoError(st, dedup.Notify(ctx, d))
	})
}

func TestMulti(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	ctx := context.Background()

	d := &device.Device{IP: "10.0.0.4", RiskScore: 80}

	t.Run("calls every notifier and combines errors", func(st *testing.T) {
		first := mock_alert.NewMockNotifier(ctrl)
		second := mock_alert.NewMockNotifier(ctrl)
		third := mock_alert.NewMockNotifier(ctrl)

		first.EXPECT().Notify(ctx, d).Return(errors.New("first failed"))
		second.EXPECT().Notify(ctx, d).Return(nil)
		third.EXPECT().Notify(ctx, d).Return(errors.New("third failed"))

		err := alert.NewMulti(first, second, third).Notify(ctx, d)

		assert.Error(st, err)
		assert.Contains(st, err.Error(), "first failed")
		assert.Contains(st, err.Error(), "third failed")
	})

	t.Run("returns nil when all succeed", func(st *testing.T) {
		first := mock_alert.NewMockNotifier(ctrl)

		first.EXPECT().Notify(ctx, d).Return(nil)

		assert.NoError(st, alert.NewMulti(first).Notify(ctx, d))
	})
}

func TestLogNotifier(t *testing.T) {
	err := alert.NewLogNotifier().Notify(context.Background(), &device.Device{IP: "10.0.0.5"})
	assert.NoError(t, err)
}

func TestEventNotifier(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	events := mock_event.NewMockManager(ctrl)

	d := &device.Device{IP: "10.0.0.9", RiskScore: 60}

	events.EXPECT().Send(event.Event{Type: event.AlertEventType, Payload: d})

	err := alert.NewEventNotifier(events).Notify(context.Background(), d)

	assert.NoError(t, err)
}

func TestSMTPNotifier(t *testing.T) {
	conf := config.SMTP{
		Host:     "mail.example.com",
		Port:     587,
		Username: "aegis",
		Password: "secret",
		From:     "aegis@example.com",
		To:       []string{"admin@example.com"},
	}

	d := &device.Device{
		IP:          "10.0.0.6",
		MAC:         "00:11:22:33:44:55",
		DisplayName: "Telnet Box",
		Type:        "server",
		OpenPorts:   []int{23},
		PortSummary: "Telnet",
		RiskScore:   80,
	}

	t.Run("sends formatted message", func(st *testing.T) {
		var (
			gotAddr string
			gotAuth sasl.Client
			gotTo   []string
			gotBody string
		)

		notifier := alert.NewSMTPNotifier(conf, classify.DefaultThresholds()).
			WithSendFunc(func(addr string, auth sasl.Client, from string, to []string, msg io.Reader) error {
				body, err := io.ReadAll(msg)

				gotAddr = addr
				gotAuth = auth
				gotTo = to
				gotBody = string(body)

				return err
			})

		err := notifier.Notify(context.Background(), d)

		assert.NoError(st, err)
		assert.Equal(st, "mail.example.com:587", gotAddr)
		assert.NotNil(st, gotAuth)
		assert.Equal(st, []string{"admin@example.com"}, gotTo)
		assert.True(st, strings.Contains(gotBody, "Subject: [aegis CRITICAL] risky device Telnet Box (10.0.0.6)"))
		assert.True(st, strings.Contains(gotBody, "High Risk"))
	})

	t.Run("returns wrapped send error", func(st *testing.T) {
		sendErr := errors.New("connection refused")

		notifier := alert.NewSMTPNotifier(conf, classify.DefaultThresholds()).
			WithSendFunc(func(string, sasl.Client, string, []string, io.Reader) error {
				return sendErr
			})

		err := notifier.Notify(context.Background(), d)

		assert.ErrorIs(st, err, sendErr)
	})

	t.Run("refuses to send when not configured", func(st *testing.T) {
		notifier := alert.NewSMTPNotifier(config.SMTP{}, classify.DefaultThresholds())

		assert.False(st, notifier.Enabled())
		assert.Error(st, notifier.Notify(context.Background(), d))
	})
}
