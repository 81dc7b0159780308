package alert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	app_info "github.com/robgonnella/aegis/internal/app-info"
	"github.com/robgonnella/aegis/internal/classify"
	"github.com/robgonnella/aegis/internal/config"
	"github.com/robgonnella/aegis/internal/device"
)

// SendFunc delivers a raw message
type SendFunc func(addr string, auth sasl.Client, from string, to []string, msg io.Reader) error

// SMTPNotifier mails alerts through an smtp relay
type SMTPNotifier struct {
	conf       config.SMTP
	thresholds classify.Thresholds
	send       SendFunc
}

// NewSMTPNotifier returns a new instance of SMTPNotifier
func NewSMTPNotifier(conf config.SMTP, thresholds classify.Thresholds) *SMTPNotifier {
	return &SMTPNotifier{
		conf:       conf,
		thresholds: thresholds,
		send:       smtp.SendMail,
	}
}

// WithSendFunc replaces the function used to deliver mail
func (n *SMTPNotifier) WithSendFunc(fn SendFunc) *SMTPNotifier {
	n.send = fn
	return n
}

// Enabled reports whether enough is configured to send mail
func (n *SMTPNotifier) Enabled() bool {
	return n.conf.Host != "" && n.conf.From != "" && len(n.conf.To) > 0
}

// Notify implements Notifier
func (n *SMTPNotifier) Notify(ctx context.Context, d *device.Device) error {
	if !n.Enabled() {
		return errors.New("smtp notifier is not configured")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	var auth sasl.Client

	if n.conf.Username != "" {
		auth = sasl.NewPlainClient("", n.conf.Username, n.conf.Password)
	}

	addr := net.JoinHostPort(n.conf.Host, strconv.Itoa(n.conf.Port))

	msg := n.message(d, time.Now())

	if err := n.send(addr, auth, n.conf.From, n.conf.To, bytes.NewReader(msg)); err != nil {
		return fmt.Errorf("failed to send alert for %s: %w", d.IP, err)
	}

	return nil
}

func (n *SMTPNotifier) message(d *device.Device, now time.Time) []byte {
	level := Level(d.RiskScore)

	if level == "" {
		level = "INFO"
	}

	name := d.DisplayName

	if name == "" {
		name = d.IP
	}

	buf := bytes.Buffer{}

	fmt.Fprintf(&buf, "From: %s\r\n", n.conf.From)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(n.conf.To, ", "))
	fmt.Fprintf(&buf, "Subject: [%s %s] risky device %s (%s)\r\n", app_info.NAME, level, name, d.IP)
	fmt.Fprintf(&buf, "Date: %s\r\n", now.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", classify.Summary(d, n.thresholds))
	fmt.Fprintf(&buf, "IP: %s\r\n", d.IP)
	fmt.Fprintf(&buf, "MAC: %s\r\n", d.MAC)
	fmt.Fprintf(&buf, "Vendor: %s\r\n", d.Vendor)
	fmt.Fprintf(&buf, "Risk score: %d\r\n", d.RiskScore)
	fmt.Fprintf(&buf, "Open ports: %s\r\n", d.PortSummary)

	return buf.Bytes()
}
