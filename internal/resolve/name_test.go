package resolve_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/grandcat/zeroconf"
	"github.com/miekg/dns"
	mock_resolve "github.com/robgonnella/aegis/internal/mock/resolve"
	"github.com/robgonnella/aegis/internal/resolve"
	"github.com/stretchr/testify/assert"
)

func TestCleanHostname(t *testing.T) {
	cases := map[string]string{
		"galaxy-s24.lan.":          "galaxy-s24",
		"macbook.local":            "macbook",
		"printer":                  "printer",
		"Living Room TV@host":      "Living Room TV",
		" desktop.home.arpa. ":     "desktop",
		"":                         "",
	}

	for input, expected := range cases {
		t.Run(input, func(st *testing.T) {
			assert.Equal(st, expected, resolve.CleanHostname(input))
		})
	}
}

func TestNameResolver(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	ctx := context.Background()

	t.Run("falls through failures and short names", func(st *testing.T) {
		first := mock_resolve.NewMockNameSource(ctrl)
		second := mock_resolve.NewMockNameSource(ctrl)
		third := mock_resolve.NewMockNameSource(ctrl)

		first.EXPECT().Lookup(ctx, "10.0.0.4").Return(resolve.Identity{}, errors.New("timeout"))
		first.EXPECT().Source().Return("first").AnyTimes()
		second.EXPECT().Lookup(ctx, "10.0.0.4").Return(resolve.Identity{Name: "tv.lan", TypeHint: "media"}, nil)
		third.EXPECT().Lookup(ctx, "10.0.0.4").Return(resolve.Identity{Name: "living-room-tv.local."}, nil)

		resolver := resolve.NewNameResolver(first, second, third)

		id := resolver.Resolve(ctx, "10.0.0.4")

		assert.Equal(st, "living-room-tv", id.Name)
		assert.Equal(st, "media", id.TypeHint)
	})

	t.Run("stops at first usable name", func(st *testing.T) {
		first := mock_resolve.NewMockNameSource(ctrl)
		second := mock_resolve.NewMockNameSource(ctrl)

		first.EXPECT().Lookup(ctx, "10.0.0.5").Return(resolve.Identity{Name: "nas.home."}, nil)

		resolver := resolve.NewNameResolver(first, second)

		id := resolver.Resolve(ctx, "10.0.0.5")

		assert.Equal(st, "nas", id.Name)
	})

	t.Run("returns empty identity when nothing answers", func(st *testing.T) {
		first := mock_resolve.NewMockNameSource(ctrl)

		first.EXPECT().Lookup(ctx, "10.0.0.6").Return(resolve.Identity{}, errors.New("nope"))
		first.EXPECT().Source().Return("first").AnyTimes()

		resolver := resolve.NewNameResolver(first)

		assert.Equal(st, resolve.Identity{}, resolver.Resolve(ctx, "10.0.0.6"))
	})
}

func TestPTRSource(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")

	if err != nil {
		t.Logf("failed to listen: %s", err.Error())
		t.FailNow()
	}

	started := make(chan struct{})

	server := &dns.Server{
		PacketConn:        pc,
		NotifyStartedFunc: func() { close(started) },
		Handler: dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
			m := new(dns.Msg)
			m.SetReply(r)

			if r.Question[0].Name == "4.0.0.10.in-addr.arpa." {
				m.Answer = append(m.Answer, &dns.PTR{
					Hdr: dns.RR_Header{Name: r.Question[0].Name, Rrtype: dns.TypePTR, Class: dns.ClassINET, Ttl: 60},
					Ptr: "office-pc.lan.",
				})
			} else {
				m.SetRcode(r, dns.RcodeNameError)
			}

			w.WriteMsg(m)
		}),
	}

	go server.ActivateAndServe()

	defer server.Shutdown()

	<-started

	source := resolve.NewPTRSource("test", func(string) []string {
		return []string{pc.LocalAddr().String()}
	}, time.Second)

	t.Run("resolves ptr record", func(st *testing.T) {
		id, err := source.Lookup(context.Background(), "10.0.0.4")

		assert.NoError(st, err)
		assert.Equal(st, "office-pc.lan.", id.Name)
	})

	t.Run("returns error without answer", func(st *testing.T) {
		_, err := source.Lookup(context.Background(), "10.0.0.5")

		assert.Error(st, err)
	})

	t.Run("returns error for invalid address", func(st *testing.T) {
		_, err := source.Lookup(context.Background(), "nope")

		assert.Error(st, err)
	})
}

func TestMDNSBrowser(t *testing.T) {
	calls := 0

	browser := resolve.NewMDNSBrowser([]string{"_googlecast._tcp"}, 50*time.Millisecond).
		WithBrowseFunc(func(ctx context.Context, service string, entries chan *zeroconf.ServiceEntry) error {
			calls++

			entry := zeroconf.NewServiceEntry("Kitchen Speaker", service, "local.")
			entry.HostName = "kitchen-speaker.local."
			entry.AddrIPv4 = []net.IP{net.ParseIP("192.168.1.70")}

			go func() {
				select {
				case entries <- entry:
				case <-ctx.Done():
				}
			}()

			return nil
		})

	t.Run("answers from snapshot with hint", func(st *testing.T) {
		id, err := browser.Lookup(context.Background(), "192.168.1.70")

		assert.NoError(st, err)
		assert.Equal(st, "kitchen-speaker.local.", id.Name)
		assert.Equal(st, "media", id.TypeHint)
	})

	t.Run("reuses snapshot for other hosts", func(st *testing.T) {
		_, err := browser.Lookup(context.Background(), "192.168.1.71")

		assert.Error(st, err)
		assert.Equal(st, 1, calls)
	})
}

func TestOSFromTTL(t *testing.T) {
	cases := []struct {
		ttl      int
		expected string
	}{
		{0, resolve.OSUnknown},
		{52, resolve.OSUnix},
		{64, resolve.OSUnix},
		{65, resolve.OSWindows},
		{128, resolve.OSWindows},
		{200, resolve.OSNetwork},
		{255, resolve.OSNetwork},
		{300, resolve.OSUnknown},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, resolve.OSFromTTL(c.ttl))
	}
}
