package probe_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/robgonnella/aegis/internal/probe"
	"github.com/stretchr/testify/assert"
)

func TestCatalogScore(t *testing.T) {
	catalog := probe.DefaultCatalog

	t.Run("telnet alone scores 50", func(st *testing.T) {
		assert.Equal(st, 50, catalog.Score([]int{23}))
	})

	t.Run("ssh and rdp score 35", func(st *testing.T) {
		assert.Equal(st, 35, catalog.Score([]int{22, 3389}))
	})

	t.Run("caps at 100", func(st *testing.T) {
		assert.Equal(st, 100, catalog.Score([]int{23, 21, 3389, 5900, 445}))
	})

	t.Run("ignores ports outside the catalog", func(st *testing.T) {
		assert.Equal(st, 0, catalog.Score([]int{12345}))
	})

	t.Run("every catalog combination stays within bounds", func(st *testing.T) {
		all := catalog.Ports()

		for i := range all {
			score := catalog.Score(all[:i+1])
			assert.GreaterOrEqual(st, score, 0)
			assert.LessOrEqual(st, score, probe.MaxRiskScore)
		}
	})

	t.Run("builds sorted result with summary", func(st *testing.T) {
		result := catalog.NewResult([]int{443, 22, 80})

		assert.Equal(st, []int{22, 80, 443}, result.OpenPorts)
		assert.Equal(st, "SSH, HTTP, HTTPS", result.Summary())
		assert.Equal(st, 20, result.RiskScore)
	})

	t.Run("summarizes empty result", func(st *testing.T) {
		result := catalog.NewResult(nil)

		assert.Equal(st, []int{}, result.OpenPorts)
		assert.Equal(st, "No open ports", result.Summary())
	})
}

func TestConnectProber(t *testing.T) {
	t.Run("marks only successful connections open", func(st *testing.T) {
		dialed := make(chan string, len(probe.DefaultCatalog))

		dial := func(ctx context.Context, network, address string) (net.Conn, error) {
			dialed <- address

			switch address {
			case "10.0.0.5:23", "10.0.0.5:80":
				client, server := net.Pipe()
				server.Close()
				return client, nil
			case "10.0.0.5:22":
				<-ctx.Done()
				return nil, ctx.Err()
			default:
				return nil, errors.New("connection refused")
			}
		}

		prober := probe.NewConnectProber(probe.DefaultCatalog, 20*time.Millisecond, 4).
			WithDialer(dial)

		result, err := prober.Probe(context.Background(), "10.0.0.5")

		assert.NoError(st, err)
		assert.Equal(st, []int{23, 80}, result.OpenPorts)
		assert.Equal(st, 60, result.RiskScore)
		assert.Equal(st, "Telnet, HTTP", result.Summary())
		assert.Equal(st, len(probe.DefaultCatalog), len(dialed))
	})
}
