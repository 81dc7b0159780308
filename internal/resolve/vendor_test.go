package resolve_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robgonnella/aegis/internal/resolve"
	"github.com/stretchr/testify/assert"
)

func TestVendorResolver(t *testing.T) {
	var hits int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)

		mac := strings.TrimPrefix(r.URL.Path, "/")

		switch mac {
		case "00:1a:2b:3c:4d:5e":
			w.Write([]byte("Cisco Systems, Inc\n"))
		case "00:00:00:00:00:01":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))

	defer server.Close()

	resolver := resolve.NewVendorResolver(server.URL, time.Second, 0, 1)

	ctx := context.Background()

	t.Run("returns vendor and caches it", func(st *testing.T) {
		atomic.StoreInt32(&hits, 0)

		assert.Equal(st, "Cisco Systems, Inc", resolver.Lookup(ctx, "00:1A:2B:3C:4D:5E"))
		assert.Equal(st, "Cisco Systems, Inc", resolver.Lookup(ctx, "00:1a:2b:3c:4d:5e"))
		assert.Equal(st, int32(1), atomic.LoadInt32(&hits))
	})

	t.Run("caches unknown vendor for not found", func(st *testing.T) {
		atomic.StoreInt32(&hits, 0)

		assert.Equal(st, resolve.UnknownVendor, resolver.Lookup(ctx, "00:00:00:00:00:01"))
		assert.Equal(st, resolve.UnknownVendor, resolver.Lookup(ctx, "00:00:00:00:00:01"))
		assert.Equal(st, int32(1), atomic.LoadInt32(&hits))
	})

	t.Run("never queries randomized addresses", func(st *testing.T) {
		atomic.StoreInt32(&hits, 0)

		assert.Equal(st, resolve.UnknownVendor, resolver.Lookup(ctx, "da:a1:19:00:00:01"))
		assert.Equal(st, int32(0), atomic.LoadInt32(&hits))
	})

	t.Run("does not cache transient failures", func(st *testing.T) {
		atomic.StoreInt32(&hits, 0)

		assert.Equal(st, resolve.UnknownVendor, resolver.Lookup(ctx, "00:00:00:00:00:02"))
		assert.Equal(st, resolve.UnknownVendor, resolver.Lookup(ctx, "00:00:00:00:00:02"))
		assert.Equal(st, int32(2), atomic.LoadInt32(&hits))
	})
}

func TestIsLocallyAdministered(t *testing.T) {
	t.Run("detects randomized mac", func(st *testing.T) {
		for _, mac := range []string{"02:00:00:00:00:00", "a6:11:22:33:44:55", "de:ad:be:ef:00:01", "fa:00:00:00:00:00"} {
			assert.True(st, resolve.IsLocallyAdministered(mac), mac)
		}
	})

	t.Run("accepts vendor assigned mac", func(st *testing.T) {
		for _, mac := range []string{"00:1a:2b:3c:4d:5e", "a4:11:22:33:44:55", "f0:00:00:00:00:00"} {
			assert.False(st, resolve.IsLocallyAdministered(mac), mac)
		}
	})

	t.Run("rejects garbage", func(st *testing.T) {
		assert.False(st, resolve.IsLocallyAdministered("nope"))
	})
}
