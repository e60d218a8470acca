package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/aqi-search/internal/domain/aqi"
	"github.com/yanqian/aqi-search/internal/infra/config"
	"github.com/yanqian/aqi-search/pkg/metrics"
)

type statsOnly struct {
	aqi.Service
	counter *metrics.LookupCounter
}

func (s statsOnly) Stats() metrics.LookupStats { return s.counter.Snapshot() }

func TestAppRunStopsOnCancel(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	cfg := &config.Config{HTTP: config.HTTPConfig{Address: addr}}
	server := &http.Server{Addr: addr, Handler: http.NotFoundHandler()}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := NewApp(cfg, logger, server, statsOnly{counter: metrics.NewLookupCounter()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestAppRunReportsListenFailure(t *testing.T) {
	cfg := &config.Config{HTTP: config.HTTPConfig{Address: "bad::address"}}
	server := &http.Server{Addr: "bad::address"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := NewApp(cfg, logger, server, statsOnly{counter: metrics.NewLookupCounter()})

	require.Error(t, app.Run(context.Background()))
}
