package unit

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/aqi-search/internal/domain/aqi"
	"github.com/yanqian/aqi-search/internal/domain/search"
	"github.com/yanqian/aqi-search/internal/infra/aqiapi"
	"github.com/yanqian/aqi-search/internal/infra/aqicn"
	"github.com/yanqian/aqi-search/internal/infra/archive"
	"github.com/yanqian/aqi-search/internal/infra/config"
	"github.com/yanqian/aqi-search/internal/infra/lookuprepo"
	"github.com/yanqian/aqi-search/internal/infra/readingcache"
	httpiface "github.com/yanqian/aqi-search/internal/interface/http"
	"github.com/yanqian/aqi-search/internal/interface/view"
)

const puneFeed = `{"status":"ok","data":{"aqi":42,"idx":1,"dominentpol":"pm25",
"city":{"geo":[18.5204,73.8567],"name":"Pune, India"},
"iaqi":{"pm25":{"v":42},"pm10":{"v":17},"t":{"v":29.5}},
"time":{"s":"2024-07-01 10:00:00","tz":"+05:30","iso":"2024-07-01T10:00:00+05:30"}}}`

const dashFeed = `{"status":"ok","data":{"aqi":"-","city":{"name":"Quiet Town"},"iaqi":{},"time":{}}}`

// upstream imitates the AQICN feed endpoint.
type upstream struct {
	mu    sync.Mutex
	calls map[string]int
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	city := strings.Trim(strings.TrimPrefix(r.URL.Path, "/feed/"), "/")
	u.mu.Lock()
	u.calls[strings.ToLower(city)]++
	u.mu.Unlock()

	if r.URL.Query().Get("token") != "demo-token" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	switch strings.ToLower(city) {
	case "pune":
		_, _ = io.WriteString(w, puneFeed)
	case "quiet town":
		_, _ = io.WriteString(w, dashFeed)
	case "broken":
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "upstream exploded")
	default:
		_, _ = io.WriteString(w, `{"status":"error","data":"Unknown station"}`)
	}
}

func (u *upstream) count(city string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls[city]
}

type stack struct {
	upstream *upstream
	archive  *archive.MemoryArchive
	service  aqi.Service
	client   *aqiapi.Client
}

func newStack(t *testing.T) *stack {
	t.Helper()
	logger := newTestLogger()

	up := &upstream{calls: map[string]int{}}
	upstreamSrv := httptest.NewServer(up)
	t.Cleanup(upstreamSrv.Close)

	feedClient, err := aqicn.NewClient(upstreamSrv.URL+"/feed", "demo-token", time.Second)
	require.NoError(t, err)

	store := archive.NewMemoryArchive(10)
	svc := aqi.NewService(
		aqi.Config{CacheTTL: time.Minute},
		feedClient,
		readingcache.NewMemoryStore(100),
		lookuprepo.NewMemoryRepository(50),
		store,
		nil,
		logger,
	)

	cfg := &config.Config{HTTP: config.HTTPConfig{Address: ":0", ReadTimeout: time.Second, WriteTimeout: time.Second}}
	server := httpiface.NewRouter(cfg, httpiface.NewHandler(svc, logger), httpiface.NewPageHandler(svc, view.Options{Location: time.UTC}, logger))
	backend := httptest.NewServer(server.Handler)
	t.Cleanup(backend.Close)

	return &stack{upstream: up, archive: store, service: svc, client: aqiapi.NewClient(backend.URL, time.Second)}
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLookupFlowLiveThenCached(t *testing.T) {
	s := newStack(t)
	controller := search.NewController(s.client, newTestLogger())

	var kinds []search.Kind
	controller.Subscribe(func(state search.State) { kinds = append(kinds, state.Kind()) })

	state := controller.Submit(context.Background(), "Pune")
	require.Equal(t, search.KindSuccess, state.Kind())
	card := view.Present(state, view.Options{Location: time.UTC}).Result
	require.NotNil(t, card)
	require.Equal(t, "Pune, India", card.City)
	require.Equal(t, "42", card.AQI)
	require.Equal(t, "#009966", card.BadgeColor)
	require.Equal(t, "PM25", card.DominantPollutant)
	require.Equal(t, view.ProvenanceLive, card.Provenance)
	require.Equal(t, "18.5204, 73.8567", card.Coordinates)
	require.Equal(t, "Jul 1, 2024, 4:30:00 AM", card.UpdatedAt)
	require.Equal(t, []view.PollutantEntry{{Code: "PM25", Value: "42"}, {Code: "PM10", Value: "17"}, {Code: "T", Value: "29.5"}}, card.Pollutants)

	state = controller.Submit(context.Background(), "  PUNE ")
	require.Equal(t, search.KindSuccess, state.Kind())
	reading, _ := state.Reading()
	require.Equal(t, aqi.SourceCache, reading.Source)
	require.Equal(t, 1, s.upstream.count("pune"))
	require.Equal(t, []search.Kind{search.KindLoading, search.KindSuccess, search.KindLoading, search.KindSuccess}, kinds)

	records, err := s.service.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, aqi.SourceCache, records[0].Source)
	require.Equal(t, aqi.SourceLive, records[1].Source)

	keys := s.archive.Keys()
	require.Len(t, keys, 1)
	require.True(t, strings.HasPrefix(keys[0], "aqicn/pune/"))

	stats := s.service.Stats()
	require.EqualValues(t, 1, stats.Live)
	require.EqualValues(t, 1, stats.Cached)
}

func TestLookupFlowFailures(t *testing.T) {
	s := newStack(t)
	controller := search.NewController(s.client, newTestLogger())

	cases := []struct {
		query   string
		message string
	}{
		{query: "Atlantis", message: "City not found"},
		{query: "broken", message: "Failed to fetch air quality data"},
		{query: "   ", message: search.MessageEmptyCity},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			state := controller.Submit(context.Background(), tc.query)
			require.Equal(t, search.Failed(tc.message), state)

			v := view.Present(state, view.Options{})
			require.Nil(t, v.Result)
			require.Equal(t, tc.message, v.Error.Message)
		})
	}
	require.Zero(t, s.upstream.count(""))
}

func TestLookupFlowMissingIndex(t *testing.T) {
	s := newStack(t)
	controller := search.NewController(s.client, newTestLogger())

	state := controller.Submit(context.Background(), "Quiet Town")
	require.Equal(t, search.KindSuccess, state.Kind())

	card := view.Present(state, view.Options{}).Result
	require.Equal(t, view.Placeholder, card.AQI)
	require.Equal(t, view.DefaultBadgeColor, card.BadgeColor)
	require.Equal(t, aqi.UnavailableDescription, card.Description)
	require.Empty(t, card.UpdatedAt)
	require.Nil(t, card.Pollutants)
}
