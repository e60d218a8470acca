package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/aqi-search/internal/domain/aqi"
)

func TestSubmitRejectsBlankInputWithoutFetching(t *testing.T) {
	for _, raw := range []string{"", " ", "   ", "\t", "\n \t "} {
		fetcher := &stubFetcher{}
		ctrl := newControllerUnderTest(fetcher)

		got := ctrl.Submit(context.Background(), raw)
		require.Equal(t, KindFailed, got.Kind(), "input %q", raw)
		require.Equal(t, MessageEmptyCity, got.Message())
		require.Zero(t, fetcher.callCount(), "input %q", raw)
	}
}

func TestSubmitBlankClearsPriorReading(t *testing.T) {
	fetcher := &stubFetcher{reading: aqi.Reading{City: "Pune", AQI: aqi.FloatPtr(42)}}
	ctrl := newControllerUnderTest(fetcher)

	require.Equal(t, KindSuccess, ctrl.Submit(context.Background(), "Pune").Kind())
	got := ctrl.Submit(context.Background(), "  ")
	require.Equal(t, KindFailed, got.Kind())
	_, ok := got.Reading()
	require.False(t, ok)
	require.Equal(t, 1, fetcher.callCount())
}

func TestSubmitSuccessScenario(t *testing.T) {
	reading := aqi.Reading{City: "Pune", AQI: aqi.FloatPtr(42), Category: "Good", Color: "#009966", Source: aqi.SourceLive}
	fetcher := &stubFetcher{reading: reading}
	ctrl := newControllerUnderTest(fetcher)

	var seen []Kind
	ctrl.Subscribe(func(s State) { seen = append(seen, s.Kind()) })

	got := ctrl.Submit(context.Background(), "  Pune ")
	require.Equal(t, KindSuccess, got.Kind())
	stored, ok := got.Reading()
	require.True(t, ok)
	require.Equal(t, reading, stored)
	require.Equal(t, []string{"Pune"}, fetcher.cities)
	require.Equal(t, []Kind{KindLoading, KindSuccess}, seen)
	require.Equal(t, got, ctrl.State())
}

func TestSubmitEntersLoadingBeforeFetchResolves(t *testing.T) {
	fetcher := &stubFetcher{reading: aqi.Reading{City: "Pune"}}
	ctrl := newControllerUnderTest(fetcher)
	require.Equal(t, KindSuccess, ctrl.Submit(context.Background(), "Pune").Kind())

	fetcher.err = &RemoteError{Status: 404, Message: "City not found"}
	fetcher.onFetch = func() {
		current := ctrl.State()
		require.Equal(t, KindLoading, current.Kind())
		_, ok := current.Reading()
		require.False(t, ok)
		require.Empty(t, current.Message())
	}
	got := ctrl.Submit(context.Background(), "Atlantis")
	require.Equal(t, Failed("City not found"), got)
}

func TestSubmitFailureScenarios(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "json error field", err: ClassifyResponse(404, []byte(`{"error":"City not found"}`)), want: "City not found"},
		{name: "plain text body", err: ClassifyResponse(500, []byte("Internal Server Error")), want: "Internal Server Error"},
		{name: "no response", err: &TransportError{Err: errors.New("connection refused")}, want: MessageFallback},
		{name: "malformed body", err: ClassifyResponse(502, []byte(`{"status":"bad"}`)), want: MessageFallback},
		{name: "unclassified error", err: context.DeadlineExceeded, want: MessageFallback},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := &stubFetcher{err: tc.err}
			ctrl := newControllerUnderTest(fetcher)

			got := ctrl.Submit(context.Background(), "Pune")
			require.Equal(t, KindFailed, got.Kind())
			require.Equal(t, tc.want, got.Message())
			require.Equal(t, 1, fetcher.callCount(), "failures are not retried")
		})
	}
}

func TestSubmitDropsStaleResponse(t *testing.T) {
	slowRelease := make(chan struct{})
	slowStarted := make(chan struct{})
	fetcher := &stubFetcher{
		byCity: map[string]aqi.Reading{
			"Slow": {City: "Slow"},
			"Fast": {City: "Fast"},
		},
		block:   map[string]chan struct{}{"Slow": slowRelease},
		started: map[string]chan struct{}{"Slow": slowStarted},
	}
	ctrl := newControllerUnderTest(fetcher)

	var (
		mu   sync.Mutex
		seen []string
	)
	ctrl.Subscribe(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s.String())
	})

	done := make(chan State)
	go func() { done <- ctrl.Submit(context.Background(), "Slow") }()
	<-slowStarted

	fast := ctrl.Submit(context.Background(), "Fast")
	require.Equal(t, "success(Fast)", fast.String())

	close(slowRelease)
	slow := <-done
	require.Equal(t, "success(Fast)", slow.String())
	require.Equal(t, "success(Fast)", ctrl.State().String())

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"loading", "loading", "success(Fast)"}, seen)
}

func TestSubscribeReturnsUnsubscribe(t *testing.T) {
	ctrl := newControllerUnderTest(&stubFetcher{})
	calls := 0
	stop := ctrl.Subscribe(func(State) { calls++ })

	ctrl.Submit(context.Background(), "")
	stop()
	ctrl.Submit(context.Background(), "")
	require.Equal(t, 1, calls)
}

func TestZeroStateIsIdle(t *testing.T) {
	var s State
	require.Equal(t, KindIdle, s.Kind())
	require.Equal(t, Idle(), s)
	require.Equal(t, KindIdle, newControllerUnderTest(&stubFetcher{}).State().Kind())
}

func newControllerUnderTest(fetcher Fetcher) *Controller {
	return NewController(fetcher, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type stubFetcher struct {
	mu      sync.Mutex
	reading aqi.Reading
	byCity  map[string]aqi.Reading
	err     error
	onFetch func()
	block   map[string]chan struct{}
	started map[string]chan struct{}
	cities  []string
}

func (s *stubFetcher) Fetch(_ context.Context, city string) (aqi.Reading, error) {
	s.mu.Lock()
	s.cities = append(s.cities, city)
	onFetch, started, block := s.onFetch, s.started[city], s.block[city]
	s.mu.Unlock()

	if onFetch != nil {
		onFetch()
	}
	if started != nil {
		close(started)
	}
	if block != nil {
		<-block
	}
	if s.err != nil {
		return aqi.Reading{}, s.err
	}
	if r, ok := s.byCity[city]; ok {
		return r, nil
	}
	return s.reading, nil
}

func (s *stubFetcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cities)
}
