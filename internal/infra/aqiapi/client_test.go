package aqiapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/aqi-search/internal/domain/search"
)

func TestFetchDecodesReading(t *testing.T) {
	var gotPath, gotCity string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCity = r.URL.Query().Get("city")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"city":"Pune","aqi":42,"category":"Good","color":"#009966","source":"live","details":{"pm25":{"v":12},"pm10":{}}}`))
	}))
	defer srv.Close()

	reading, err := NewClient(srv.URL+"/", time.Second).Fetch(context.Background(), "São Paulo")
	require.NoError(t, err)
	require.Equal(t, "/api/aqi", gotPath)
	require.Equal(t, "São Paulo", gotCity)
	require.Equal(t, "Pune", reading.City)
	require.Equal(t, 42.0, *reading.AQI)
	require.Len(t, reading.Details, 2)
	require.Equal(t, "pm10", reading.Details[1].Code)
}

func TestFetchAcceptsFractionalIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"city":"Pune","aqi":42.5,"category":"Good","color":"#009966"}`))
	}))
	defer srv.Close()

	reading, err := NewClient(srv.URL, time.Second).Fetch(context.Background(), "Pune")
	require.NoError(t, err)
	require.Equal(t, 42.5, *reading.AQI)
	require.Equal(t, "Good", reading.Category)
}

func TestFetchClassifiesErrorResponses(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		ctype   string
		body    string
		message string
	}{
		{name: "json error", status: http.StatusNotFound, ctype: "application/json", body: `{"error":"City not found"}`, message: "City not found"},
		{name: "plain text", status: http.StatusInternalServerError, ctype: "text/plain", body: "Internal Server Error", message: "Internal Server Error"},
		{name: "malformed", status: http.StatusBadGateway, ctype: "application/json", body: `{"oops":true}`, message: search.MessageFallback},
		{name: "bad success body", status: http.StatusOK, ctype: "application/json", body: `{"city":`, message: search.MessageFallback},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tc.ctype)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).Fetch(context.Background(), "Pune")
			require.Error(t, err)
			require.Equal(t, tc.message, search.MessageFor(err))
		})
	}
}

func TestFetchWithoutResponseIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Fetch(context.Background(), "Pune")
	var transport *search.TransportError
	require.True(t, errors.As(err, &transport))
	require.Zero(t, transport.Status)
	require.Equal(t, search.MessageFallback, search.MessageFor(err))
}
