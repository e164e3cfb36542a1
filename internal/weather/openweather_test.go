package weather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborline/wayplan/internal/provider"
)

func TestForecast_AggregatesThreeHourlyEntries(t *testing.T) {
	now := time.Now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	// Three entries for one day: temps 24/33/30, Clear twice so it dominates,
	// and the highest pop that actually carries rain volume is 0.8.
	forecastJSON := fmt.Sprintf(`{"list":[
		{"dt":%d,"main":{"temp":24,"humidity":40},"weather":[{"main":"Clear","description":"clear sky"}],"wind":{"speed":3.5},"pop":0.2},
		{"dt":%d,"main":{"temp":33,"humidity":35},"weather":[{"main":"Clear","description":"few clouds"}],"wind":{"speed":4.1},"pop":0.8,"rain":{"3h":1.2}},
		{"dt":%d,"main":{"temp":30,"humidity":38},"weather":[{"main":"Clouds","description":"scattered clouds"}],"wind":{"speed":2.2},"pop":0.9}
	]}`,
		day.Add(9*time.Hour).Unix(), day.Add(12*time.Hour).Unix(), day.Add(15*time.Hour).Unix())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "Jaipur", q.Get("q"))
		assert.Equal(t, "metric", q.Get("units"))
		assert.Equal(t, "test-key", q.Get("appid"))

		switch r.URL.Path {
		case "/weather":
			fmt.Fprint(w, `{"coord":{"lat":26.9,"lon":75.8}}`)
		case "/forecast":
			fmt.Fprint(w, forecastJSON)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	ow := NewOpenWeather("test-key", WithBaseURL(srv.URL))
	snaps, err := ow.Forecast(context.Background(), "Jaipur", day, day)
	require.NoError(t, err)
	require.Len(t, snaps, 1)

	snap := snaps[0]
	assert.Equal(t, day.Format(DateFormat), snap.Date)
	assert.Equal(t, 24.0, snap.MinTemp)
	assert.Equal(t, 33.0, snap.MaxTemp)
	assert.Equal(t, 29.0, snap.AvgTemp)
	assert.Equal(t, "Clear", snap.Condition)
	assert.Equal(t, "clear sky", snap.Description)
	assert.Equal(t, 80, snap.RainProbability, "pop without rain volume must not count")
	assert.Equal(t, 40, snap.Humidity)
	assert.Equal(t, 3.5, snap.WindSpeed)
	assert.Equal(t, "5-day forecast", snap.DataSource)
	assert.Contains(t, snap.Advisory, "High rain probability")
}

func TestForecast_SeasonalFallbackBeyondHorizon(t *testing.T) {
	var forecastCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/weather":
			fmt.Fprint(w, `{"coord":{"lat":26.9,"lon":75.8}}`)
		case "/forecast":
			forecastCalls++
			fmt.Fprint(w, `{"list":[]}`)
		}
	}))
	defer srv.Close()

	from := time.Now().UTC().AddDate(0, 0, 10)
	to := from.AddDate(0, 0, 1)

	ow := NewOpenWeather("test-key", WithBaseURL(srv.URL))
	snaps, err := ow.Forecast(context.Background(), "Jaipur", from, to)
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	assert.Zero(t, forecastCalls, "trips beyond the 5-day horizon must not hit the forecast endpoint")
	for _, snap := range snaps {
		assert.Equal(t, "seasonal-estimate", snap.DataSource)
		assert.Equal(t, 65, snap.Humidity, "latitude 26.9 is the subtropical band")
		assert.Greater(t, snap.MaxTemp, snap.MinTemp)
		assert.NotEmpty(t, snap.Condition)
		assert.NotEmpty(t, snap.Advisory)
	}
	assert.Equal(t, from.Format(DateFormat), snaps[0].Date)
	assert.Equal(t, to.Format(DateFormat), snaps[1].Date)
}

func TestForecast_SwapsInvertedRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/weather":
			fmt.Fprint(w, `{"coord":{"lat":26.9}}`)
		case "/forecast":
			fmt.Fprint(w, `{"list":[]}`)
		}
	}))
	defer srv.Close()

	from := time.Now().UTC()
	ow := NewOpenWeather("test-key", WithBaseURL(srv.URL))
	snaps, err := ow.Forecast(context.Background(), "Jaipur", from, from.AddDate(0, 0, -3))
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}

func TestForecast_InvalidKeyIsQuotaKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"cod":401,"message":"Invalid API key"}`)
	}))
	defer srv.Close()

	ow := NewOpenWeather("bad-key", WithBaseURL(srv.URL))
	_, err := ow.Forecast(context.Background(), "Jaipur", time.Now(), time.Now())
	require.Error(t, err)

	var perr *provider.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, provider.KindQuota, perr.Kind)
	assert.Equal(t, http.StatusUnauthorized, perr.Status)
	assert.Equal(t, "Invalid API key", perr.Message)
	assert.Equal(t, "openweathermap", perr.Provider)
}

func TestForecast_ServerErrorIsNetworkKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "upstream down")
	}))
	defer srv.Close()

	ow := NewOpenWeather("test-key", WithBaseURL(srv.URL))
	_, err := ow.Forecast(context.Background(), "Jaipur", time.Now(), time.Now())

	var perr *provider.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, provider.KindNetwork, perr.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, perr.Status)
	assert.Equal(t, "upstream down", perr.Message)
}
