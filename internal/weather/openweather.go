package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/harborline/wayplan/internal/provider"
)

// Compile-time interface check.
var _ Provider = (*OpenWeather)(nil)

const (
	providerName   = "openweathermap"
	defaultBaseURL = "https://api.openweathermap.org/data/2.5"

	// forecastHorizonDays is the span of OpenWeatherMap's 5-day / 3-hour
	// forecast endpoint. Days beyond it fall back to seasonal estimates.
	forecastHorizonDays = 5
)

// OpenWeather implements Provider against the OpenWeatherMap API.
type OpenWeather struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// Option configures an OpenWeather client.
type Option func(*OpenWeather)

// WithBaseURL overrides the API base URL. Used by tests to point at a local
// httptest server.
func WithBaseURL(u string) Option {
	return func(o *OpenWeather) {
		o.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *OpenWeather) {
		o.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *OpenWeather) {
		o.http = hc
	}
}

// NewOpenWeather creates an OpenWeatherMap client for the given API key.
func NewOpenWeather(apiKey string, opts ...Option) *OpenWeather {
	o := &OpenWeather{
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// currentResponse is the subset of the /weather response we consume. The
// call validates the location and supplies coordinates for the hemisphere
// lookup used by seasonal estimates.
type currentResponse struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
}

// forecastResponse is the subset of the /forecast response we consume:
// 3-hourly entries for roughly the next five days.
type forecastResponse struct {
	List []forecastEntry `json:"list"`
}

type forecastEntry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Pop  float64 `json:"pop"`
	Rain *struct {
		ThreeHour float64 `json:"3h"`
	} `json:"rain,omitempty"`
}

// Forecast returns one snapshot per day from `from` to `to` inclusive. Days
// inside the 5-day forecast window aggregate real 3-hourly data; days beyond
// it are synthesized from seasonal patterns for the location's latitude.
func (o *OpenWeather) Forecast(ctx context.Context, location string, from, to time.Time) ([]Snapshot, error) {
	if to.Before(from) {
		to = from
	}

	var current currentResponse
	if err := o.get(ctx, "/weather", location, &current); err != nil {
		return nil, err
	}

	byDate := make(map[string][]forecastEntry)
	if daysBetween(time.Now(), from) <= forecastHorizonDays {
		var fc forecastResponse
		if err := o.get(ctx, "/forecast", location, &fc); err != nil {
			return nil, err
		}
		for _, entry := range fc.List {
			key := time.Unix(entry.Dt, 0).UTC().Format(DateFormat)
			byDate[key] = append(byDate[key], entry)
		}
	}

	var snaps []Snapshot
	for d := dateOnly(from); !d.After(dateOnly(to)); d = d.AddDate(0, 0, 1) {
		key := d.Format(DateFormat)
		if entries := byDate[key]; len(entries) > 0 {
			snaps = append(snaps, aggregateDay(key, entries))
		} else {
			snaps = append(snaps, SeasonalEstimate(d, current.Coord.Lat))
		}
	}
	return snaps, nil
}

// aggregateDay folds a day's 3-hourly entries into one snapshot: min/max/avg
// temperature, the most frequent condition, and the peak rain probability
// among entries that actually carry rain volume.
func aggregateDay(date string, entries []forecastEntry) Snapshot {
	minTemp := entries[0].Main.Temp
	maxTemp := entries[0].Main.Temp
	sum := 0.0

	conditionCounts := make(map[string]int)
	var conditionOrder []string
	description := ""
	rainProb := 0.0

	for _, e := range entries {
		t := e.Main.Temp
		if t < minTemp {
			minTemp = t
		}
		if t > maxTemp {
			maxTemp = t
		}
		sum += t

		if len(e.Weather) > 0 {
			cond := e.Weather[0].Main
			if conditionCounts[cond] == 0 {
				conditionOrder = append(conditionOrder, cond)
			}
			conditionCounts[cond]++
			if description == "" {
				description = e.Weather[0].Description
			}
		}

		if e.Rain != nil && e.Pop*100 > rainProb {
			rainProb = e.Pop * 100
		}
	}

	dominant := ""
	best := 0
	for _, cond := range conditionOrder {
		if conditionCounts[cond] > best {
			dominant = cond
			best = conditionCounts[cond]
		}
	}

	rain := int(math.Round(rainProb))
	return Snapshot{
		Date:            date,
		MinTemp:         round1(minTemp),
		MaxTemp:         round1(maxTemp),
		AvgTemp:         round1(sum / float64(len(entries))),
		Condition:       dominant,
		Description:     description,
		RainProbability: rain,
		Humidity:        entries[0].Main.Humidity,
		WindSpeed:       entries[0].Wind.Speed,
		Advisory:        Advisory(dominant, minTemp, maxTemp, rain),
		DataSource:      "5-day forecast",
	}
}

// get performs a metric-units API call and decodes the response into out.
func (o *OpenWeather) get(ctx context.Context, path, location string, out any) error {
	q := url.Values{}
	q.Set("q", location)
	q.Set("appid", o.apiKey)
	q.Set("units", "metric")

	reqURL := fmt.Sprintf("%s%s?%s", o.baseURL, path, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &provider.Error{Provider: providerName, Kind: provider.KindNetwork, Message: "create request", Err: err}
	}

	resp, err := o.http.Do(req)
	if err != nil {
		return provider.Classify(providerName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return provider.Classify(providerName, err)
	}
	if resp.StatusCode != http.StatusOK {
		return provider.FromStatus(providerName, resp.StatusCode, apiMessage(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &provider.Error{Provider: providerName, Kind: provider.KindNetwork, Message: "decode response", Err: err}
	}
	return nil
}

// apiMessage extracts OpenWeatherMap's error message field when present.
func apiMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &e)
	if e.Message != "" {
		return e.Message
	}
	return strings.TrimSpace(string(body))
}

// daysBetween returns whole calendar days from a to b.
func daysBetween(a, b time.Time) int {
	return int(dateOnly(b).Sub(dateOnly(a)).Hours() / 24)
}

// dateOnly truncates a time to midnight UTC of the same calendar date.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
