package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/armanmujtaba/Trivanza/models"
	"github.com/armanmujtaba/Trivanza/prompts"
)

const (
	openWeatherURL  = "https://api.openweathermap.org"
	exchangeRateURL = "https://v6.exchangerate-api.com"
)

// TimezoneFinder resolves coordinates to an IANA zone name. tzf.F satisfies it.
type TimezoneFinder interface {
	GetTimezoneName(lng float64, lat float64) string
}

// LookupsConfig holds the optional enrichment endpoints. A missing key turns
// the matching lookup off.
type LookupsConfig struct {
	WeatherKey string
	RateKey    string
	WeatherURL string
	RateURL    string
	Timeout    time.Duration
}

// Lookups fetches weather, timezone and exchange-rate context for a trip
type Lookups struct {
	cfg    LookupsConfig
	client *http.Client
	tz     TimezoneFinder
	logger *slog.Logger
}

// NewLookups creates the enrichment client. tz may be nil.
func NewLookups(cfg LookupsConfig, tz TimezoneFinder, logger *slog.Logger) *Lookups {
	if cfg.WeatherURL == "" {
		cfg.WeatherURL = openWeatherURL
	}
	if cfg.RateURL == "" {
		cfg.RateURL = exchangeRateURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Lookups{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		tz:     tz,
		logger: logger,
	}
}

// Weather is the current conditions at a destination
type Weather struct {
	Description string
	TempC       float64
	FeelsLikeC  float64
	Humidity    int
	Lat         float64
	Lon         float64
	Country     string
}

func (w Weather) String() string {
	return fmt.Sprintf("currently %s, %.1f°C (feels like %.1f°C), humidity %d%%",
		w.Description, w.TempC, w.FeelsLikeC, w.Humidity)
}

type weatherResponse struct {
	Coord struct {
		Lon float64 `json:"lon"`
		Lat float64 `json:"lat"`
	} `json:"coord"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
}

type rateResponse struct {
	Result         string  `json:"result"`
	ErrorType      string  `json:"error-type"`
	ConversionRate float64 `json:"conversion_rate"`
}

// Weather fetches current conditions for a free-text destination
func (l *Lookups) Weather(ctx context.Context, destination string) (Weather, error) {
	if l.cfg.WeatherKey == "" {
		return Weather{}, fmt.Errorf("weather lookup is not configured")
	}
	q := url.Values{}
	q.Set("q", destination)
	q.Set("units", "metric")
	q.Set("appid", l.cfg.WeatherKey)

	var body weatherResponse
	if err := l.getJSON(ctx, l.cfg.WeatherURL+"/data/2.5/weather?"+q.Encode(), &body); err != nil {
		return Weather{}, err
	}
	w := Weather{
		TempC:      body.Main.Temp,
		FeelsLikeC: body.Main.FeelsLike,
		Humidity:   body.Main.Humidity,
		Lat:        body.Coord.Lat,
		Lon:        body.Coord.Lon,
		Country:    body.Sys.Country,
	}
	if len(body.Weather) > 0 {
		w.Description = body.Weather[0].Description
	}
	return w, nil
}

// Rate fetches how many units of to one unit of from buys
func (l *Lookups) Rate(ctx context.Context, from, to string) (float64, error) {
	if l.cfg.RateKey == "" {
		return 0, fmt.Errorf("exchange rate lookup is not configured")
	}
	endpoint := fmt.Sprintf("%s/v6/%s/pair/%s/%s", l.cfg.RateURL,
		url.PathEscape(l.cfg.RateKey), url.PathEscape(from), url.PathEscape(to))

	var body rateResponse
	if err := l.getJSON(ctx, endpoint, &body); err != nil {
		return 0, err
	}
	if body.Result != "success" || body.ConversionRate <= 0 {
		return 0, fmt.Errorf("exchange rate API error: %s", body.ErrorType)
	}
	return body.ConversionRate, nil
}

// Enrich gathers whatever context is available for req. Failed or
// unconfigured lookups leave their field empty so the prompt falls back.
func (l *Lookups) Enrich(ctx context.Context, req models.TripRequest) prompts.Enrichment {
	var out prompts.Enrichment

	w, err := l.Weather(ctx, req.Destination)
	if err != nil {
		l.logger.Warn("weather lookup skipped", "destination", req.Destination, "error", err)
		return out
	}
	out.Weather = w.String()
	if l.tz != nil && (w.Lat != 0 || w.Lon != 0) {
		out.Timezone = l.tz.GetTimezoneName(w.Lon, w.Lat)
	}

	local := LocalCurrency(w.Country)
	if local == "" || strings.EqualFold(local, req.CurrencyCode) {
		return out
	}
	rate, err := l.Rate(ctx, req.CurrencyCode, local)
	if err != nil {
		l.logger.Warn("exchange rate lookup skipped", "from", req.CurrencyCode, "to", local, "error", err)
		return out
	}
	out.ExchangeRate = fmt.Sprintf("1 %s = %.4f %s", strings.ToUpper(req.CurrencyCode), rate, local)
	return out
}

// LocalCurrency maps an ISO 3166 country code to its ISO 4217 currency
func LocalCurrency(country string) string {
	if country == "" {
		return ""
	}
	region, err := language.ParseRegion(strings.ToUpper(country))
	if err != nil {
		return ""
	}
	unit, ok := currency.FromRegion(region)
	if !ok {
		return ""
	}
	return unit.String()
}

func (l *Lookups) getJSON(ctx context.Context, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("lookup API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
