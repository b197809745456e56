package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ClientConfig captures all tunable parameters for the FareFinder client.
// Values are primarily loaded from environment variables with sane defaults
// so the binary can run locally without excessive setup.
type ClientConfig struct {
	BackendBaseURL string
	HTTPTimeout    time.Duration

	// Basemap credentials, consumed via mapview.LoaderURL.
	MapAPIKey  string
	MapStyleID string

	UberClientID  string
	UberProductID string

	SearchRangeFt int
	ResultLimit   int

	AutocompleteDebounce time.Duration

	RedisAddr       string
	RedisPassword   string
	GeocodeCacheTTL time.Duration

	LocationFeedURL string
	LocationWait    time.Duration

	MetricsAddr string
	LogLevel    string
}

func defaultClientConfig() ClientConfig {
	return ClientConfig{
		BackendBaseURL:       "http://127.0.0.1:8000",
		HTTPTimeout:          10 * time.Second,
		UberClientID:         "bGx0iZIMpiDhwEoOIQX_CZNek5LBJoAfBej5JmEJ",
		UberProductID:        "2d1d002b-d4d0-4411-98e1-673b244878b2",
		SearchRangeFt:        500,
		ResultLimit:          3,
		AutocompleteDebounce: 150 * time.Millisecond,
		GeocodeCacheTTL:      5 * time.Minute,
		LocationWait:         5 * time.Second,
		LogLevel:             "info",
	}
}

func LoadClientConfig() (ClientConfig, error) {
	cfg := defaultClientConfig()
	var errs []error

	setStringFromEnv(&cfg.BackendBaseURL, "BACKEND_BASE_URL")
	setDurationFromEnv(&cfg.HTTPTimeout, "HTTP_TIMEOUT", &errs)

	cfg.MapAPIKey = strings.TrimSpace(os.Getenv("MAP_API_KEY"))
	cfg.MapStyleID = strings.TrimSpace(os.Getenv("MAP_STYLE_ID"))

	setStringFromEnv(&cfg.UberClientID, "UBER_CLIENT_ID")
	setStringFromEnv(&cfg.UberProductID, "UBER_PRODUCT_ID")

	setIntFromEnv(&cfg.SearchRangeFt, "SEARCH_RANGE_FT", &errs)
	setIntFromEnv(&cfg.ResultLimit, "RESULT_LIMIT", &errs)

	setDurationFromEnv(&cfg.AutocompleteDebounce, "AUTOCOMPLETE_DEBOUNCE", &errs)

	cfg.RedisAddr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	setDurationFromEnv(&cfg.GeocodeCacheTTL, "GEOCODE_CACHE_TTL", &errs)

	cfg.LocationFeedURL = strings.TrimSpace(os.Getenv("LOCATION_FEED_URL"))
	setDurationFromEnv(&cfg.LocationWait, "LOCATION_WAIT", &errs)

	cfg.MetricsAddr = strings.TrimSpace(os.Getenv("METRICS_ADDR"))
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	if cfg.SearchRangeFt <= 0 {
		errs = append(errs, fmt.Errorf("SEARCH_RANGE_FT must be > 0"))
	}
	if cfg.ResultLimit <= 0 {
		errs = append(errs, fmt.Errorf("RESULT_LIMIT must be > 0"))
	}
	if cfg.AutocompleteDebounce < 100*time.Millisecond {
		errs = append(errs, fmt.Errorf("AUTOCOMPLETE_DEBOUNCE must be >= 100ms"))
	}

	return cfg, errors.Join(errs...)
}

func setDurationFromEnv(target *time.Duration, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = d
	}
}

func setIntFromEnv(target *int, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = i
	}
}

func setStringFromEnv(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}
