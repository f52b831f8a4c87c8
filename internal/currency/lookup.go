package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"go.uber.org/zap"
)

// CountryLookup guesses the shopper's country.
type CountryLookup interface {
	Country(ctx context.Context, ip string) (string, error)
}

// IPAPILookup queries an ipapi.co compatible endpoint.
type IPAPILookup struct {
	baseURL string
	client  *http.Client
}

func NewIPAPILookup(baseURL string, timeout time.Duration) *IPAPILookup {
	return &IPAPILookup{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (l *IPAPILookup) Country(ctx context.Context, ip string) (string, error) {
	endpoint := l.baseURL + "/json/"
	if ip != "" {
		endpoint = l.baseURL + "/" + url.PathEscape(ip) + "/json/"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("country lookup: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		CountryCode string `json:"country_code"`
		Error       bool   `json:"error"`
		Reason      string `json:"reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("country lookup: %w", err)
	}
	if body.Error {
		return "", fmt.Errorf("country lookup: %s", body.Reason)
	}
	if body.CountryCode == "" {
		return "", fmt.Errorf("country lookup: empty country code")
	}
	return body.CountryCode, nil
}

// Detector picks a display currency. Lookup failures fall back to the default country.
type Detector struct {
	lookup         CountryLookup
	defaultCountry string
	logger         logger.ZapLogger
}

func NewDetector(lookup CountryLookup, defaultCountry string, log logger.ZapLogger) *Detector {
	if defaultCountry == "" {
		defaultCountry = DefaultCountry
	}
	return &Detector{lookup: lookup, defaultCountry: defaultCountry, logger: log}
}

type Detection struct {
	Country  string   `json:"country"`
	Currency Currency `json:"currency"`
	Fallback bool     `json:"fallback"`
}

func (d *Detector) Detect(ctx context.Context, ip string) Detection {
	if d.lookup != nil {
		country, err := d.lookup.Country(ctx, ip)
		if err == nil {
			return Detection{Country: country, Currency: ForCountry(country)}
		}
		d.logger.Warn("Failed to detect shopper country, using default currency",
			zap.String("default_country", d.defaultCountry),
			zap.Error(err),
		)
	}
	return Detection{Country: d.defaultCountry, Currency: ForCountry(d.defaultCountry), Fallback: true}
}
