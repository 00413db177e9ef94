package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tphakala/photoindex-go/internal/conf"
	"github.com/tphakala/photoindex-go/internal/errors"
)

const (
	GoogleRequestTimeout = 10 * time.Second
	GoogleUserAgent      = "PhotoIndex"
)

// GoogleGeocodeResponse represents the structure of the reverse geocoding
// data returned by the Google Maps Geocoding API.
type GoogleGeocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress  string `json:"formatted_address"`
		AddressComponents []struct {
			LongName  string   `json:"long_name"`
			ShortName string   `json:"short_name"`
			Types     []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
	ErrorMessage string `json:"error_message"`
}

// GoogleProvider reverse-geocodes coordinates via the Google Maps Geocoding
// API.
type GoogleProvider struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewGoogleProvider creates a Google Maps provider from the geocoding
// settings. Requires an API key.
func NewGoogleProvider(settings *conf.GeocodingSettings) (*GoogleProvider, error) {
	if settings.APIKey == "" {
		return nil, errors.Newf("google geocoding requires an API key").
			Component("geocode").
			Category(errors.CategoryConfiguration).
			Context("setting", "geocoding.apikey").
			Build()
	}

	endpoint := settings.Endpoint
	if endpoint == "" {
		endpoint = "https://maps.googleapis.com/maps/api/geocode/json"
	}

	return &GoogleProvider{
		apiKey:   settings.APIKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: GoogleRequestTimeout},
	}, nil
}

// ReverseGeocode implements the Provider interface for GoogleProvider. A
// ZERO_RESULTS response is not an error; it returns a nil location.
func (p *GoogleProvider) ReverseGeocode(ctx context.Context, lat, lon float64) (*Location, error) {
	query := url.Values{}
	query.Set("latlng", fmt.Sprintf("%f,%f", lat, lon))
	query.Set("key", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+query.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", GoogleUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching geocoding data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 response: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	var geocodeData GoogleGeocodeResponse
	if err := json.Unmarshal(body, &geocodeData); err != nil {
		return nil, fmt.Errorf("error unmarshaling geocoding data: %w", err)
	}

	switch geocodeData.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, nil
	default:
		return nil, fmt.Errorf("geocoding API status %s: %s", geocodeData.Status, geocodeData.ErrorMessage)
	}

	if len(geocodeData.Results) == 0 {
		return nil, nil
	}

	result := geocodeData.Results[0]
	location := &Location{FormattedAddress: result.FormattedAddress}
	for _, component := range result.AddressComponents {
		for _, t := range component.Types {
			if t == "country" {
				location.CountryCode = component.ShortName
				break
			}
		}
	}
	return location, nil
}
