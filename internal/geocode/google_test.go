package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/photoindex-go/internal/conf"
)

func TestNewGoogleProviderRequiresAPIKey(t *testing.T) {
	_, err := NewGoogleProvider(&conf.GeocodingSettings{})
	assert.Error(t, err)
}

func TestGoogleReverseGeocode(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "Mannerheimintie 1, 00100 Helsinki, Finland",
				"address_components": [
					{"long_name": "Helsinki", "short_name": "Helsinki", "types": ["locality"]},
					{"long_name": "Finland", "short_name": "FI", "types": ["country", "political"]}
				]
			}]
		}`))
	}))
	defer server.Close()

	provider, err := NewGoogleProvider(&conf.GeocodingSettings{
		APIKey:   "test-key",
		Endpoint: server.URL,
	})
	require.NoError(t, err)

	location, err := provider.ReverseGeocode(context.Background(), 60.1699, 24.9384)
	require.NoError(t, err)
	require.NotNil(t, location)
	assert.Equal(t, "Mannerheimintie 1, 00100 Helsinki, Finland", location.FormattedAddress)
	assert.Equal(t, "FI", location.CountryCode)

	assert.Contains(t, gotQuery, "latlng=")
	assert.Contains(t, gotQuery, "key=test-key")
}

func TestGoogleReverseGeocodeZeroResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer server.Close()

	provider, err := NewGoogleProvider(&conf.GeocodingSettings{APIKey: "test-key", Endpoint: server.URL})
	require.NoError(t, err)

	location, err := provider.ReverseGeocode(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Nil(t, location)
}

func TestGoogleReverseGeocodeErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "REQUEST_DENIED", "results": [], "error_message": "The provided API key is invalid."}`))
	}))
	defer server.Close()

	provider, err := NewGoogleProvider(&conf.GeocodingSettings{APIKey: "bad-key", Endpoint: server.URL})
	require.NoError(t, err)

	_, err = provider.ReverseGeocode(context.Background(), 60.1699, 24.9384)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestGoogleReverseGeocodeHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider, err := NewGoogleProvider(&conf.GeocodingSettings{APIKey: "test-key", Endpoint: server.URL})
	require.NoError(t, err)

	_, err = provider.ReverseGeocode(context.Background(), 60.1699, 24.9384)
	assert.Error(t, err)
}
