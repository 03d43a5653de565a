package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/territory-leads/internal/validation"
	"github.com/wolfman30/territory-leads/pkg/logging"
)

func fakeResults(n int) []map[string]any {
	out := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, map[string]any{
			"place_id":      fmt.Sprintf("ChIJ%03d", i),
			"name":          fmt.Sprintf("Company %d", i),
			"vicinity":      "Makati",
			"rating":        4.5,
			"geometry":      map[string]any{"location": map[string]any{"lat": 14.55, "lng": 121.02}},
			"photos":        []any{map[string]any{"photo_reference": "raw"}},
			"opening_hours": map[string]any{"open_now": true},
		})
	}
	return out
}

func validParams() SearchParams {
	return SearchParams{Keyword: "logistics", Lat: 14.5547, Lng: 121.0244, Radius: 1500, MaxResults: 20}
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithBaseURL(srv.URL)}, opts...)
	return NewClient("test-key", logging.Discard(), opts...)
}

func TestSearch_CapsResultsAtSixty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "OK", "results": fakeResults(80)})
	})

	params := validParams()
	params.MaxResults = 100
	res, err := client.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "OK", res.Status)
	assert.Len(t, res.Results, MaxResultsCeiling)
}

func TestSearch_TruncatesToRequested(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "OK", "results": fakeResults(20)})
	})

	params := validParams()
	params.MaxResults = 5
	res, err := client.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, res.Results, 5)
	assert.Equal(t, "ChIJ000", res.Results[0].PlaceID)
	require.NotNil(t, res.Results[0].Rating)
	assert.Equal(t, 4.5, *res.Results[0].Rating)
	require.NotNil(t, res.Results[0].Geometry)
	assert.Equal(t, 121.02, res.Results[0].Geometry.Location.Lng)
}

func TestSearch_BuildsUpstreamQuery(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ZERO_RESULTS", "results": []any{}})
	})

	params := validParams()
	params.Type = "establishment"
	res, err := client.Search(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, "/nearbysearch/json", gotPath)
	assert.Equal(t, map[string]string{
		"key":      "test-key",
		"location": "14.5547,121.0244",
		"radius":   "1500",
		"keyword":  "logistics",
		"type":     "establishment",
	}, gotQuery)
	assert.Equal(t, "ZERO_RESULTS", res.Status)
	assert.NotNil(t, res.Results)
	assert.Empty(t, res.Results)
}

func TestSearch_OmitsEmptyType(t *testing.T) {
	var hasType bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, hasType = r.URL.Query()["type"]
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "OK"})
	})

	_, err := client.Search(context.Background(), validParams())
	require.NoError(t, err)
	assert.False(t, hasType)
}

func TestSearch_UpstreamFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusServiceUnavailable)
	})

	_, err := client.Search(context.Background(), validParams())
	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusServiceUnavailable, upErr.StatusCode)
	assert.Equal(t, "search", upErr.Operation)
}

func TestSearch_MalformedBodyIsUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	})

	_, err := client.Search(context.Background(), validParams())
	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
}

func TestSearch_TimeoutIsUpstreamErrorWithoutKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}, WithTimeout(20*time.Millisecond))

	_, err := client.Search(context.Background(), validParams())
	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Zero(t, upErr.StatusCode)
	assert.NotContains(t, err.Error(), "test-key")
}

func TestSearch_MissingKeyIsConfigError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()
	client := NewClient("  ", logging.Discard(), WithBaseURL(srv.URL))

	_, err := client.Search(context.Background(), validParams())
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, APIKeySetting, cfgErr.Setting)

	var upErr *UpstreamError
	assert.False(t, errors.As(err, &upErr), "configuration errors must not look like upstream errors")

	_, err = client.Details(context.Background(), "ChIJ123")
	require.True(t, errors.As(err, &cfgErr))
	assert.Zero(t, calls.Load())
}

func TestSearch_RejectsInvalidParams(t *testing.T) {
	client := NewClient("test-key", logging.Discard(), WithBaseURL("http://127.0.0.1:1"))
	params := validParams()
	params.Keyword = "x"
	params.Radius = 50

	_, err := client.Search(context.Background(), params)
	var verr *validation.Errors
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("keyword"))
	assert.True(t, verr.Has("radius"))
}

func TestDetails_RequestsFixedFields(t *testing.T) {
	var gotFields, gotPlace string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/details/json", r.URL.Path)
		gotFields = r.URL.Query().Get("fields")
		gotPlace = r.URL.Query().Get("place_id")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "OK",
			"result": map[string]any{
				"place_id":               "ChIJ123",
				"name":                   "Acme Corp",
				"formatted_address":      "1 Ayala Ave",
				"formatted_phone_number": "02 8888 0000",
				"website":                "https://acme.test",
				"url":                    "https://maps.google.com/?cid=1",
			},
		})
	})

	detail, err := client.Details(context.Background(), "ChIJ123")
	require.NoError(t, err)
	assert.Equal(t, "ChIJ123", gotPlace)
	assert.Equal(t, "place_id,name,formatted_address,formatted_phone_number,website,url", gotFields)
	assert.Equal(t, &PlaceDetail{
		PlaceID:              "ChIJ123",
		Name:                 "Acme Corp",
		FormattedAddress:     "1 Ayala Ave",
		FormattedPhoneNumber: "02 8888 0000",
		Website:              "https://acme.test",
		URL:                  "https://maps.google.com/?cid=1",
	}, detail)
}

func TestDetails_NoResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "NOT_FOUND"})
	})

	detail, err := client.Details(context.Background(), "ChIJgone")
	require.NoError(t, err)
	assert.Nil(t, detail)
}

func TestDetails_UpstreamFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.Details(context.Background(), "ChIJ123")
	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusForbidden, upErr.StatusCode)
	assert.True(t, strings.HasPrefix(err.Error(), "places: details failed"))
}

func TestWithTimeoutClamps(t *testing.T) {
	c := NewClient("k", logging.Discard(), WithTimeout(time.Minute))
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)

	c = NewClient("k", logging.Discard(), WithHTTPClient(&http.Client{}))
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)

	c = NewClient("k", logging.Discard(), WithTimeout(3*time.Second))
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)
}
