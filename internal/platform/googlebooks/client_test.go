package googlebooks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const volumeJSON = `{
  "totalItems": 1,
  "items": [{
    "id": "abc",
    "volumeInfo": {
      "title": "Neverwhere",
      "authors": ["Neil Gaiman", "Someone Else"],
      "averageRating": 4.2,
      "ratingsCount": 1234,
      "publishedDate": "2003-09-02",
      "description": "Under the streets of London...",
      "industryIdentifiers": [
        {"type": "ISBN_10", "identifier": "0380789019"},
        {"type": "ISBN_13", "identifier": "9780380789016"}
      ]
    }
  }]
}`

func newTestClient(srv *httptest.Server, retries int) *Client {
	c := NewClient(Options{BaseURL: srv.URL, APIKey: "k", Timeout: time.Second, MaxRetries: retries})
	c.backoff = func(int) time.Duration { return time.Millisecond }
	return c
}

func TestSearchByISBN_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, volumesPath, r.URL.Path)
		assert.Equal(t, "isbn:0380789019", r.URL.Query().Get("q"))
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(volumeJSON))
	}))
	defer srv.Close()

	res, err := newTestClient(srv, 0).SearchByISBN(context.Background(), "0380789019")
	require.NoError(t, err)
	require.Len(t, res.Items, 1)

	info := res.Items[0].VolumeInfo
	assert.Equal(t, "Neverwhere", info.Title)
	require.NotNil(t, info.AverageRating)
	assert.Equal(t, Number("4.2"), *info.AverageRating)
	require.NotNil(t, info.RatingsCount)
	assert.Equal(t, 1234, *info.RatingsCount)
	assert.Len(t, info.IndustryIdentifiers, 2)
}

func TestNumber_AcceptsStringAndNull(t *testing.T) {
	var n Number
	require.NoError(t, n.UnmarshalJSON([]byte(`"3.5"`)))
	assert.Equal(t, Number("3.5"), n)

	var empty Number
	require.NoError(t, empty.UnmarshalJSON([]byte(`null`)))
	assert.Equal(t, Number(""), empty)
}

func TestSearchByISBN_NonRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient(srv, 3).SearchByISBN(context.Background(), "x")

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearchByISBN_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(volumeJSON))
	}))
	defer srv.Close()

	res, err := newTestClient(srv, 2).SearchByISBN(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalItems)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSearchByISBN_NoRetriesByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv, 0).SearchByISBN(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearchByISBN_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems":`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv, 0).SearchByISBN(context.Background(), "x")
	assert.ErrorContains(t, err, "decode volumes response")
}
