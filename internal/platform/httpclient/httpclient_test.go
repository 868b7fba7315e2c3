package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostJSON_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if n < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "queued"})
	}))
	defer srv.Close()

	c := New(time.Second)
	c.Backoff = time.Millisecond

	var out struct{ Status string }
	require.NoError(t, c.PostJSON(context.Background(), srv.URL, nil, map[string]string{"a": "b"}, &out))
	assert.Equal(t, "queued", out.Status)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPostJSON_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(time.Second)
	c.Backoff = time.Millisecond

	err := c.PostJSON(context.Background(), srv.URL, nil, map[string]string{}, nil)
	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.StatusCode)
	assert.Equal(t, "bad payload", he.Body)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPostJSON_RequiresAbsoluteURL(t *testing.T) {
	err := New(0).PostJSON(context.Background(), "/relative", nil, nil, nil)
	assert.Error(t, err)
}
