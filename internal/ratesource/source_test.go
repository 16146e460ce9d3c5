package ratesource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/fxpick/internal/candidate"
)

func noWait() backoff.BackOff { return &backoff.ZeroBackOff{} }

func rateServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPFetch(t *testing.T) {
	var path string
	srv := rateServer(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"SGD","rates":{"USD":0.73,"SGD":1,"EUR":0.68}}`))
	})

	src := NewHTTP(srv.URL+"/v4/latest/", "sgd", WithBackOff(noWait))
	got, err := src.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/v4/latest/SGD", path)
	assert.Equal(t, []candidate.Candidate{
		{Name: "EUR", Rate: 0.68},
		{Name: "SGD", Rate: 1},
		{Name: "USD", Rate: 0.73},
	}, got)
	assert.Equal(t, srv.URL+"/v4/latest/SGD", src.Describe())
}

func TestHTTPRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := rateServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"rates":{"USD":0.73}}`))
	})

	got, err := NewHTTP(srv.URL, "SGD", WithRetries(3), WithBackOff(noWait)).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := rateServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := NewHTTP(srv.URL, "SGD", WithRetries(2), WithBackOff(noWait)).Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusBadGateway, serr.Code)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPClientErrorsAreNotRetried(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"not found", http.StatusNotFound, "", "404"},
		{"bad json", http.StatusOK, "{", "decode rates"},
		{"no rates", http.StatusOK, `{"result":"error"}`, "no rates"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := rateServer(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := NewHTTP(srv.URL, "SGD", WithRetries(5), WithBackOff(noWait)).Fetch(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestHTTPTooManyRequestsIsRetried(t *testing.T) {
	var calls atomic.Int32
	srv := rateServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"rates":{}}`))
	})
	got, err := NewHTTP(srv.URL, "SGD", WithBackOff(noWait)).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHTTPPerAttemptTimeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	srv := rateServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	start := time.Now()
	_, err := NewHTTP(srv.URL, "SGD",
		WithRetries(1),
		WithTimeout(20*time.Millisecond),
		WithBackOff(noWait),
	).Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestHTTPCancelledContext(t *testing.T) {
	srv := rateServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHTTP(srv.URL, "SGD", WithRetries(10), WithBackOff(noWait)).Fetch(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStatusErrorTemporary(t *testing.T) {
	assert.True(t, (&StatusError{Code: 500}).Temporary())
	assert.True(t, (&StatusError{Code: 429}).Temporary())
	assert.False(t, (&StatusError{Code: 403}).Temporary())
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		wantType any
		wantErr  string
	}{
		{"url", Settings{Location: "https://api.example.com/v4/latest", Base: "SGD"}, &HTTP{}, ""},
		{"url without base", Settings{Location: "http://localhost/latest"}, nil, "base currency"},
		{"file", Settings{Location: "./rates.yaml"}, File{}, ""},
		{"empty", Settings{}, nil, "no rate source"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := New(tt.settings, logr.Discard())
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, src)
		})
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"rates":{"USD":0.73,"EUR":0.68}}`), 0o644))

	got, err := File{Path: path}.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"EUR", "USD"}, candidate.Names(got))

	_, err = File{Path: filepath.Join(t.TempDir(), "missing.json")}.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStaticSource(t *testing.T) {
	src := Static{{Name: "USD", Rate: 0.73}}
	got, err := src.Fetch(context.Background())
	require.NoError(t, err)
	got[0].Name = "XXX"
	again, _ := src.Fetch(context.Background())
	assert.Equal(t, "USD", again[0].Name)
	assert.Equal(t, "1 built-in candidates", src.Describe())
}
