package netx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/camkeeper/internal/logging"
)

type payload struct {
	Name string `json:"name"`
}

func staticToken(tok string) TokenSource { return func() string { return tok } }

func newTestClient(url string, opts Options) *Client {
	if opts.RetryBackoff == 0 {
		opts.RetryBackoff = time.Millisecond
	}
	return NewClient(url, staticToken("AT"), opts, logging.NewNopLogger())
}

func TestDo_SendsHeadersAndDecodes(t *testing.T) {
	old := newRequestID
	newRequestID = func() string { return "req-1" }
	t.Cleanup(func() { newRequestID = old })

	var got *http.Request
	var gotBody payload
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(payload{Name: "reply"})
	}))
	defer ts.Close()

	var out payload
	err := newTestClient(ts.URL+"/", Options{}).Post(context.Background(), "/items", payload{Name: "cam"}, &out)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/items", got.URL.Path)
	assert.Equal(t, "Bearer AT", got.Header.Get("Authorization"))
	assert.Equal(t, "req-1", got.Header.Get("X-Request-Id"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "cam", gotBody.Name)
	assert.Equal(t, "reply", out.Name)
}

func TestDo_NoTokenSendsWithoutAuthorization(t *testing.T) {
	var calls int32
	auth := make(chan []string, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		auth <- r.Header.Values("Authorization")
		_, _ = w.Write([]byte(`{"name":"public"}`))
	}))
	defer ts.Close()

	var out payload
	c := NewClient(ts.URL, staticToken(""), Options{}, logging.NewNopLogger())
	require.NoError(t, c.Get(context.Background(), "x", &out))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Empty(t, <-auth)
	assert.Equal(t, "public", out.Name)
}

func TestDo_PostIsNotRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c := newTestClient(ts.URL, Options{Retries: 3})

	err := c.Post(context.Background(), "cameras", payload{Name: "gate"}, nil)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	atomic.StoreInt32(&calls, 0)
	err = c.Put(context.Background(), "cameras/1", payload{Name: "gate"}, nil)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestDo_RetriesServerErrorsWithSameRequestID(t *testing.T) {
	var calls int32
	ids := make(chan string, 5)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids <- r.Header.Get("X-Request-Id")
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"name":"ok"}`))
	}))
	defer ts.Close()

	var out payload
	err := newTestClient(ts.URL, Options{Retries: 3}).Get(context.Background(), "x", &out)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, "ok", out.Name)

	first := <-ids
	assert.Equal(t, first, <-ids)
	assert.Equal(t, first, <-ids)
}

func TestDo_RetriesAreBounded(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	err := newTestClient(ts.URL, Options{Retries: 2}).Get(context.Background(), "x", nil)
	require.ErrorIs(t, err, ErrUnavailable)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, "boom", se.Body)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDo_ClientErrorsNotRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			http.Error(w, "bad rtsp url", http.StatusBadRequest)
		}
	}))
	defer ts.Close()

	c := newTestClient(ts.URL, Options{Retries: 3})

	err := c.Get(context.Background(), "missing", nil)
	require.ErrorIs(t, err, ErrNotFound)

	err = c.Post(context.Background(), "bad", payload{}, nil)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.False(t, errors.Is(err, ErrUnavailable))

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDo_UnauthorizedInvokesCallback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	var dropped int
	c := newTestClient(ts.URL, Options{Retries: 3, OnUnauthorized: func(context.Context) { dropped++ }})

	err := c.Delete(context.Background(), "cams/1")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 1, dropped)
}

func TestDo_NetworkErrorIsUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	err := newTestClient(url, Options{Retries: 1}).Get(context.Background(), "x", nil)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestDo_TimeoutPerAttempt(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	start := time.Now()
	err := newTestClient(ts.URL, Options{Timeout: 50 * time.Millisecond}).Get(context.Background(), "slow", nil)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDo_NoContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	var out payload
	require.NoError(t, newTestClient(ts.URL, Options{}).Put(context.Background(), "x", payload{Name: "n"}, &out))
	assert.Empty(t, out.Name)
}
