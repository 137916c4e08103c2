package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type ticket struct {
	ID       int64  `json:"id"`
	ShowName string `json:"show_name"`
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New("ftp://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client.New")

	_, err = New("://bad")
	require.Error(t, err)
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c, err := New("http://localhost:3000/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", c.BaseURL())
	assert.NotNil(t, c.Jar())
}

func TestNew_WithHTTPClientLeavesCallerUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ticket{ID: 1, ShowName: "Laser Show"})
	}))
	t.Cleanup(srv.Close)

	base := &http.Client{Timeout: 5 * time.Second}
	c, err := New(srv.URL, WithHTTPClient(base), WithTimeout(time.Second))
	require.NoError(t, err)

	assert.Nil(t, base.Jar)
	assert.Equal(t, 5*time.Second, base.Timeout)
	assert.NotNil(t, c.Jar())

	var got ticket
	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/api/tickets/1", "", nil, &got))
	assert.Equal(t, "Laser Show", got.ShowName)
}

func TestDo_SuccessSendsHeadersAndBody(t *testing.T) {
	var gotHeader http.Header
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/tickets", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 7, "show_name": "Laser"}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	c.newID = func() string { return "req-1" }

	var out ticket
	err = c.Do(context.Background(), http.MethodPost, "/api/tickets", "abc", map[string]any{"show_name": "Laser"}, &out)
	require.NoError(t, err)

	assert.Equal(t, ticket{ID: 7, ShowName: "Laser"}, out)
	assert.Equal(t, "Bearer abc", gotHeader.Get("Authorization"))
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Equal(t, "req-1", gotHeader.Get("X-Request-ID"))
	assert.Equal(t, "Laser", gotBody["show_name"])
}

func TestDo_NoTokenNoAuthorizationHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	var out ticket
	require.NoError(t, c.Do(context.Background(), http.MethodDelete, "/api/tickets/1", "", nil, &out))
	assert.Equal(t, ticket{}, out)
}

func TestDo_ErrorResponses(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{name: "server message", status: http.StatusNotFound, body: `{"message":"not found"}`, wantMessage: "not found"},
		{name: "empty message", status: http.StatusBadRequest, body: `{}`, wantMessage: MsgRequestFailed},
		{name: "not json", status: http.StatusInternalServerError, body: `<html>oops</html>`, wantMessage: MsgUnknownError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := New(srv.URL)
			require.NoError(t, err)

			err = c.Do(context.Background(), http.MethodGet, "/api/guides", "tok", nil, nil)
			var reqErr *RequestFailedError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tt.status, reqErr.Status)
			assert.Equal(t, tt.wantMessage, reqErr.Message)
			assert.Equal(t, tt.wantMessage, Message(err))
		})
	}
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	c, err := New(addr)
	require.NoError(t, err)

	err = c.Do(context.Background(), http.MethodGet, "/api/counters", "tok", nil, nil)
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.Equal(t, MsgNetworkError, Message(err))
}

func TestDo_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id": "x"}]`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	var out []ticket
	err = c.Do(context.Background(), http.MethodGet, "/api/tickets", "tok", nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
	assert.False(t, IsNetwork(err))
}

func TestDo_LimiterCanceledContext(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithLimiter(rate.NewLimiter(rate.Every(1<<62), 1)))
	require.NoError(t, err)

	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/api/tickets", "", nil, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = c.Do(ctx, http.MethodGet, "/api/tickets", "", nil, nil)
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.Equal(t, 1, calls)
}

func TestDo_Metrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	m, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	c, err := New(srv.URL, WithMetrics(m))
	require.NoError(t, err)

	_ = c.Do(context.Background(), http.MethodGet, "/api/tickets", "", nil, nil)
	_ = c.Do(context.Background(), http.MethodDelete, "/api/tickets/42", "", nil, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/tickets", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("DELETE", "/api/tickets/:id", "404")))
}

func TestRoute(t *testing.T) {
	assert.Equal(t, "/api/tickets/:id", route("/api/tickets/42"))
	assert.Equal(t, "/api/analytics/calendar", route("/api/analytics/calendar?start=2024-01-01&end=2024-01-31"))
	assert.Equal(t, "/a/:id/:id", route("/a/1/2"))
	assert.Equal(t, "/api/analytics/last7days", route("/api/analytics/last7days"))
}

func TestExpireCookies(t *testing.T) {
	c, err := New("http://localhost:3000")
	require.NoError(t, err)

	u, _ := url.Parse("http://localhost:3000/")
	c.Jar().SetCookies(u, []*http.Cookie{
		{Name: "authToken", Value: "abc", Path: "/"},
		{Name: "session", Value: "s1", Path: "/"},
		{Name: "theme", Value: "dark", Path: "/"},
	})
	require.Len(t, c.Jar().Cookies(u), 3)

	c.ExpireCookies("authToken", "session")

	left := c.Jar().Cookies(u)
	require.Len(t, left, 1)
	assert.Equal(t, "theme", left[0].Name)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, MsgAuthRequired, Message(ErrAuthRequired))
	assert.Equal(t, "boom", Message(errors.New("boom")))
}
