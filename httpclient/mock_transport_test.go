package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockTransport(t *testing.T) {
	tests := []struct {
		name           string
		setup          func() *MockTransport
		path           string
		wantStatus     int
		wantStatusLine string
		wantBody       string
		wantErr        bool
	}{
		{
			name: "given fallback response, then any path is answered",
			setup: func() *MockTransport {
				return NewMockTransport().StubResponse(http.StatusOK, `{"ok":true}`)
			},
			path:           "/api/v2/events/",
			wantStatus:     http.StatusOK,
			wantStatusLine: "200 OK",
			wantBody:       `{"ok":true}`,
		},
		{
			name: "given path stub, then it wins over fallback",
			setup: func() *MockTransport {
				return NewMockTransport().
					StubResponse(http.StatusOK, "fallback").
					StubPath("/api/v2/groups/", http.StatusNotFound, "missing")
			},
			path:           "/api/v2/groups/",
			wantStatus:     http.StatusNotFound,
			wantStatusLine: "404 Not Found",
			wantBody:       "missing",
		},
		{
			name: "given custom status line, then it is passed through",
			setup: func() *MockTransport {
				return NewMockTransport().StubStatus(http.StatusForbidden, "403 API key is invalid", "")
			},
			path:           "/",
			wantStatus:     http.StatusForbidden,
			wantStatusLine: "403 API key is invalid",
		},
		{
			name: "given matcher error, then error is returned",
			setup: func() *MockTransport {
				return NewMockTransport().StubFuncError(func(r *http.Request) bool {
					return strings.HasPrefix(r.URL.Path, "/api/")
				}, errors.New("connection reset"))
			},
			path:    "/api/v2/users/",
			wantErr: true,
		},
		{
			name:    "given no stubs, then request fails",
			setup:   NewMockTransport,
			path:    "/",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := tt.setup()

			req, err := http.NewRequest(http.MethodGet, "https://connpass.com"+tt.path, nil)
			require.NoError(t, err)

			resp, err := mock.RoundTrip(req)
			assert.Equal(t, 1, mock.RequestCount())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantStatusLine, resp.Status)
			assert.Same(t, req, resp.Request)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBody, string(body))
			assert.EqualValues(t, len(tt.wantBody), resp.ContentLength)
		})
	}
}

func TestMockTransport_CancelledContext(t *testing.T) {
	mock := NewMockTransport().StubResponse(http.StatusOK, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://connpass.com/", nil)
	require.NoError(t, err)

	_, err = mock.RoundTrip(req)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockTransport_RecordsRequests(t *testing.T) {
	var hooked int
	var mu sync.Mutex
	mock := NewMockTransport().
		StubResponse(http.StatusOK, "").
		OnRequest(func(*http.Request) {
			mu.Lock()
			hooked++
			mu.Unlock()
		})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequest(http.MethodGet, "https://connpass.com/api/v2/events/", nil)
			resp, err := mock.RoundTrip(req)
			if err == nil {
				resp.Body.Close()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, mock.RequestCount())
	assert.Len(t, mock.Requests(), 10)
	assert.Equal(t, 10, hooked)
	assert.NotNil(t, mock.LastRequest())

	mock.Reset()
	assert.Zero(t, mock.RequestCount())
	assert.Nil(t, mock.LastRequest())
}
