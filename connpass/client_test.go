package connpass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/sync/errgroup"

	"github.com/kroma-labs/connpass-go/httpclient"
)

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return b
}

func TestClient_GetEvents_EndToEnd(t *testing.T) {
	body := fixture(t, "events_bpstudy.json")

	var gotReq *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	defer server.Close()

	client := New("test_api_key", WithBaseURL(server.URL+"/api/v2"))

	resp, err := client.GetEvents(context.Background(), &EventsQuery{Keyword: []string{"BPStudy"}})
	require.NoError(t, err)

	require.NotNil(t, gotReq)
	assert.Equal(t, http.MethodGet, gotReq.Method)
	assert.Equal(t, "/api/v2/events/", gotReq.URL.Path)
	assert.Equal(t, []string{"BPStudy"}, gotReq.URL.Query()["keyword"])
	assert.Equal(t, "test_api_key", gotReq.Header.Get("X-API-Key"))
	assert.NotContains(t, gotReq.URL.RawQuery, "test_api_key")

	assert.Equal(t, 1, resp.ResultsReturned)
	require.Len(t, resp.Events, 1)

	e := resp.Events[0]
	assert.Equal(t, 364, e.ID)
	assert.Equal(t, "BPStudy#56", e.Title)
	require.NotNil(t, e.Group)
	assert.Equal(t, "BPStudy", e.Group.Title)
	assert.Equal(t, "https://bpstudy.connpass.com/", e.Group.URL)
	require.NotNil(t, e.Accepted)
	assert.Equal(t, 0, *e.Accepted)
	require.NotNil(t, e.Lat)
	assert.InDelta(t, 35.729987, *e.Lat, 1e-9)
	require.NotNil(t, e.Lon)
	assert.InDelta(t, 139.711114, *e.Lon, 1e-9)
	assert.Equal(t, "haru860", e.OwnerNickname)
}

func TestClient_GetEvents_Status(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   ErrorKind
		wantStatus int
	}{
		{
			name:       "given 404 with JSON body, then client error without decoding",
			status:     http.StatusNotFound,
			body:       `{"events":[{"id":"not-a-number"}]}`,
			wantKind:   KindClient,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "given 401, then client error",
			status:     http.StatusUnauthorized,
			body:       `{"error":"invalid api key"}`,
			wantKind:   KindClient,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "given 503 with HTML body, then server error",
			status:     http.StatusServiceUnavailable,
			body:       `<html>maintenance</html>`,
			wantKind:   KindServer,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:     "given 200 with invalid body, then decoding error",
			status:   http.StatusOK,
			body:     `{"results_returned":1}`,
			wantKind: KindDecoding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := httpclient.NewMockTransport().StubResponse(tt.status, tt.body)
			client := New("k", WithTransport(mock))

			resp, err := client.GetEvents(context.Background(), &EventsQuery{Keyword: []string{"BPStudy"}})
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.Equal(t, tt.wantKind, Kind(err))

			switch tt.wantKind {
			case KindClient:
				var ce *ClientError
				require.True(t, errors.As(err, &ce))
				assert.Equal(t, tt.wantStatus, ce.StatusCode)
				assert.Equal(t, http.StatusText(tt.wantStatus), ce.Reason)
			case KindServer:
				var se *ServerError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, tt.wantStatus, se.StatusCode)
				assert.True(t, Retryable(err))
			}
		})
	}
}

func TestClient_GetEvents_EmptyQueryIsUnfiltered(t *testing.T) {
	tests := []struct {
		name  string
		query *EventsQuery
	}{
		{name: "given nil query, then no query string", query: nil},
		{name: "given zero query, then no query string", query: &EventsQuery{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := httpclient.NewMockTransport().
				StubResponse(http.StatusOK, `{"results_returned":0,"results_start":1,"results_available":0,"events":[]}`)
			client := New("k", WithTransport(mock))

			resp, err := client.GetEvents(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Empty(t, resp.Events)

			req := mock.LastRequest()
			require.NotNil(t, req)
			assert.Empty(t, req.URL.RawQuery)
			assert.Equal(t, "https://connpass.com/api/v2/events/", req.URL.String())
		})
	}
}

func TestClient_TransportErrors(t *testing.T) {
	t.Run("given transport failure, then transport error wraps cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		client := New("k", WithTransport(httpclient.NewMockTransport().StubError(cause)))

		_, err := client.GetEvents(context.Background(), nil)

		var te *TransportError
		require.True(t, errors.As(err, &te))
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, KindTransport, Kind(err))
		assert.True(t, Retryable(err))
		assert.NotContains(t, err.Error(), "X-API-Key")
	})

	t.Run("given cancelled context, then transport error is not retryable", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := New("k", WithTransport(httpclient.NewMockTransport().StubResponse(http.StatusOK, `{}`)))

		_, err := client.GetEvents(ctx, nil)
		assert.Equal(t, KindTransport, Kind(err))
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, Retryable(err))
	})

	t.Run("given deadline exceeded on slow server, then transport error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		client := New("k", WithBaseURL(server.URL))
		_, err := client.GetEvents(ctx, nil)

		assert.Equal(t, KindTransport, Kind(err))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("given invalid base URL, then no request is sent", func(t *testing.T) {
		mock := httpclient.NewMockTransport().StubResponse(http.StatusOK, `{}`)
		client := New("k", WithBaseURL("::not a url"), WithTransport(mock))

		_, err := client.GetEvents(context.Background(), nil)
		assert.Equal(t, KindURLConstruction, Kind(err))
		assert.False(t, Retryable(err))
		assert.Zero(t, mock.RequestCount())
	})
}

func TestClient_UserResources(t *testing.T) {
	const events = `{"results_returned":0,"results_start":1,"results_available":0,"events":[]}`
	const groups = `{"results_returned":0,"results_start":1,"results_available":0,"groups":[]}`
	const users = `{"results_returned":0,"results_start":1,"results_available":0,"users":[]}`

	mock := httpclient.NewMockTransport().
		StubPath("/api/v2/groups/", http.StatusOK, groups).
		StubPath("/api/v2/users/", http.StatusOK, users).
		StubPath("/api/v2/users/haru860/groups/", http.StatusOK, groups).
		StubPath("/api/v2/users/haru860/attended_events/", http.StatusOK, events).
		StubPath("/api/v2/users/haru860/presenter_events/", http.StatusOK, events)
	client := New("k", WithTransport(mock))
	ctx := context.Background()

	tests := []struct {
		name      string
		call      func() error
		wantPath  string
		wantQuery string
	}{
		{
			name: "given groups query, then subdomain is repeated",
			call: func() error {
				_, err := client.GetGroups(ctx, &GroupsQuery{Subdomain: []string{"bpstudy", "gocon"}})
				return err
			},
			wantPath:  "/api/v2/groups/",
			wantQuery: "subdomain=bpstudy&subdomain=gocon",
		},
		{
			name: "given users query, then nickname is sent",
			call: func() error {
				_, err := client.GetUsers(ctx, &UsersQuery{Nickname: []string{"haru860"}})
				return err
			},
			wantPath:  "/api/v2/users/",
			wantQuery: "nickname=haru860",
		},
		{
			name: "given user groups with page, then nickname fills the path",
			call: func() error {
				_, err := client.GetUserGroups(ctx, "haru860", &PageQuery{Count: Int(20)})
				return err
			},
			wantPath:  "/api/v2/users/haru860/groups/",
			wantQuery: "count=20",
		},
		{
			name: "given attended events, then uses attended path",
			call: func() error {
				_, err := client.GetUserAttendedEvents(ctx, "haru860", nil)
				return err
			},
			wantPath: "/api/v2/users/haru860/attended_events/",
		},
		{
			name: "given presenter events, then uses presenter path",
			call: func() error {
				_, err := client.GetUserPresenterEvents(ctx, "haru860", nil)
				return err
			},
			wantPath: "/api/v2/users/haru860/presenter_events/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.call())

			req := mock.LastRequest()
			require.NotNil(t, req)
			assert.Equal(t, tt.wantPath, req.URL.Path)
			assert.Equal(t, tt.wantQuery, req.URL.RawQuery)
			assert.Equal(t, "k", req.Header.Get("X-API-Key"))
		})
	}

	t.Run("given empty nickname, then URL construction error", func(t *testing.T) {
		_, err := client.GetUserGroups(ctx, "", nil)
		assert.Equal(t, KindURLConstruction, Kind(err))
	})
}

func TestClient_ConcurrentCalls(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		kw := r.URL.Query().Get("keyword")
		if kw == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{"results_returned":0,"results_start":1,"results_available":%d,"events":[]}`, len(kw))
	}))
	defer server.Close()

	client := New("k", WithBaseURL(server.URL))

	keywords := []string{"go", "rust", "python", "missing", "kotlin", "swift", "missing", "zig"}
	results := make([]int, len(keywords))
	failures := make([]error, len(keywords))

	var g errgroup.Group
	for i, kw := range keywords {
		g.Go(func() error {
			resp, err := client.GetEvents(context.Background(), &EventsQuery{Keyword: []string{kw}})
			if err != nil {
				failures[i] = err
				return nil
			}
			results[i] = resp.ResultsAvailable
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.EqualValues(t, len(keywords), hits.Load())
	for i, kw := range keywords {
		if kw == "missing" {
			assert.Equal(t, KindClient, Kind(failures[i]))
			continue
		}
		assert.NoError(t, failures[i])
		assert.Equal(t, len(kw), results[i])
	}
}

func TestClient_Telemetry(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer tp.Shutdown(context.Background())
	defer mp.Shutdown(context.Background())

	mock := httpclient.NewMockTransport().
		StubPath("/api/v2/events/", http.StatusOK, string(fixture(t, "events_bpstudy.json"))).
		StubPath("/api/v2/groups/", http.StatusForbidden, `{}`)

	client := New("k",
		WithTransport(mock),
		WithTracerProvider(tp),
		WithMeterProvider(mp),
	)

	_, err := client.GetEvents(context.Background(), nil)
	require.NoError(t, err)
	_, err = client.GetGroups(context.Background(), nil)
	require.Error(t, err)

	spans := exporter.GetSpans()
	var names []string
	for _, s := range spans {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "connpass.GetEvents")
	assert.Contains(t, names, "connpass.GetGroups")

	var httpSpans int
	for _, s := range spans {
		if s.Name == "HTTP GET" {
			httpSpans++
		}
	}
	assert.Equal(t, 2, httpSpans)

	for _, s := range spans {
		if s.Name == "HTTP GET" {
			for _, kv := range s.Attributes {
				assert.NotContains(t, kv.Value.Emit(), "X-API-Key")
			}
		}
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var sawDuration, sawErrors bool
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch m.Name {
			case "connpass.client.operation.duration":
				sawDuration = true
				hist, ok := m.Data.(metricdata.Histogram[float64])
				require.True(t, ok)
				var count uint64
				for _, dp := range hist.DataPoints {
					count += dp.Count
				}
				assert.EqualValues(t, 2, count)
			case "connpass.client.operation.errors":
				sawErrors = true
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				require.Len(t, sum.DataPoints, 1)
				kind, ok := sum.DataPoints[0].Attributes.Value(attribute.Key("error.kind"))
				require.True(t, ok)
				assert.Equal(t, "client", kind.AsString())
			}
		}
	}
	assert.True(t, sawDuration)
	assert.True(t, sawErrors)
}

func TestClient_DebugLogRedactsAPIKey(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	mock := httpclient.NewMockTransport().
		StubResponse(http.StatusOK, `{"results_returned":0,"results_start":1,"results_available":0,"events":[]}`)
	client := New("super-secret-key",
		WithTransport(mock),
		WithLogger(logger),
		WithDebug(true),
	)

	_, err := client.GetEvents(context.Background(), &EventsQuery{Keyword: []string{"go"}})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "curl")
	assert.Contains(t, out, "keyword=go")
	assert.Contains(t, out, "request_id")
	assert.NotContains(t, out, "super-secret-key")
	assert.True(t, strings.Contains(out, "X-Api-Key: ***"))
}

func TestClient_WithHTTPClient(t *testing.T) {
	mock := httpclient.NewMockTransport().StubResponse(http.StatusTeapot, "")
	client := New("k", WithHTTPClient(&http.Client{Transport: mock}))

	_, err := client.GetEvents(context.Background(), nil)

	var ce *ClientError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, http.StatusTeapot, ce.StatusCode)
	assert.Equal(t, 1, mock.RequestCount())
}
