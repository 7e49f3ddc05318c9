package connpass

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Resource paths relative to the base URL.
const (
	pathEvents              = "events/"
	pathGroups              = "groups/"
	pathUsers               = "users/"
	pathUserGroups          = "users/{nickname}/groups/"
	pathUserAttendedEvents  = "users/{nickname}/attended_events/"
	pathUserPresenterEvents = "users/{nickname}/presenter_events/"
	pathParamNickname       = "nickname"
)

// Client calls the connpass API. Its configuration is fixed at
// construction, so one Client may be shared by any number of goroutines.
// The client never retries; see Retryable.
type Client struct {
	apiKey     string
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     zerolog.Logger
	tracer     trace.Tracer
	metrics    *operationMetrics
}

// New creates a Client that authenticates with apiKey.
//
// Example:
//
//	client := connpass.New(os.Getenv("CONNPASS_API_KEY"),
//	    connpass.WithHTTPConfig(httpclient.LowLatencyConfig()),
//	)
//	resp, err := client.GetEvents(ctx, &connpass.EventsQuery{Keyword: []string{"Go"}})
func New(apiKey string, opts ...Option) *Client {
	cfg := newClientConfig(opts...)

	// Metrics are best effort; a nil recorder is a no-op.
	m, _ := newOperationMetrics(cfg.meterProvider.Meter(scope))

	return &Client{
		apiKey:     apiKey,
		baseURL:    cfg.baseURL,
		userAgent:  cfg.userAgent,
		httpClient: cfg.buildHTTPClient(),
		logger:     cfg.logger,
		tracer:     cfg.tracerProvider.Tracer(scope),
		metrics:    m,
	}
}

// BaseURL returns the endpoint the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// GetEvents searches events. A nil or empty query returns the default,
// unfiltered listing.
func (c *Client) GetEvents(ctx context.Context, q *EventsQuery) (*EventsResponse, error) {
	rb := c.request(pathEvents).Query(q.Encode()...)
	return do(ctx, c, "GetEvents", rb, decodeEventsResponse)
}

// GetGroups searches groups.
func (c *Client) GetGroups(ctx context.Context, q *GroupsQuery) (*GroupsResponse, error) {
	rb := c.request(pathGroups).Query(q.Encode()...)
	return do(ctx, c, "GetGroups", rb, decodeGroupsResponse)
}

// GetUsers searches users.
func (c *Client) GetUsers(ctx context.Context, q *UsersQuery) (*UsersResponse, error) {
	rb := c.request(pathUsers).Query(q.Encode()...)
	return do(ctx, c, "GetUsers", rb, decodeUsersResponse)
}

// GetUserGroups lists the groups a user belongs to.
func (c *Client) GetUserGroups(ctx context.Context, nickname string, q *PageQuery) (*GroupsResponse, error) {
	rb := c.request(pathUserGroups).PathParam(pathParamNickname, nickname).Query(q.Encode()...)
	return do(ctx, c, "GetUserGroups", rb, decodeGroupsResponse)
}

// GetUserAttendedEvents lists events a user attended.
func (c *Client) GetUserAttendedEvents(ctx context.Context, nickname string, q *PageQuery) (*EventsResponse, error) {
	rb := c.request(pathUserAttendedEvents).PathParam(pathParamNickname, nickname).Query(q.Encode()...)
	return do(ctx, c, "GetUserAttendedEvents", rb, decodeEventsResponse)
}

// GetUserPresenterEvents lists events a user presented at.
func (c *Client) GetUserPresenterEvents(ctx context.Context, nickname string, q *PageQuery) (*EventsResponse, error) {
	rb := c.request(pathUserPresenterEvents).PathParam(pathParamNickname, nickname).Query(q.Encode()...)
	return do(ctx, c, "GetUserPresenterEvents", rb, decodeEventsResponse)
}

func (c *Client) request(path string) *RequestBuilder {
	return NewRequestBuilder(c.baseURL, c.apiKey).Path(path).UserAgent(c.userAgent)
}

// do runs one operation: build, send, classify, decode. Errors are
// returned exactly as the failing stage produced them.
func do[T any](ctx context.Context, c *Client, op string, rb *RequestBuilder, dec Decoder[T]) (*T, error) {
	start := time.Now()
	logger := c.logger.With().
		Str("operation", op).
		Str("request_id", uuid.NewString()).
		Logger()

	ctx, span := c.tracer.Start(ctx, "connpass."+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("connpass.operation", op)),
	)
	defer span.End()

	v, err := execute(ctx, c, rb, dec)
	elapsed := time.Since(start)
	c.metrics.record(ctx, op, elapsed, err)

	if err != nil {
		kind := Kind(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.kind", kind.String()))
		logger.Debug().
			Err(err).
			Stringer("error_kind", kind).
			Bool("retryable", Retryable(err)).
			Dur("duration", elapsed).
			Msg("connpass operation failed")
		return nil, err
	}

	logger.Debug().Dur("duration", elapsed).Msg("connpass operation completed")
	return &v, nil
}

func execute[T any](ctx context.Context, c *Client, rb *RequestBuilder, dec Decoder[T]) (T, error) {
	var zero T

	req, err := rb.Build(ctx)
	if err != nil {
		return zero, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, &TransportError{Method: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	// Non-success bodies are never read.
	if err := classifyResponse(resp); err != nil {
		return zero, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, &TransportError{Method: req.Method, URL: req.URL.String(), Err: err}
	}

	return decodeBody(body, dec)
}
