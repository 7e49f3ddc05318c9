// Package connpass is a typed client for the connpass event API v2.
//
// Every operation runs the same pipeline: the query struct is encoded
// into parameters through a fixed table, a GET request is built with the
// API key in the X-API-Key header, the status code is classified, and only
// successful bodies are decoded into typed results.
//
// # Quick Start
//
//	client := connpass.New(apiKey)
//
//	resp, err := client.GetEvents(ctx, &connpass.EventsQuery{
//	    Keyword:    []string{"Go"},
//	    Prefecture: []connpass.Prefecture{connpass.PrefectureTokyo},
//	    Order:      connpass.Order(connpass.OrderStartedAt),
//	    Count:      connpass.Int(20),
//	})
//
// # Errors
//
// Failures are one of *URLConstructionError, *TransportError,
// *ClientError, *ServerError, *UnexpectedStatusError or *DecodingError.
// Kind reports which, and Retryable says whether repeating the call may
// help:
//
//	if err != nil {
//	    var ce *connpass.ClientError
//	    if errors.As(err, &ce) && ce.StatusCode == http.StatusUnauthorized {
//	        return fmt.Errorf("check CONNPASS_API_KEY: %w", err)
//	    }
//	    if connpass.Retryable(err) {
//	        // back off and try again
//	    }
//	}
//
// # Observability
//
// The default transport creates an "HTTP GET" client span per request and
// records the http.client.* metrics. Each operation adds a parent span and
// the connpass.client.operation.duration and connpass.client.operation.errors
// instruments. WithDebug logs requests as curl commands with the API key
// masked.
package connpass
