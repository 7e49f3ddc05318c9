package connpass

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Header names sent with every request.
const (
	HeaderAPIKey = "X-API-Key"
	headerAccept = "Accept"
	mimeJSON     = "application/json"
)

// RequestBuilder composes an API request from the base URL, a resource
// path and encoded query pairs. The connpass API is read-only, so every
// request is a GET.
//
//	req, err := NewRequestBuilder(DefaultBaseURL, apiKey).
//	    Path("users/{nickname}/groups/").
//	    PathParam("nickname", "haru860").
//	    Query(q.Encode()...).
//	    Build(ctx)
type RequestBuilder struct {
	baseURL    string
	apiKey     string
	userAgent  string
	path       string
	pathParams map[string]string
	query      []QueryPair
}

// NewRequestBuilder starts a request against baseURL authenticated with apiKey.
func NewRequestBuilder(baseURL, apiKey string) *RequestBuilder {
	return &RequestBuilder{
		baseURL:    baseURL,
		apiKey:     apiKey,
		pathParams: make(map[string]string),
	}
}

// Path sets the resource path relative to the base URL. Placeholders of
// the form {name} are filled by PathParam.
func (rb *RequestBuilder) Path(path string) *RequestBuilder {
	rb.path = path
	return rb
}

// PathParam fills the {key} placeholder of the path. The value is escaped
// as a single path segment.
func (rb *RequestBuilder) PathParam(key, value string) *RequestBuilder {
	rb.pathParams[key] = value
	return rb
}

// Query appends encoded query pairs. Repeated names are kept in order.
func (rb *RequestBuilder) Query(pairs ...QueryPair) *RequestBuilder {
	rb.query = append(rb.query, pairs...)
	return rb
}

// UserAgent sets the User-Agent header.
func (rb *RequestBuilder) UserAgent(ua string) *RequestBuilder {
	rb.userAgent = ua
	return rb
}

// URL returns the absolute request URL.
func (rb *RequestBuilder) URL() (*url.URL, error) {
	base, err := url.Parse(rb.baseURL)
	if err != nil {
		return nil, rb.urlError(err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, rb.urlError(errors.New("base URL must be absolute"))
	}
	if base.RawQuery != "" || base.Fragment != "" {
		return nil, rb.urlError(errors.New("base URL must not carry a query or fragment"))
	}

	path := rb.path
	for k, v := range rb.pathParams {
		if v == "" {
			return nil, rb.urlError(fmt.Errorf("path parameter %q is empty", k))
		}
		path = strings.ReplaceAll(path, "{"+k+"}", url.PathEscape(v))
	}
	if i := strings.IndexByte(path, '{'); i >= 0 {
		return nil, rb.urlError(fmt.Errorf("unfilled path parameter in %q", path))
	}

	ref, err := url.Parse(strings.TrimSuffix(base.String(), "/") + "/" + strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, rb.urlError(err)
	}

	if len(rb.query) > 0 {
		values := make(url.Values, len(rb.query))
		for _, p := range rb.query {
			values.Add(p.Name, p.Value)
		}
		ref.RawQuery = values.Encode()
	}

	return ref, nil
}

// Build returns the GET request bound to ctx. Failures are always
// *URLConstructionError.
func (rb *RequestBuilder) Build(ctx context.Context) (*http.Request, error) {
	u, err := rb.URL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, rb.urlError(err)
	}

	req.Header.Set(HeaderAPIKey, rb.apiKey)
	req.Header.Set(headerAccept, mimeJSON)
	if rb.userAgent != "" {
		req.Header.Set("User-Agent", rb.userAgent)
	}

	return req, nil
}

func (rb *RequestBuilder) urlError(err error) error {
	return &URLConstructionError{BaseURL: rb.baseURL, Path: rb.path, Err: err}
}
