package client

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	"github.com/rs/zerolog/log"
)

type options struct {
	tokens    TokenSource
	refresher Refresher
	cacheDir  string
	useCache  bool
	base      http.RoundTripper
}

// Option configures the transport chain of a Client.
type Option func(*options)

// WithTokenSource attaches the current access token to every request.
func WithTokenSource(ts TokenSource) Option {
	return func(o *options) { o.tokens = ts }
}

// WithRefresher enables the one-shot refresh-and-retry on 401 responses.
func WithRefresher(r Refresher) Option {
	return func(o *options) { o.refresher = r }
}

// WithCache enables HTTP response caching for endpoints that send
// Cache-Control headers (public contest and video listings). An empty
// dir uses an in-memory cache.
func WithCache(dir string) Option {
	return func(o *options) {
		o.useCache = true
		o.cacheDir = dir
	}
}

// WithBaseTransport overrides the underlying RoundTripper, mainly for tests.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

// buildTransport assembles the chain: request-id -> auth/retry -> cache -> base.
func buildTransport(o *options) http.RoundTripper {
	rt := o.base
	if rt == nil {
		rt = http.DefaultTransport
	}

	if o.useCache {
		var cache httpcache.Cache
		if o.cacheDir == "" {
			cache = httpcache.NewMemoryCache()
		} else {
			cache = diskcache.New(o.cacheDir)
		}
		cached := httpcache.NewTransport(cache)
		cached.Transport = rt
		rt = cached
	}

	rt = &authTransport{base: rt, tokens: o.tokens, refresher: o.refresher}

	return &requestIDTransport{base: rt}
}

// requestIDTransport tags each outgoing request with an X-Request-Id
// so failures can be correlated with server logs.
type requestIDTransport struct {
	base http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("X-Request-Id") == "" {
		r := req.Clone(req.Context())
		r.Header.Set("X-Request-Id", uuid.NewString())
		req = r
	}
	return t.base.RoundTrip(req)
}

// authTransport injects the bearer token and performs the one-shot
// refresh-and-retry when the server answers 401. If the refresh fails
// the original 401 response is returned unchanged so the caller sees
// the definitive rejection.
type authTransport struct {
	base      http.RoundTripper
	tokens    TokenSource
	refresher Refresher
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if t.tokens != nil {
		if token := t.tokens.AccessToken(); token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := t.base.RoundTrip(r)
	if err != nil || resp.StatusCode != http.StatusUnauthorized || t.refresher == nil {
		return resp, err
	}

	fresh, rerr := t.refresher.Refresh(req.Context())
	if rerr != nil || fresh == "" {
		log.Debug().Err(rerr).Str("url", req.URL.String()).Msg("token refresh failed, propagating 401")
		return resp, nil
	}

	retry, ok := replayableRequest(req)
	if !ok {
		// Streaming bodies (multipart uploads) cannot be replayed.
		return resp, nil
	}
	retry.Header.Set("Authorization", "Bearer "+fresh)

	resp.Body.Close()

	log.Debug().Str("url", req.URL.String()).Msg("retrying request with refreshed token")

	return t.base.RoundTrip(retry)
}

// replayableRequest clones req with a rewound body. Requests without a
// body always qualify; requests with one need GetBody.
func replayableRequest(req *http.Request) (*http.Request, bool) {
	r := req.Clone(req.Context())
	if req.Body == nil {
		return r, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	r.Body = body
	return r, true
}
