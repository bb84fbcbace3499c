// Package httpclient is a small JSON client for the HTTP collaborators of a sale.
package httpclient

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common"
	"github.com/gaze-network/launchpad/pkg/logger"
	"github.com/gaze-network/launchpad/pkg/logger/slogx"
	"github.com/valyala/fasthttp"
)

type Config struct {
	// Debug logs every request.
	Debug bool

	// Headers are sent with every request.
	Headers map[string]string

	// Timeout bounds every request. Zero falls back to the context deadline, if any.
	Timeout time.Duration
}

type Client struct {
	baseURL *url.URL
	Config
}

func New(baseURL string, config ...Config) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "can't parse base url")
	}
	var cf Config
	if len(config) > 0 {
		cf = config[0]
	}
	return &Client{
		baseURL: parsed,
		Config:  cf,
	}, nil
}

type RequestOptions struct {
	// JSON is marshaled as the request body when Body is nil.
	JSON   any
	Body   []byte
	Query  url.Values
	Header map[string]string
}

type Response struct {
	URL string
	fasthttp.Response
}

// IsSuccess reports a 2xx status code.
func (r *Response) IsSuccess() bool {
	return r.StatusCode() >= 200 && r.StatusCode() < 300
}

func (r *Response) UnmarshalBody(out any) error {
	body, err := r.BodyUncompressed()
	if err != nil {
		return errors.Wrapf(err, "can't uncompress body from %v", r.URL)
	}
	contentType, _, _ := strings.Cut(strings.ToLower(string(r.Header.ContentType())), ";")
	if contentType != "application/json" {
		return errors.Errorf("unsupported content type %q from %s: %q", contentType, r.URL, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "can't unmarshal json body from %s, %q", r.URL, string(body))
	}
	return nil
}

// Result decodes the {error, result} envelope of a collaborator response.
func Result[T any](r *Response) (T, error) {
	var (
		zero     T
		envelope common.HttpResponse[T]
	)
	if err := r.UnmarshalBody(&envelope); err != nil {
		return zero, errors.WithStack(err)
	}
	if envelope.Error != nil {
		return zero, errors.Errorf("%s responded with error: %s", r.URL, *envelope.Error)
	}
	if envelope.Result == nil {
		return zero, errors.Errorf("%s responded without result", r.URL)
	}
	return *envelope.Result, nil
}

func (h *Client) Get(ctx context.Context, path string, opts RequestOptions) (*Response, error) {
	return h.Do(ctx, fasthttp.MethodGet, path, opts)
}

func (h *Client) Post(ctx context.Context, path string, opts RequestOptions) (*Response, error) {
	return h.Do(ctx, fasthttp.MethodPost, path, opts)
}

func (h *Client) Do(ctx context.Context, method, reqPath string, opts RequestOptions) (*Response, error) {
	body := opts.Body
	if body == nil && opts.JSON != nil {
		var err error
		if body, err = json.Marshal(opts.JSON); err != nil {
			return nil, errors.Wrap(err, "can't marshal request body")
		}
	}

	target := h.BaseURL()
	target.Path = path.Join(target.Path, reqPath)
	if len(opts.Query) > 0 {
		query := target.Query()
		for k, vs := range opts.Query {
			query[k] = append(query[k], vs...)
		}
		target.RawQuery = query.Encode()
	}
	uri := target.String()

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	for k, v := range h.Headers {
		req.Header.Set(k, v)
	}
	for k, v := range opts.Header {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	start := time.Now()
	var err error
	if deadline, ok := ctx.Deadline(); ok && (h.Timeout == 0 || time.Until(deadline) < h.Timeout) {
		err = fasthttp.DoDeadline(req, resp, deadline)
	} else if h.Timeout > 0 {
		err = fasthttp.DoTimeout(req, resp, h.Timeout)
	} else {
		err = fasthttp.Do(req, resp)
	}
	if h.Debug {
		logger.DebugContext(ctx, "Finished request",
			slogx.String("package", "httpclient"),
			slogx.String("method", method),
			slogx.String("url", uri),
			slogx.Duration("latency", time.Since(start)),
			slog.Int("status_code", resp.StatusCode()),
			slog.Int("resp_content_length", len(resp.Body())),
			slogx.Error(err),
		)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "url: %s", uri)
	}

	out := &Response{URL: uri}
	resp.CopyTo(&out.Response)
	return out, nil
}

// BaseURL returns a copy of the base URL of the client.
func (h *Client) BaseURL() *url.URL {
	u := *h.baseURL
	return &u
}
