package fetch

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/docfs/internal/infrastructure/resilience"
)

// DefaultOutputName is used when a URL has no usable path segment.
const DefaultOutputName = "index.html"

// ErrStatus is wrapped by the error returned for non-2xx responses.
var ErrStatus = errors.New("unexpected HTTP status")

// Writer is the part of the filesystem fetch saves into.
type Writer interface {
	WriteFile(ctx context.Context, path, content string) error
}

// Header is one request header.
type Header struct {
	Key   string
	Value string
}

// Request describes one fetch.
type Request struct {
	URL     string
	Method  string // defaults to POST with Data, else GET
	Headers []Header
	Data    *string
	Follow  bool
	// Output is the virtual path the body is saved to. Empty means the body
	// is only returned.
	Output string
	// Text strips HTML markup from HTML responses before returning or saving.
	Text bool
}

// Result is the outcome of a fetch.
type Result struct {
	Status      int    `json:"status"`
	StatusText  string `json:"status_text"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
	SavedTo     string `json:"saved_to,omitempty"`
}

// OK reports whether the status is 2xx.
func (r *Result) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

var strict = bluemonday.StrictPolicy()

// Fetch performs req. When Output is set the body is written through fs
// even if the status is not 2xx; the status error is returned afterwards
// together with the result.
func (c *Client) Fetch(ctx context.Context, fs Writer, req Request) (*Result, error) {
	if req.URL == "" {
		return nil, errors.New("url is required")
	}
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
		if req.Data != nil {
			method = http.MethodPost
		}
	}

	r, err := c.request(ctx, req.Follow)
	if err != nil {
		return nil, err
	}
	for _, h := range req.Headers {
		r.SetHeader(h.Key, h.Value)
	}
	if req.Data != nil {
		r.SetBody(*req.Data)
	}

	resp, err := resilience.Do(c.breaker, func() (*resty.Response, error) {
		return r.Execute(method, req.URL)
	})
	if err != nil {
		c.record(method, "error", 0)
		return nil, fmt.Errorf("%s %s: %w", method, req.URL, err)
	}

	raw := resp.Body()
	detected := mimetype.Detect(raw)
	body := strings.ToValidUTF8(string(raw), "�")
	if req.Text && isHTML(resp.Header().Get("Content-Type"), detected) {
		body = html.UnescapeString(strict.Sanitize(body))
	}

	result := &Result{
		Status:      resp.StatusCode(),
		StatusText:  resp.Status(),
		ContentType: detected.String(),
		Body:        body,
	}
	c.record(method, strconv.Itoa(result.Status), len(raw))
	c.logger.Debug("fetch",
		zap.String("method", method),
		zap.String("url", req.URL),
		zap.Int("status", result.Status),
		zap.Int("bytes", len(raw)),
	)

	if req.Output != "" {
		if err := fs.WriteFile(ctx, req.Output, body); err != nil {
			return result, err
		}
		result.SavedTo = req.Output
	}
	if !result.OK() {
		return result, fmt.Errorf("%w %d", ErrStatus, result.Status)
	}
	return result, nil
}

func (c *Client) record(method, status string, n int) {
	if c.metrics != nil {
		c.metrics.RecordFetch(method, status, n)
	}
}

func isHTML(header string, detected *mimetype.MIME) bool {
	if strings.Contains(strings.ToLower(header), "html") {
		return true
	}
	return detected.Is("text/html")
}

// OutputName derives a file name from the last non-empty path segment of
// rawURL, falling back to index.html.
func OutputName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return DefaultOutputName
	}
	segments := strings.Split(u.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return DefaultOutputName
}
