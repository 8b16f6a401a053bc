package fetch_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/docfs/internal/fetch"
	"github.com/GriffinCanCode/docfs/internal/infrastructure/config"
	"github.com/GriffinCanCode/docfs/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/docfs/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/docfs/internal/store/memory"
	"github.com/GriffinCanCode/docfs/internal/vfs"
)

func testConfig() config.FetchConfig {
	cfg := config.Default().Fetch
	cfg.RetryCount = 0
	cfg.RateLimit = 0
	cfg.MaxRedirects = 3
	return cfg
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/hello", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "hello world\n")
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_, _ = io.WriteString(w, r.Method+" "+r.Header.Get("X-Test")+" "+string(body))
	})
	mux.HandleFunc("/trace", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.Header.Get(tracing.TraceHeader))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "nope")
	})
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, "<html><body><p>fish &amp; chips</p><script>x()</script></body></html>")
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/hello", http.StatusFound)
	})
	mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchReturnsBody(t *testing.T) {
	srv := newServer(t)
	c := fetch.NewClient(testConfig())

	res, err := c.Fetch(context.Background(), nil, fetch.Request{URL: srv.URL + "/hello"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.True(t, res.OK())
	assert.Equal(t, "hello world\n", res.Body)
	assert.Empty(t, res.SavedTo)
	assert.Contains(t, res.ContentType, "text/plain")
}

func TestFetchPropagatesTrace(t *testing.T) {
	srv := newServer(t)
	c := fetch.NewClient(testConfig())
	tracer := tracing.New("test", nil)
	defer tracer.Close()

	span, ctx := tracer.StartSpan(context.Background(), "curl")
	res, err := c.Fetch(ctx, nil, fetch.Request{URL: srv.URL + "/trace"})
	require.NoError(t, err)
	assert.Equal(t, string(span.TraceID), res.Body)
}

func TestFetchSavesOutput(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t)
	fs := vfs.New(memory.New())
	c := fetch.NewClient(testConfig())

	res, err := c.Fetch(ctx, fs, fetch.Request{URL: srv.URL + "/hello", Output: "/out.txt"})
	require.NoError(t, err)
	assert.Equal(t, "/out.txt", res.SavedTo)

	content, err := fs.Cat(ctx, "/out.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", content)
}

func TestFetchNonSuccessStillSaves(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t)
	fs := vfs.New(memory.New())
	c := fetch.NewClient(testConfig())

	res, err := c.Fetch(ctx, fs, fetch.Request{URL: srv.URL + "/missing", Output: "/missing.txt"})
	require.ErrorIs(t, err, fetch.ErrStatus)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, "/missing.txt", res.SavedTo)

	content, err := fs.Cat(ctx, "/missing.txt")
	require.NoError(t, err)
	assert.Equal(t, "nope", content)
}

func TestFetchMethodHeadersAndData(t *testing.T) {
	srv := newServer(t)
	c := fetch.NewClient(testConfig())
	data := "payload"

	res, err := c.Fetch(context.Background(), nil, fetch.Request{
		URL:     srv.URL + "/echo",
		Headers: []fetch.Header{{Key: "X-Test", Value: "yes"}},
		Data:    &data,
	})
	require.NoError(t, err)
	assert.Equal(t, "POST yes payload", res.Body)

	res, err = c.Fetch(context.Background(), nil, fetch.Request{URL: srv.URL + "/echo", Method: "put", Data: &data})
	require.NoError(t, err)
	assert.Equal(t, "PUT  payload", res.Body)
}

func TestFetchRedirects(t *testing.T) {
	srv := newServer(t)
	c := fetch.NewClient(testConfig())

	res, err := c.Fetch(context.Background(), nil, fetch.Request{URL: srv.URL + "/moved"})
	require.ErrorIs(t, err, fetch.ErrStatus)
	assert.Equal(t, http.StatusFound, res.Status)

	res, err = c.Fetch(context.Background(), nil, fetch.Request{URL: srv.URL + "/moved", Follow: true})
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", res.Body)

	_, err = c.Fetch(context.Background(), nil, fetch.Request{URL: srv.URL + "/loop", Follow: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many redirects")
}

func TestFetchText(t *testing.T) {
	srv := newServer(t)
	c := fetch.NewClient(testConfig())

	res, err := c.Fetch(context.Background(), nil, fetch.Request{URL: srv.URL + "/page", Text: true})
	require.NoError(t, err)
	assert.Contains(t, res.Body, "fish & chips")
	assert.NotContains(t, res.Body, "<p>")
	assert.NotContains(t, res.Body, "x()")
}

func TestFetchRequiresURL(t *testing.T) {
	c := fetch.NewClient(testConfig())
	_, err := c.Fetch(context.Background(), nil, fetch.Request{})
	assert.Error(t, err)
}

func TestFetchMetrics(t *testing.T) {
	srv := newServer(t)
	m := monitoring.NewMetricsWith(prometheus.NewRegistry())
	c := fetch.NewClient(testConfig(), fetch.WithMetrics(m))

	_, err := c.Fetch(context.Background(), nil, fetch.Request{URL: srv.URL + "/hello"})
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FetchRequests.WithLabelValues("GET", "200")))
	assert.Equal(t, float64(len("hello world\n")), testutil.ToFloat64(m.FetchBytes))
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/docs/guide.html", "guide.html"},
		{"https://example.com/docs/", "docs"},
		{"https://example.com", "index.html"},
		{"https://example.com/", "index.html"},
		{"https://example.com/a/file.txt?x=1", "file.txt"},
		{"not a url", "index.html"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, fetch.OutputName(tt.url))
		})
	}
}
