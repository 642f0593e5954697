package notion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Method  string
	Path    string
	Header  http.Header
	Payload map[string]any
}

func newStore(t *testing.T, status int, body string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var got []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		var payload map[string]any
		assert.NoError(t, json.Unmarshal(b, &payload))
		got = append(got, capturedRequest{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone(), Payload: payload})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func contentOf(t *testing.T, payload map[string]any) string {
	t.Helper()
	props := payload["properties"].(map[string]any)
	rt := props["Content"].(map[string]any)["rich_text"].([]any)
	require.Len(t, rt, 1)
	return rt[0].(map[string]any)["text"].(map[string]any)["content"].(string)
}

func titleOf(t *testing.T, payload map[string]any) string {
	t.Helper()
	props := payload["properties"].(map[string]any)
	title := props["Name"].(map[string]any)["title"].([]any)
	require.Len(t, title, 1)
	return title[0].(map[string]any)["text"].(map[string]any)["content"].(string)
}

func TestContent_Truncates(t *testing.T) {
	assert.Equal(t, "short", Content("short"))
	long := strings.Repeat("ж", MaxContentChars+500)
	assert.Equal(t, MaxContentChars, utf8.RuneCountInString(Content(long)))
}

func TestHTTPPublisher_Success(t *testing.T) {
	srv, got := newStore(t, http.StatusOK, `{"object":"page","id":"p1"}`)
	p := NewHTTPPublisher("ntn-token", "db-1")
	p.BaseURL = srv.URL + "/v1"

	require.NoError(t, p.Publish(context.Background(), strings.Repeat("a", 2500)))

	require.Len(t, *got, 1)
	req := (*got)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/v1/pages", req.Path)
	assert.Equal(t, "Bearer ntn-token", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, APIVersion, req.Header.Get("Notion-Version"))

	assert.Equal(t, "db-1", req.Payload["parent"].(map[string]any)["database_id"])
	assert.Equal(t, PageTitle, titleOf(t, req.Payload))
	assert.Len(t, contentOf(t, req.Payload), MaxContentChars)
}

func TestHTTPPublisher_Non200(t *testing.T) {
	for _, status := range []int{http.StatusCreated, http.StatusBadRequest, http.StatusUnauthorized} {
		srv, _ := newStore(t, status, `{"object":"error","message":"nope"}`)
		p := NewHTTPPublisher("ntn-token", "db-1")
		p.BaseURL = srv.URL

		err := p.Publish(context.Background(), "hello")
		require.Error(t, err)

		var pe *PublishError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, status, pe.StatusCode)
		assert.Contains(t, pe.Body, "nope")
		assert.Contains(t, err.Error(), strconv.Itoa(status))
	}
}

func TestHTTPPublisher_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	p := NewHTTPPublisher("ntn-token", "db-1")
	p.BaseURL = srv.URL
	err := p.Publish(context.Background(), "hello")

	var pe *PublishError
	require.True(t, errors.As(err, &pe))
	assert.Zero(t, pe.StatusCode)
	assert.NotNil(t, pe.Unwrap())
}

// rewriteTransport points the notionapi client at the test server.
type rewriteTransport struct{ target *url.URL }

func (rt rewriteTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.URL.Scheme = rt.target.Scheme
	r.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

func clientFor(t *testing.T, srv *httptest.Server) *ClientPublisher {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	hc := &http.Client{Transport: rewriteTransport{target: u}}
	return NewClientPublisher("ntn-token", "db-2", notionapi.WithHTTPClient(hc))
}

func TestClientPublisher_Success(t *testing.T) {
	srv, got := newStore(t, http.StatusOK, `{"object":"page","id":"p2"}`)
	p := clientFor(t, srv)

	require.NoError(t, p.Publish(context.Background(), strings.Repeat("b", 2100)))

	require.Len(t, *got, 1)
	req := (*got)[0]
	assert.True(t, strings.HasSuffix(req.Path, "/pages"))
	assert.Equal(t, "Bearer ntn-token", req.Header.Get("Authorization"))
	assert.Equal(t, APIVersion, req.Header.Get("Notion-Version"))
	assert.Equal(t, "db-2", req.Payload["parent"].(map[string]any)["database_id"])
	assert.Equal(t, PageTitle, titleOf(t, req.Payload))
	assert.Len(t, contentOf(t, req.Payload), MaxContentChars)
}

func TestClientPublisher_APIError(t *testing.T) {
	srv, _ := newStore(t, http.StatusBadRequest,
		`{"object":"error","status":400,"code":"validation_error","message":"Content is not a property"}`)
	p := clientFor(t, srv)

	err := p.Publish(context.Background(), "hello")
	var pe *PublishError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusBadRequest, pe.StatusCode)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "Content is not a property")
}
