package builtin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coda-agent/coda/tool"
)

func newTestFetch(server *httptest.Server) *WebFetchTool {
	return NewWebFetchTool(func(o *WebFetchOptions) {
		o.Client = server.Client()
	})
}

func TestWebFetchPlainText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("hello from server"))
	}))
	defer server.Close()

	f := newTestFetch(server)
	out, err := f.Execute(map[string]any{"url": server.URL})
	require.NoError(t, err)
	assert.Contains(t, out, "Status: 200")
	assert.Contains(t, out, "hello from server")
}

func TestWebFetchJSONPrettyPrinted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"coda","ok":true}`))
	}))
	defer server.Close()

	f := newTestFetch(server)
	out, err := f.Execute(map[string]any{"url": server.URL})
	require.NoError(t, err)
	assert.Contains(t, out, "\"name\": \"coda\"")
}

func TestWebFetchHTMLStripped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><head><script>var x=1;</script></head><body><h1>Title</h1><p>Body &amp; more</p></body></html>"))
	}))
	defer server.Close()

	f := newTestFetch(server)
	out, err := f.Execute(map[string]any{"url": server.URL})
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "Body & more")
	assert.NotContains(t, out, "<h1>")
	assert.NotContains(t, out, "var x=1")
}

func TestWebFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	f := newTestFetch(server)
	_, err := f.Execute(map[string]any{"url": server.URL})

	var execErr *tool.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, execErr.Reason, "HTTP error 404")
}

func TestWebFetchRejectsNonHTTPScheme(t *testing.T) {
	f := NewWebFetchTool()
	_, err := f.Execute(map[string]any{"url": "ftp://example.com/file"})
	require.Error(t, err)
}

func TestWebFetchRequiresURL(t *testing.T) {
	f := NewWebFetchTool()
	_, err := f.Execute(map[string]any{})
	require.Error(t, err)
}

func TestStripHTML(t *testing.T) {
	html := "<div>one</div><style>.a{}</style><br>two &lt;tag&gt;"
	out := stripHTML(html)
	assert.Contains(t, out, "one")
	assert.Contains(t, out, "two <tag>")
	assert.NotContains(t, out, ".a{}")
}
