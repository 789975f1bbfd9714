package builtin

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/coda-agent/coda/internal/util"
	"github.com/coda-agent/coda/tool"
)

const (
	maxWebContent     = 50000
	defaultWebTimeout = 30
	maxWebTimeout     = 120

	webUserAgent = "coda/1.0 (+https://github.com/coda-agent/coda)"
)

// WebFetchOptions configure a WebFetchTool.
type WebFetchOptions struct {
	// Client overrides the HTTP client, for tests.
	Client *http.Client
	// Timeout is the default request timeout in seconds.
	Timeout int
}

// WebFetchTool fetches the text content of a URL. HTML is stripped to
// readable text and JSON is pretty-printed.
type WebFetchTool struct {
	client  *http.Client
	timeout int
}

// NewWebFetchTool creates a web fetch tool.
func NewWebFetchTool(optFns ...func(o *WebFetchOptions)) *WebFetchTool {
	opts := WebFetchOptions{
		Timeout: defaultWebTimeout,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}

	return &WebFetchTool{
		client:  client,
		timeout: opts.Timeout,
	}
}

func (t *WebFetchTool) Name() string { return "web_fetch" }

func (t *WebFetchTool) Description() string {
	return "Fetch content from a URL. Returns the text content of the page. " +
		"Useful for reading documentation, API responses, or any web content. " +
		"Supports HTML (converted to readable text), JSON, and plain text."
}

func (t *WebFetchTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{
			Name:        "url",
			Type:        "string",
			Description: "The URL to fetch content from",
			Required:    true,
		},
		{
			Name:        "timeout",
			Type:        "integer",
			Description: fmt.Sprintf("Request timeout in seconds (default: %d, max: %d)", defaultWebTimeout, maxWebTimeout),
			Default:     defaultWebTimeout,
		},
	}
}

func (t *WebFetchTool) Execute(args map[string]any) (string, error) {
	rawURL := util.StringArg(args, "url", "")
	if rawURL == "" {
		return "", tool.NewExecutionError(t.Name(), "url is required")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", tool.NewExecutionError(t.Name(), "Invalid URL: %v", err)
	}
	if parsed.Scheme == "" {
		rawURL = "https://" + rawURL
		parsed, err = url.Parse(rawURL)
		if err != nil {
			return "", tool.NewExecutionError(t.Name(), "Invalid URL: %v", err)
		}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", tool.NewExecutionError(t.Name(), "Only HTTP(S) URLs are supported")
	}

	timeout := util.IntArg(args, "timeout", t.timeout)
	if timeout > maxWebTimeout {
		timeout = maxWebTimeout
	}
	if timeout <= 0 {
		timeout = t.timeout
	}

	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return "", tool.NewExecutionError(t.Name(), "Invalid URL: %v", err)
	}
	req.Header.Set("User-Agent", webUserAgent)

	client := *t.client
	client.Timeout = time.Duration(timeout) * time.Second

	resp, err := client.Do(req)
	if err != nil {
		if strings.Contains(err.Error(), "Client.Timeout") {
			return "", tool.NewExecutionError(t.Name(), "Request timed out after %d seconds", timeout)
		}
		return "", tool.NewExecutionError(t.Name(), "Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", tool.NewExecutionError(t.Name(), "HTTP error %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWebContent*4))
	if err != nil {
		return "", tool.NewExecutionError(t.Name(), "Failed to read response: %v", err)
	}

	contentType := resp.Header.Get("Content-Type")
	content := string(body)

	switch {
	case strings.Contains(strings.ToLower(contentType), "application/json"):
		var data any
		if json.Unmarshal(body, &data) == nil {
			if pretty, err := json.MarshalIndent(data, "", "  "); err == nil {
				content = string(pretty)
			}
		}
	case strings.Contains(strings.ToLower(contentType), "text/html"):
		content = stripHTML(content)
	}

	content = util.Truncate(content, maxWebContent, "\n\n... (content truncated)")

	return fmt.Sprintf("URL: %s\nStatus: %d\n\n%s", rawURL, resp.StatusCode, content), nil
}

var (
	scriptRe   = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe    = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	brRe       = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockRe    = regexp.MustCompile(`(?i)</?(p|div|h[1-6]|li|tr)[^>]*>`)
	tagRe      = regexp.MustCompile(`<[^>]+>`)
	blankRe    = regexp.MustCompile(`\n\s*\n`)
	spaceRunRe = regexp.MustCompile(` +`)
)

// stripHTML converts an HTML document to readable plain text.
func stripHTML(html string) string {
	html = scriptRe.ReplaceAllString(html, "")
	html = styleRe.ReplaceAllString(html, "")
	html = brRe.ReplaceAllString(html, "\n")
	html = blockRe.ReplaceAllString(html, "\n")
	html = tagRe.ReplaceAllString(html, "")

	replacer := strings.NewReplacer(
		"&nbsp;", " ",
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&quot;", `"`,
		"&#39;", "'",
	)
	html = replacer.Replace(html)

	html = blankRe.ReplaceAllString(html, "\n\n")
	html = spaceRunRe.ReplaceAllString(html, " ")

	return strings.TrimSpace(html)
}
