// Package translate wraps the MyMemory translation endpoint. Failures never
// surface to callers: the original text is returned instead.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"imagecraft/internal/infra"
)

// Options configures the translation client.
type Options struct {
	BaseURL        string
	LangPair       string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client translates prompts before they are sent to the image service.
type Client struct {
	baseURL    string
	langPair   string
	httpClient *http.Client
	logger     *infra.Logger
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus json.RawMessage `json:"responseStatus"`
}

// status reads responseStatus, which MyMemory sends as a number or a string.
func (r myMemoryResponse) status() (int, bool) {
	v := strings.Trim(strings.TrimSpace(string(r.ResponseStatus)), `"`)
	if v == "" || v == "null" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.mymemory.translated.net"
	}
	langPair := strings.TrimSpace(opts.LangPair)
	if langPair == "" {
		langPair = "ar|en"
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Client{baseURL: baseURL, langPair: langPair, httpClient: httpClient, logger: logger}
}

// LangPair reports the configured "from|to" pair.
func (c *Client) LangPair() string { return c.langPair }

// Translate returns the translated text, or text itself on any failure.
func (c *Client) Translate(ctx context.Context, text string) string {
	out, err := c.TranslateStrict(ctx, text)
	if err != nil {
		c.logger.Debug().Err(err).Msg("translate: falling back to original text")
		return text
	}
	return out
}

// TranslateStrict is Translate without the fallback.
func (c *Client) TranslateStrict(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("translate: empty text")
	}
	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", c.langPair)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/get?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("translate: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("translate: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("translate: status %d", resp.StatusCode)
	}
	var decoded myMemoryResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("translate: decode response: %w", err)
	}
	// Quota and validation errors arrive as HTTP 200 with the warning in translatedText.
	if status, ok := decoded.status(); ok && status != http.StatusOK {
		return "", fmt.Errorf("translate: response status %d: %s", status, decoded.ResponseData.TranslatedText)
	}
	translated := strings.TrimSpace(decoded.ResponseData.TranslatedText)
	if translated == "" {
		return "", fmt.Errorf("translate: empty translation")
	}
	return translated, nil
}
