package image

import (
	"bytes"
	"context"
	"fmt"
	stdimage "image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"imagecraft/internal/infra"
	"imagecraft/internal/styles"
)

// Options configures the Pollinations client.
type Options struct {
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
	AllowedHosts   []string
	Now            func() time.Time
	NewNonce       func() string
}

// Client builds generation URLs and fetches their images.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	logger       *infra.Logger
	allowedHosts map[string]struct{}
	now          func() time.Time
	newNonce     func() string
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://image.pollinations.ai"
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	nonce := opts.NewNonce
	if nonce == nil {
		nonce = uuid.NewString
	}
	hosts := map[string]struct{}{}
	for _, h := range opts.AllowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts[h] = struct{}{}
		}
	}
	if u, err := url.Parse(baseURL); err == nil && u.Hostname() != "" {
		hosts[strings.ToLower(u.Hostname())] = struct{}{}
	}
	return &Client{
		baseURL:      baseURL,
		httpClient:   httpClient,
		logger:       logger,
		allowedHosts: hosts,
		now:          now,
		newNonce:     nonce,
	}
}

// BuildURL returns the generation URL for prompt. t and r defeat caching of
// identical prompts; seed is omitted when zero.
func (c *Client) BuildURL(prompt string, seed int64) string {
	q := []string{
		"t=" + strconv.FormatInt(c.now().UnixMilli(), 10),
		"r=" + url.QueryEscape(c.newNonce()),
	}
	if seed != 0 {
		q = append(q, "seed="+strconv.FormatInt(seed, 10))
	}
	return c.promptPath(prompt) + "?" + strings.Join(q, "&")
}

// ProxyURL is the URL used by the key-protected proxy endpoint.
func (c *Client) ProxyURL(prompt string, width, height int) string {
	return fmt.Sprintf("%s?width=%d&height=%d&nologo=true",
		c.promptPath(prompt), ClampDimension(width), ClampDimension(height))
}

func (c *Client) promptPath(prompt string) string {
	return c.baseURL + "/prompt/" + url.PathEscape(prompt)
}

// Generate fetches the image for req, retrying once with a cache-buster.
func (c *Client) Generate(ctx context.Context, req styles.Request) (*Asset, error) {
	target := c.BuildURL(req.Prompt, req.Seed)
	asset, err := c.load(ctx, target)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Debug().Err(err).Str("style", req.StyleID).Msg("image: retrying with cache buster")
		target = target + "&cb=" + strconv.FormatInt(c.now().UnixMilli(), 10)
		asset, err = c.load(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrImageLoad, req.StyleID, err)
		}
	}
	asset.ID = req.ID
	asset.StyleID = req.StyleID
	asset.Prompt = req.Prompt
	asset.Seed = req.Seed
	return asset, nil
}

// FetchProxy fetches an image for the proxy endpoint without retrying.
func (c *Client) FetchProxy(ctx context.Context, prompt string, width, height int) (*Asset, error) {
	asset, err := c.load(ctx, c.ProxyURL(prompt, width, height))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageLoad, err)
	}
	asset.Prompt = prompt
	return asset, nil
}

// Download fetches an arbitrary image URL whose host is on the allowlist.
func (c *Client) Download(ctx context.Context, raw string) (*Asset, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, fmt.Errorf("%w: invalid url", ErrSourceNotAllowed)
	}
	if _, ok := c.allowedHosts[strings.ToLower(u.Hostname())]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotAllowed, u.Hostname())
	}
	asset, err := c.load(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageLoad, err)
	}
	return asset, nil
}

func (c *Client) load(ctx context.Context, target string) (*Asset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	_, format, err := stdimage.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	// A valid header is not enough: truncated bodies only fail on full decode.
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	size := img.Bounds().Size()
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("decode: empty image")
	}
	return &Asset{
		URL:    target,
		MIME:   "image/" + format,
		Width:  size.X,
		Height: size.Y,
		Data:   data,
	}, nil
}
