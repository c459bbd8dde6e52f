// Package share encodes image details into self-contained share links.
package share

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ErrInvalidToken is returned for tokens that are not base64 JSON payloads.
var ErrInvalidToken = errors.New("share: invalid token")

const maxTokenLength = 8 << 10

// Payload is the content of a share token.
type Payload struct {
	URL       string `json:"url"`
	Prompt    string `json:"prompt"`
	Style     string `json:"style"`
	Timestamp int64  `json:"timestamp"`
}

// New fills the timestamp from now.
func New(imageURL, prompt, style string, now time.Time) Payload {
	return Payload{URL: imageURL, Prompt: prompt, Style: style, Timestamp: now.UnixMilli()}
}

// Encode returns the unpadded URL-safe base64 of the JSON payload.
func Encode(p Payload) (string, error) {
	if strings.TrimSpace(p.URL) == "" {
		return "", fmt.Errorf("share: url is required")
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("share: encode: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode accepts both URL-safe and standard base64, padded or not.
func Decode(token string) (Payload, error) {
	token = strings.TrimSpace(token)
	if token == "" || len(token) > maxTokenLength {
		return Payload{}, ErrInvalidToken
	}
	var raw []byte
	var err error
	for _, enc := range []*base64.Encoding{base64.RawURLEncoding, base64.URLEncoding, base64.StdEncoding, base64.RawStdEncoding} {
		if raw, err = enc.DecodeString(token); err == nil {
			break
		}
	}
	if err != nil {
		return Payload{}, ErrInvalidToken
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil || p.URL == "" {
		return Payload{}, ErrInvalidToken
	}
	return p, nil
}

// Link joins the public base URL with the image view path for token.
func Link(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/image/" + url.PathEscape(token)
}
