// Package apikey mints, hashes and validates per-device API keys.
package apikey

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	keyScheme    = "arc_live_"
	secretLength = 32
	PrefixLength = 8
	randomBytes  = 24
)

var (
	ErrInvalidKey     = errors.New("apikey: invalid key")
	ErrDisabled       = errors.New("apikey: key disabled")
	ErrDeviceRequired = errors.New("apikey: device id required")
)

// Minted is a freshly generated key. Plain is shown to the caller once and
// never stored.
type Minted struct {
	Plain  string
	Prefix string
}

// Mint builds "arc_live_<prefix>_<secret>" from 24 random bytes. The secret is
// the base64 encoding with non-alphanumerics removed, the prefix its first 8
// characters lowercased.
func Mint(r io.Reader) (Minted, error) {
	if r == nil {
		r = rand.Reader
	}
	buf := make([]byte, randomBytes)
	for attempt := 0; attempt < 4; attempt++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return Minted{}, fmt.Errorf("apikey: read random: %w", err)
		}
		secret := alnum(base64.StdEncoding.EncodeToString(buf))
		if len(secret) > secretLength {
			secret = secret[:secretLength]
		}
		if len(secret) < PrefixLength {
			continue
		}
		prefix := strings.ToLower(secret[:PrefixLength])
		return Minted{Plain: keyScheme + prefix + "_" + secret, Prefix: prefix}, nil
	}
	return Minted{}, errors.New("apikey: could not mint key")
}

// PrefixOf extracts the lookup prefix from a presented key.
func PrefixOf(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, keyScheme)
	if !ok {
		return "", false
	}
	prefix, _, ok := strings.Cut(rest, "_")
	if !ok || len(prefix) != PrefixLength {
		return "", false
	}
	return prefix, true
}

// Hasher derives the stored digest of a key with a server-side pepper.
type Hasher struct {
	pepper []byte
}

func NewHasher(pepper string) *Hasher {
	return &Hasher{pepper: []byte(pepper)}
}

// Hash returns hex(HMAC-SHA256(pepper, key)).
func (h *Hasher) Hash(key string) string {
	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}

// BearerToken pulls the key out of an Authorization header. A header without
// the Bearer scheme is taken as the raw key.
func BearerToken(header string) string {
	header = strings.TrimLeft(header, " ")
	if len(header) >= 6 && strings.EqualFold(header[:6], "bearer") && (len(header) == 6 || header[6] == ' ') {
		return strings.TrimSpace(header[6:])
	}
	return strings.TrimSpace(header)
}

func alnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
