package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"imagecraft/internal/i18n"
)

type countryContextKey struct{}

var CountryKey = countryContextKey{}

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// I18N stores an i18n.Localizer for the detected language on the request
// context and echoes it in Content-Language.
func I18N(defaultLang i18n.Lang, lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			country := ResolveCountry(r, lookup)
			loc := i18n.New(detectLang(r, defaultLang, country))
			ctx := i18n.WithLocalizer(r.Context(), loc)
			if country != "" {
				ctx = context.WithValue(ctx, CountryKey, country)
			}
			w.Header().Set("Content-Language", string(loc.Lang()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// detectLang prefers an explicit choice (?lang=, X-Locale), then the browser
// languages, then the visitor's country.
func detectLang(r *http.Request, fallback i18n.Lang, country string) i18n.Lang {
	for _, explicit := range []string{r.URL.Query().Get("lang"), r.Header.Get("X-Locale")} {
		if l, ok := i18n.Parse(explicit); ok {
			return l
		}
	}
	if l, ok := i18n.MatchAcceptLanguage(r.Header.Get("Accept-Language")); ok {
		return l
	}
	if l, ok := i18n.ForCountry(country); ok {
		return l
	}
	if fallback != "" {
		return fallback
	}
	return i18n.Default
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		if first := strings.TrimSpace(strings.Split(xf, ",")[0]); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// CountryFromContext returns the ISO country code stored in the request context.
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CountryKey).(string); ok {
		return v
	}
	return ""
}

// ResolveCountry uses CDN country headers first, then the region of an
// explicit locale, then a GeoIP lookup of the client address.
func ResolveCountry(r *http.Request, lookup CountryLookup) string {
	if r == nil {
		return ""
	}
	for _, key := range []string{"X-Country-Code", "CF-IPCountry", "X-IP-Country", "X-Appengine-Country"} {
		if val := strings.TrimSpace(r.Header.Get(key)); val != "" && !strings.EqualFold(val, "XX") {
			return strings.ToUpper(val)
		}
	}
	if region := localeRegion(r.Header.Get("X-Locale")); region != "" {
		return region
	}
	if region := localeRegion(r.Header.Get("Accept-Language")); region != "" {
		return region
	}
	if lookup != nil {
		if ip := ClientIP(r); ip != "" {
			if country, err := lookup(ip); err == nil && country != "" {
				return strings.ToUpper(country)
			}
		}
	}
	return ""
}

func localeRegion(accept string) string {
	for _, part := range strings.Split(accept, ",") {
		token := strings.TrimSpace(strings.Split(part, ";")[0])
		if token == "" {
			continue
		}
		if idx := strings.IndexAny(token, "-_"); idx > 0 && idx < len(token)-1 {
			region := token[idx+1:]
			if len(region) == 2 {
				return strings.ToUpper(region)
			}
		}
		return ""
	}
	return ""
}
