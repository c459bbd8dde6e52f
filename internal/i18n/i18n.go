// Package i18n holds the Arabic and English UI strings and the per-request
// language context.
package i18n

import (
	"context"
	"maps"
	"strings"

	"golang.org/x/text/language"
)

// Lang is a supported UI language.
type Lang string

const (
	Arabic  Lang = "ar"
	English Lang = "en"

	// Default is used when nothing about the request suggests a language.
	Default = Arabic
)

var matcher = language.NewMatcher([]language.Tag{language.Arabic, language.English})

// arabicCountries are Arab League members; visitors from them get Arabic.
var arabicCountries = map[string]struct{}{
	"AE": {}, "BH": {}, "DJ": {}, "DZ": {}, "EG": {}, "IQ": {}, "JO": {}, "KM": {},
	"KW": {}, "LB": {}, "LY": {}, "MA": {}, "MR": {}, "OM": {}, "PS": {}, "QA": {},
	"SA": {}, "SD": {}, "SO": {}, "SY": {}, "TN": {}, "YE": {},
}

// Parse accepts "ar", "en" and regional variants such as "ar-EG".
func Parse(v string) (Lang, bool) {
	tag, err := language.Parse(strings.TrimSpace(v))
	if err != nil {
		return "", false
	}
	return fromTag(tag)
}

// MatchAcceptLanguage picks the best supported language from an
// Accept-Language header.
func MatchAcceptLanguage(header string) (Lang, bool) {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return "", false
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return "", false
	}
	if idx == 0 {
		return Arabic, true
	}
	return English, true
}

// ForCountry maps an ISO country code to the language shown by default.
func ForCountry(code string) (Lang, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", false
	}
	if _, ok := arabicCountries[code]; ok {
		return Arabic, true
	}
	return English, true
}

func fromTag(tag language.Tag) (Lang, bool) {
	base, _ := tag.Base()
	switch base.String() {
	case "ar":
		return Arabic, true
	case "en":
		return English, true
	}
	return "", false
}

// Localizer translates keys for one language.
type Localizer struct {
	lang Lang
}

// New returns a Localizer, substituting the default for unsupported values.
func New(lang Lang) Localizer {
	if _, ok := catalogs[lang]; !ok {
		lang = Default
	}
	return Localizer{lang: lang}
}

func (l Localizer) Lang() Lang {
	if l.lang == "" {
		return Default
	}
	return l.lang
}

// Dir is the text direction for the language.
func (l Localizer) Dir() string {
	if l.Lang() == Arabic {
		return "rtl"
	}
	return "ltr"
}

// T looks key up in the current language, then in Arabic, then returns the
// key itself.
func (l Localizer) T(key string) string {
	if v := catalogs[l.Lang()][key]; v != "" {
		return v
	}
	if v := catalogs[Arabic][key]; v != "" {
		return v
	}
	return key
}

// Catalog returns every key resolved through T.
func (l Localizer) Catalog() map[string]string {
	out := maps.Clone(catalogs[Arabic])
	for k := range out {
		out[k] = l.T(k)
	}
	return out
}

type ctxKey struct{}

// WithLocalizer stores l on ctx.
func WithLocalizer(ctx context.Context, l Localizer) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request's Localizer or one for the default language.
func FromContext(ctx context.Context) Localizer {
	if l, ok := ctx.Value(ctxKey{}).(Localizer); ok {
		return l
	}
	return New(Default)
}
