package styles

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Request is one generation request derived from a prompt and a style.
type Request struct {
	ID      string `json:"id"`
	StyleID string `json:"style"`
	Prompt  string `json:"prompt"`
	Seed    int64  `json:"seed"`
}

// Seeder returns the seed for the i-th request of a batch.
type Seeder func(i int) int64

// TimeSeeder offsets the wall clock by position plus a random jitter
// so identical prompts still produce distinct images.
func TimeSeeder(i int) int64 {
	return time.Now().UnixMilli() + int64(i)*1000 + rand.Int64N(1000)
}

// BuildPrompt appends the style suffix to the translated prompt.
func BuildPrompt(translated string, s Style) string {
	translated = strings.TrimSpace(translated)
	if s.EnSuffix == "" {
		return translated
	}
	return translated + ", " + s.EnSuffix
}

// BuildRequests produces one request per selected style, each with its own
// seed. An empty selection falls back to the default style.
func BuildRequests(translated string, sel *Selection, seed Seeder) []Request {
	if seed == nil {
		seed = TimeSeeder
	}
	ids := []string{Default().ID}
	if sel != nil && sel.Len() > 0 {
		ids = sel.IDs()
	}
	out := make([]Request, 0, len(ids))
	for i, id := range ids {
		style, ok := Lookup(id)
		if !ok {
			continue
		}
		out = append(out, Request{
			ID:      uuid.NewString(),
			StyleID: style.ID,
			Prompt:  BuildPrompt(translated, style),
			Seed:    seed(i),
		})
	}
	return out
}
