// Package history keeps each device's recently generated images as one JSON
// document, newest first and capped at MaxItems.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"imagecraft/internal/infra"
)

const (
	// DocumentKey names the stored document.
	DocumentKey = "aic_images_v1"
	MaxItems    = 100
)

var (
	ErrDeviceRequired = errors.New("history: device id required")
	ErrInvalidEntry   = errors.New("history: entry needs id and url")
)

// Entry is one generated image.
type Entry struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	PromptAr  string `json:"promptAr"`
	PromptEn  string `json:"promptEn,omitempty"`
	Style     string `json:"style,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// Backend loads and saves the raw document for a device. Load returns nil
// data when nothing has been stored.
type Backend interface {
	Load(ctx context.Context, deviceID string) ([]byte, error)
	Save(ctx context.Context, deviceID string, data []byte) error
}

// Store serialises read-modify-write cycles within the process. Across
// processes the last writer wins.
type Store struct {
	backend Backend
	logger  *infra.Logger
	mu      sync.Mutex
}

func NewStore(backend Backend, logger *infra.Logger) *Store {
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Store{backend: backend, logger: logger}
}

// List returns the device's entries, newest first.
func (s *Store) List(ctx context.Context, deviceID string) ([]Entry, error) {
	if strings.TrimSpace(deviceID) == "" {
		return nil, ErrDeviceRequired
	}
	return s.load(ctx, deviceID)
}

// Add inserts e at the front, or merges it into the entry with the same id
// without moving it.
func (s *Store) Add(ctx context.Context, deviceID string, e Entry) ([]Entry, error) {
	if strings.TrimSpace(e.ID) == "" || strings.TrimSpace(e.URL) == "" {
		return nil, ErrInvalidEntry
	}
	return s.update(ctx, deviceID, func(items []Entry) []Entry {
		if i := slices.IndexFunc(items, func(x Entry) bool { return x.ID == e.ID }); i >= 0 {
			items[i] = merge(items[i], e)
			return items
		}
		return append([]Entry{e}, items...)
	})
}

func (s *Store) Remove(ctx context.Context, deviceID, id string) ([]Entry, error) {
	return s.update(ctx, deviceID, func(items []Entry) []Entry {
		return slices.DeleteFunc(items, func(x Entry) bool { return x.ID == id })
	})
}

func (s *Store) Clear(ctx context.Context, deviceID string) error {
	_, err := s.update(ctx, deviceID, func([]Entry) []Entry { return []Entry{} })
	return err
}

func (s *Store) update(ctx context.Context, deviceID string, fn func([]Entry) []Entry) ([]Entry, error) {
	if strings.TrimSpace(deviceID) == "" {
		return nil, ErrDeviceRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	items = fn(items)
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("history: encode: %w", err)
	}
	if err := s.backend.Save(ctx, deviceID, data); err != nil {
		return nil, fmt.Errorf("history: save: %w", err)
	}
	return items, nil
}

// load treats an unreadable document as empty.
func (s *Store) load(ctx context.Context, deviceID string) ([]Entry, error) {
	raw, err := s.backend.Load(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("history: load: %w", err)
	}
	items := Decode(raw)
	if items == nil {
		if len(raw) > 0 {
			s.logger.Debug().Str("device", deviceID).Msg("history: discarding unreadable document")
		}
		return []Entry{}, nil
	}
	return items, nil
}

// Decode parses a stored document, dropping entries without id or url and
// sorting newest first. It returns nil when the document is not a JSON array.
func Decode(raw []byte) []Entry {
	if len(raw) == 0 {
		return nil
	}
	var parsed []*Entry
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil
	}
	out := make([]Entry, 0, len(parsed))
	for _, e := range parsed {
		if e == nil || e.ID == "" || e.URL == "" {
			continue
		}
		out = append(out, *e)
	}
	slices.SortStableFunc(out, func(a, b Entry) int {
		switch {
		case a.CreatedAt > b.CreatedAt:
			return -1
		case a.CreatedAt < b.CreatedAt:
			return 1
		}
		return 0
	})
	return out
}

func merge(old, upd Entry) Entry {
	if upd.URL != "" {
		old.URL = upd.URL
	}
	if upd.PromptAr != "" {
		old.PromptAr = upd.PromptAr
	}
	if upd.PromptEn != "" {
		old.PromptEn = upd.PromptEn
	}
	if upd.Style != "" {
		old.Style = upd.Style
	}
	if upd.CreatedAt != 0 {
		old.CreatedAt = upd.CreatedAt
	}
	return old
}
