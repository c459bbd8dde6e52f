package styles

import (
	"errors"
	"fmt"
	"slices"
)

// ErrSelectionFull is the warning raised when a multi-select is at capacity.
var ErrSelectionFull = errors.New("styles: selection full")

// Mode is single or multiple selection.
type Mode string

const (
	ModeSingle   Mode = "single"
	ModeMultiple Mode = "multiple"

	DefaultMaxMulti = 8
)

// ParseMode maps free-form input to a Mode, defaulting to single.
func ParseMode(v string) Mode {
	if Mode(v) == ModeMultiple {
		return ModeMultiple
	}
	return ModeSingle
}

// Selection tracks the chosen style ids in insertion order.
type Selection struct {
	mode     Mode
	maxMulti int
	ids      []string
}

// NewSelection creates an empty selection. maxMulti <= 0 selects the default cap.
func NewSelection(mode Mode, maxMulti int) *Selection {
	if maxMulti <= 0 {
		maxMulti = DefaultMaxMulti
	}
	return &Selection{mode: ParseMode(string(mode)), maxMulti: maxMulti}
}

func (s *Selection) Mode() Mode { return s.mode }

func (s *Selection) MaxMulti() int { return s.maxMulti }

// IDs returns a copy of the selected ids.
func (s *Selection) IDs() []string { return slices.Clone(s.ids) }

func (s *Selection) Len() int { return len(s.ids) }

// SetMode switches modes. Leaving multi-select keeps only the first choice.
func (s *Selection) SetMode(m Mode) {
	s.mode = ParseMode(string(m))
	if s.mode == ModeSingle && len(s.ids) > 1 {
		s.ids = s.ids[:1]
	}
}

// Toggle selects or deselects id. In single mode it replaces the selection.
// In multiple mode adding beyond the cap returns ErrSelectionFull and leaves
// the selection unchanged.
func (s *Selection) Toggle(id string) error {
	style, ok := Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStyle, id)
	}
	if s.mode == ModeSingle {
		s.ids = []string{style.ID}
		return nil
	}
	if i := slices.Index(s.ids, style.ID); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		return nil
	}
	if len(s.ids) >= s.maxMulti {
		return fmt.Errorf("%w: up to %d styles", ErrSelectionFull, s.maxMulti)
	}
	s.ids = append(s.ids, style.ID)
	return nil
}

// SelectAll builds a selection from ids, skipping duplicates. Ids rejected
// because the selection is full are returned as warnings rather than errors.
func SelectAll(mode Mode, maxMulti int, ids []string) (*Selection, []string, error) {
	sel := NewSelection(mode, maxMulti)
	if sel.mode == ModeSingle && len(ids) > 1 {
		ids = ids[:1]
	}
	var rejected []string
	for _, id := range ids {
		if style, ok := Lookup(id); ok && slices.Contains(sel.ids, style.ID) {
			continue
		}
		if err := sel.Toggle(id); err != nil {
			if errors.Is(err, ErrSelectionFull) {
				rejected = append(rejected, id)
				continue
			}
			return nil, nil, err
		}
	}
	return sel, rejected, nil
}
