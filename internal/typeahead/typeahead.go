// Package typeahead filters a fixed candidate list against a live search
// string and reports selections as return values.
package typeahead

import (
	"strings"
	"sync"
)

// Selection is what the component hands back to its parent when the user
// picks a candidate or commits free text.
type Selection struct {
	Value    string `json:"value"`
	FreeText bool   `json:"freeText"`
}

// View is the renderable state of the component.
type View struct {
	Search      string   `json:"search"`
	Open        bool     `json:"open"`
	Suggestions []string `json:"suggestions"`
}

type Typeahead struct {
	mu         sync.Mutex
	candidates []string
	search     string
	open       bool
}

// New fixes the candidate list for the component's lifetime.
func New(candidates []string) *Typeahead {
	return &Typeahead{candidates: append([]string(nil), candidates...)}
}

// SetSearch updates the search text and opens the suggestion panel.
func (t *Typeahead) SetSearch(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.search = s
	t.open = true
}

func (t *Typeahead) Focus() {
	t.mu.Lock()
	t.open = true
	t.mu.Unlock()
}

// Dismiss closes the panel, as on a pointer interaction outside the input.
func (t *Typeahead) Dismiss() {
	t.mu.Lock()
	t.open = false
	t.mu.Unlock()
}

// Filtered returns the candidates matching the current search.
func (t *Typeahead) Filtered() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Filter(t.candidates, t.search)
}

func (t *Typeahead) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return View{
		Search:      t.search,
		Open:        t.open,
		Suggestions: Filter(t.candidates, t.search),
	}
}

// Select picks value, clears the search and closes the panel.
func (t *Typeahead) Select(value string) Selection {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selectLocked(value)
}

// Commit handles the commit key: the trimmed search text is selected
// whether or not it matches a candidate. An empty search selects nothing.
func (t *Typeahead) Commit() (Selection, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	value := strings.TrimSpace(t.search)
	if value == "" {
		return Selection{}, false
	}
	return t.selectLocked(value), true
}

func (t *Typeahead) selectLocked(value string) Selection {
	t.search = ""
	t.open = false
	return Selection{Value: value, FreeText: !t.knownLocked(value)}
}

func (t *Typeahead) knownLocked(value string) bool {
	for _, c := range t.candidates {
		if c == value {
			return true
		}
	}
	return false
}

// Filter returns every candidate containing search, ignoring case, in
// candidate order. An empty search returns the full list.
func Filter(candidates []string, search string) []string {
	if search == "" {
		return append([]string(nil), candidates...)
	}
	needle := strings.ToLower(search)
	out := []string{}
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c), needle) {
			out = append(out, c)
		}
	}
	return out
}
