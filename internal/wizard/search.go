package wizard

import (
	"fmt"
	"strings"

	"github.com/Skufu/MedSage/internal/typeahead"
)

// The wizard owns one typeahead per list field and adds whatever the
// component hands back.

func (w *Wizard) searchFor(field string) (*typeahead.Typeahead, error) {
	ta, ok := w.searches[field]
	if !ok {
		return nil, fmt.Errorf("%w: no search for %q", ErrInvalidField, field)
	}
	return ta, nil
}

func (w *Wizard) Search(field, q string) (typeahead.View, error) {
	ta, err := w.searchFor(field)
	if err != nil {
		return typeahead.View{}, err
	}
	ta.SetSearch(q)
	return ta.View(), nil
}

// FocusSearch opens the field's suggestion panel without changing the search.
func (w *Wizard) FocusSearch(field string) (typeahead.View, error) {
	ta, err := w.searchFor(field)
	if err != nil {
		return typeahead.View{}, err
	}
	ta.Focus()
	return ta.View(), nil
}

// Pick selects a suggestion and adds it to the field's list. A blank value
// is rejected before the panel is touched.
func (w *Wizard) Pick(field, value string) (typeahead.Selection, error) {
	ta, err := w.searchFor(field)
	if err != nil {
		return typeahead.Selection{}, err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return typeahead.Selection{}, fmt.Errorf("%w: empty %s entry", ErrInvalidField, field)
	}
	sel := ta.Select(value)
	return sel, w.AddItem(field, sel.Value)
}

// CommitSearch adds the raw search text; ok is false when it was blank.
func (w *Wizard) CommitSearch(field string) (sel typeahead.Selection, ok bool, err error) {
	ta, err := w.searchFor(field)
	if err != nil {
		return typeahead.Selection{}, false, err
	}
	sel, ok = ta.Commit()
	if !ok {
		return sel, false, nil
	}
	return sel, true, w.AddItem(field, sel.Value)
}

func (w *Wizard) DismissSearch(field string) error {
	ta, err := w.searchFor(field)
	if err != nil {
		return err
	}
	ta.Dismiss()
	return nil
}
