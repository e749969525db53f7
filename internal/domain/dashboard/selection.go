package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/stemmap/internal/domain/model"
)

// ErrUnknownControl is returned by Update for a control it does not know.
var ErrUnknownControl = errors.New("dashboard: unknown control")

// AllSentinel is the option text meaning "no constraint".
const AllSentinel = "Todos"

// Control names one selector of the page.
type Control string

// Page selectors.
const (
	ControlYear        Control = "year"
	ControlRegion      Control = "region"
	ControlInstitution Control = "institution"
	ControlScope       Control = "scope"
)

// Controls lists the selectors in page order.
var Controls = []Control{ControlYear, ControlRegion, ControlInstitution, ControlScope}

// Update returns sel with control set to value. The "all" sentinel and blank
// values clear the constraint.
func Update(sel model.Selection, control Control, value string) (model.Selection, error) {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, AllSentinel) {
		value = ""
	}
	switch control {
	case ControlYear:
		sel.Year = value
	case ControlRegion:
		sel.Region = value
	case ControlInstitution:
		sel.Institution = value
	case ControlScope:
		sel.Scope = value
	default:
		return sel, fmt.Errorf("%w: %q", ErrUnknownControl, control)
	}
	return sel, nil
}

// SelectionFrom builds a selection from a control lookup, typically a URL
// query's Get method.
func SelectionFrom(get func(key string) string) model.Selection {
	var sel model.Selection
	for _, c := range Controls {
		// Every entry of Controls is known to Update.
		sel, _ = Update(sel, c, get(string(c)))
	}
	return sel
}
