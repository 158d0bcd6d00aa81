package interaction

import "strings"

// Severity is one of the four interaction categories.
type Severity struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

var (
	None = Severity{
		Key:         "NONE",
		Label:       "None",
		Description: "No known interaction",
		Color:       "#22c55e",
	}
	Mild = Severity{
		Key:         "MILD",
		Label:       "Mild",
		Description: "Minor interaction - usually not significant",
		Color:       "#eab308",
	}
	Moderate = Severity{
		Key:         "MODERATE",
		Label:       "Moderate",
		Description: "Use with caution - monitor closely",
		Color:       "#f59e0b",
	}
	Severe = Severity{
		Key:         "SEVERE",
		Label:       "Severe",
		Description: "Avoid combination - serious interaction possible",
		Color:       "#ef4444",
	}
)

var severities = map[string]Severity{
	None.Key:     None,
	Mild.Key:     Mild,
	Moderate.Key: Moderate,
	Severe.Key:   Severe,
}

// ParseSeverity maps a label to its category ignoring case; anything
// unrecognised is None.
func ParseSeverity(s string) Severity {
	if sev, ok := severities[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return sev
	}
	return None
}
