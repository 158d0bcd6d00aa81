// Package interaction resolves pairwise drug interactions, either from a
// built-in table or through the external interaction service.
package interaction

import (
	"context"
	"errors"
	"strings"
)

var ErrTooFewDrugs = errors.New("at least two distinct drugs are required")

const (
	ModeStatic = "static"
	ModeRemote = "remote"
)

// Result describes one drug pair.
type Result struct {
	Drugs   [2]string `json:"drugs"`
	Level   Severity  `json:"level"`
	Details string    `json:"details"`
}

// Report is the outcome of one check. Checked is always true once a check
// ran; Failed marks a remote check whose empty Results came from an error
// rather than from the service finding nothing.
type Report struct {
	Checked bool     `json:"checked"`
	Failed  bool     `json:"failed"`
	Results []Result `json:"results"`
}

type Resolver interface {
	Check(ctx context.Context, drugs []string) (Report, error)
}

// distinct trims names and drops blanks and case-insensitive duplicates,
// keeping first-seen order.
func distinct(drugs []string) []string {
	seen := make(map[string]bool, len(drugs))
	out := make([]string, 0, len(drugs))
	for _, d := range drugs {
		name := strings.TrimSpace(d)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}
