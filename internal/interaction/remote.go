package interaction

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Skufu/MedSage/internal/medapi"
)

// InteractionSource is the external interaction service.
type InteractionSource interface {
	Interactions(ctx context.Context, drugs []string) ([]medapi.InteractionEntry, error)
}

// RemoteResolver forwards the full selection in one call and reshapes the
// reply. Failures produce an empty, checked report.
type RemoteResolver struct {
	source InteractionSource
	logger zerolog.Logger
}

func NewRemoteResolver(source InteractionSource, logger zerolog.Logger) *RemoteResolver {
	return &RemoteResolver{source: source, logger: logger}
}

func (r *RemoteResolver) Check(ctx context.Context, drugs []string) (Report, error) {
	names := distinct(drugs)
	if len(names) < 2 {
		return Report{}, ErrTooFewDrugs
	}

	entries, err := r.source.Interactions(ctx, names)
	if err != nil {
		r.logger.Warn().Err(err).Strs("drugs", names).Msg("interaction check failed")
		return Report{Checked: true, Failed: true, Results: []Result{}}, nil
	}

	results := make([]Result, 0, len(entries))
	for _, e := range entries {
		results = append(results, Result{
			Drugs:   splitPair(e.Drugs),
			Level:   ParseSeverity(e.Level),
			Details: e.Description,
		})
	}
	return Report{Checked: true, Results: results}, nil
}

// splitPair splits "A + B" into its two names.
func splitPair(s string) [2]string {
	sep := " + "
	if !strings.Contains(s, sep) {
		sep = "+"
	}
	parts := strings.SplitN(s, sep, 2)
	pair := [2]string{strings.TrimSpace(parts[0])}
	if len(parts) == 2 {
		pair[1] = strings.TrimSpace(parts[1])
	}
	return pair
}
