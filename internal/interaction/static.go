package interaction

import (
	"context"
	"sort"
	"strings"
)

const (
	pairDelimiter = "|"
	noKnownDetail = "No known interaction between these medications."
)

type tableEntry struct {
	level   Severity
	details string
}

type knownPair struct {
	a, b    string
	level   Severity
	details string
}

var knownPairs = []knownPair{
	{"Warfarin", "Aspirin", Severe, "Increased risk of bleeding. Avoid combining unless directed by a physician."},
	{"Warfarin", "Ibuprofen", Severe, "NSAIDs raise bleeding risk and may increase warfarin effect."},
	{"Warfarin", "Diclofenac", Severe, "NSAIDs raise bleeding risk and may increase warfarin effect."},
	{"Clopidogrel", "Warfarin", Severe, "Combined antiplatelet and anticoagulant therapy markedly raises bleeding risk."},
	{"Sildenafil", "Nitroglycerin", Severe, "Risk of profound hypotension; avoid co-administration."},
	{"Simvastatin", "Clarithromycin", Severe, "Raised statin levels increase the risk of muscle damage."},
	{"Tramadol", "Sertraline", Severe, "Risk of serotonin syndrome and seizures."},
	{"Aspirin", "Ibuprofen", Moderate, "Ibuprofen may reduce the cardioprotective effect of aspirin and adds GI bleeding risk."},
	{"Lisinopril", "Ibuprofen", Moderate, "NSAIDs can reduce blood pressure control and affect kidney function."},
	{"Clopidogrel", "Omeprazole", Moderate, "Omeprazole may reduce the antiplatelet effect of clopidogrel."},
	{"Simvastatin", "Amlodipine", Moderate, "Amlodipine raises simvastatin levels; limit simvastatin dose."},
	{"Atorvastatin", "Clarithromycin", Moderate, "Raised statin levels; monitor for muscle pain."},
	{"Lisinopril", "Hydrochlorothiazide", Mild, "Additive blood pressure lowering; commonly combined intentionally."},
	{"Levothyroxine", "Omeprazole", Mild, "Reduced stomach acid may lower levothyroxine absorption."},
	{"Metformin", "Hydrochlorothiazide", Mild, "Thiazides may slightly raise blood glucose."},
	{"Metoprolol", "Amlodipine", Mild, "Additive blood pressure lowering; monitor for dizziness."},
}

// PairKey is the canonical lookup key for an unordered pair: both names
// lower-cased, sorted and joined.
func PairKey(a, b string) string {
	pair := []string{
		strings.ToLower(strings.TrimSpace(a)),
		strings.ToLower(strings.TrimSpace(b)),
	}
	sort.Strings(pair)
	return pair[0] + pairDelimiter + pair[1]
}

// StaticResolver looks every unordered pair up in a fixed table.
type StaticResolver struct {
	table map[string]tableEntry
}

func NewStaticResolver() *StaticResolver {
	table := make(map[string]tableEntry, len(knownPairs))
	for _, p := range knownPairs {
		table[PairKey(p.a, p.b)] = tableEntry{level: p.level, details: p.details}
	}
	return &StaticResolver{table: table}
}

func (r *StaticResolver) Check(_ context.Context, drugs []string) (Report, error) {
	names := distinct(drugs)
	if len(names) < 2 {
		return Report{}, ErrTooFewDrugs
	}

	results := make([]Result, 0, len(names)*(len(names)-1)/2)
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			results = append(results, r.lookup(names[i], names[j]))
		}
	}
	return Report{Checked: true, Results: results}, nil
}

func (r *StaticResolver) lookup(a, b string) Result {
	entry, ok := r.table[PairKey(a, b)]
	if !ok {
		return Result{Drugs: [2]string{a, b}, Level: None, Details: noKnownDetail}
	}
	return Result{Drugs: [2]string{a, b}, Level: entry.level, Details: entry.details}
}
