// Package wizard drives the multi-step symptom assessment: a bounded step
// index over a form record, with the disease prediction fetched on entry
// to the diagnosis step.
package wizard

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Skufu/MedSage/internal/medapi"
	"github.com/Skufu/MedSage/internal/metrics"
	"github.com/Skufu/MedSage/internal/typeahead"
)

var (
	ErrPredictionPending = errors.New("prediction in progress")
	ErrPredictionFailed  = errors.New("no prediction available; retry before continuing")
	ErrNotOnDiagnosis    = errors.New("retry is only available on the diagnosis step")
)

// ResultsPath is where the final advance sends the user.
const ResultsPath = "/recommendations"

const predictionFailedMessage = "Failed to predict disease. Please try again."

type Predictor interface {
	Predict(ctx context.Context, symptoms []string) (*medapi.DiseaseData, error)
}

// ResultStore receives a successful prediction for later pages to read.
type ResultStore interface {
	PutDiseaseData(data *medapi.DiseaseData) error
}

type Outcome string

const (
	OutcomeMoved           Outcome = "moved"
	OutcomeStayed          Outcome = "stayed"
	OutcomeNavigateResults Outcome = "navigate-results"
)

// Snapshot is a point-in-time copy of the wizard state.
type Snapshot struct {
	StepIndex        int       `json:"stepIndex"`
	Step             Step      `json:"step"`
	StepLabel        string    `json:"stepLabel"`
	StepCount        int       `json:"stepCount"`
	Form             FormState `json:"form"`
	Loading          bool      `json:"loading"`
	Error            string    `json:"error,omitempty"`
	PredictedDisease string    `json:"predictedDisease,omitempty"`
	CanAdvance       bool      `json:"canAdvance"`
	CanRetreat       bool      `json:"canRetreat"`
}

var searchVocabularies = map[string]string{
	FieldSymptoms:           typeahead.VocabSymptoms,
	FieldMedicalConditions:  typeahead.VocabConditions,
	FieldCurrentMedications: typeahead.VocabMedications,
}

type Wizard struct {
	predictor Predictor
	results   ResultStore
	logger    zerolog.Logger
	searches  map[string]*typeahead.Typeahead

	mu         sync.Mutex
	step       int
	form       FormState
	loading    bool
	errMsg     string
	prediction *medapi.DiseaseData
}

func New(predictor Predictor, results ResultStore, logger zerolog.Logger) *Wizard {
	searches := make(map[string]*typeahead.Typeahead, len(searchVocabularies))
	for field, vocab := range searchVocabularies {
		candidates, _ := typeahead.Vocabulary(vocab)
		searches[field] = typeahead.New(candidates)
	}
	return &Wizard{
		predictor: predictor,
		results:   results,
		logger:    logger,
		searches:  searches,
		form:      defaultForm(),
	}
}

// Advance moves one step forward. At the last step it reports
// OutcomeNavigateResults instead. Entering the diagnosis step runs the
// prediction; its failure is recorded in the snapshot, not returned.
func (w *Wizard) Advance(ctx context.Context) (Outcome, error) {
	symptoms, predict, outcome, err := w.advanceLocked()
	if err != nil {
		return outcome, err
	}
	metrics.RecordWizardTransition(string(outcome))
	if predict {
		w.predict(ctx, symptoms)
	}
	return outcome, nil
}

func (w *Wizard) advanceLocked() ([]string, bool, Outcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case w.loading:
		return nil, false, OutcomeStayed, ErrPredictionPending
	case w.step == len(Steps)-1:
		return nil, false, OutcomeNavigateResults, nil
	case Steps[w.step] == StepDiagnosis && w.prediction == nil:
		return nil, false, OutcomeStayed, ErrPredictionFailed
	}

	w.step++
	if Steps[w.step] != StepDiagnosis {
		return nil, false, OutcomeMoved, nil
	}
	return w.beginPredictionLocked(), true, OutcomeMoved, nil
}

// Retreat moves one step back unless already at the first step.
func (w *Wizard) Retreat() Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step == 0 {
		return OutcomeStayed
	}
	w.step--
	metrics.RecordWizardTransition("retreat")
	return OutcomeMoved
}

// Retry re-runs the prediction once, on user request.
func (w *Wizard) Retry(ctx context.Context) error {
	w.mu.Lock()
	if Steps[w.step] != StepDiagnosis {
		w.mu.Unlock()
		return ErrNotOnDiagnosis
	}
	if w.loading {
		w.mu.Unlock()
		return ErrPredictionPending
	}
	symptoms := w.beginPredictionLocked()
	w.mu.Unlock()

	metrics.RecordWizardTransition("retry")
	w.predict(ctx, symptoms)
	return nil
}

func (w *Wizard) beginPredictionLocked() []string {
	w.loading = true
	w.errMsg = ""
	w.prediction = nil
	return append([]string{}, w.form.Symptoms...)
}

// predict runs without the lock held. A response that resolves after a
// newer one still overwrites it.
func (w *Wizard) predict(ctx context.Context, symptoms []string) {
	data, err := w.predictor.Predict(ctx, symptoms)
	if err == nil {
		if storeErr := w.results.PutDiseaseData(data); storeErr != nil {
			w.logger.Warn().Err(storeErr).Msg("store prediction in session")
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.loading = false
	if err != nil {
		w.logger.Warn().Err(err).Int("symptoms", len(symptoms)).Msg("disease prediction failed")
		w.errMsg = predictionFailedMessage
		return
	}
	w.prediction = data
}

func (w *Wizard) Apply(p Patch) error {
	if err := p.validate(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form.apply(p)
	return nil
}

func (w *Wizard) AddItem(field, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form.addItem(field, value)
}

func (w *Wizard) RemoveItem(field, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form.removeItem(field, value)
}

func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Snapshot{
		StepIndex:  w.step,
		Step:       Steps[w.step],
		StepLabel:  Steps[w.step].Label(),
		StepCount:  len(Steps),
		Form:       w.form.clone(),
		Loading:    w.loading,
		Error:      w.errMsg,
		CanRetreat: w.step > 0,
		CanAdvance: !w.loading && (Steps[w.step] != StepDiagnosis || w.prediction != nil),
	}
	if w.prediction != nil {
		s.PredictedDisease = w.prediction.Disease
	}
	return s
}
