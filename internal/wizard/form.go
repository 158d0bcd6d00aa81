package wizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Skufu/MedSage/internal/patient"
)

var ErrInvalidField = errors.New("invalid form field")

// List field names accepted by AddItem and RemoveItem.
const (
	FieldSymptoms           = "symptoms"
	FieldMedicalConditions  = "medicalConditions"
	FieldCurrentMedications = "currentMedications"
)

type FormState struct {
	Symptoms           []string                `json:"symptoms"`
	SymptomsDetails    string                  `json:"symptomsDetails"`
	MedicalConditions  []string                `json:"medicalConditions"`
	Allergies          string                  `json:"allergies"`
	Age                int                     `json:"age"`
	Gender             patient.Gender          `json:"gender"`
	Weight             float64                 `json:"weight"`
	Height             float64                 `json:"height"`
	CurrentMedications []string                `json:"currentMedications"`
	PregnancyStatus    patient.PregnancyStatus `json:"pregnancyStatus"`
	LiverKidneyStatus  patient.OrganStatus     `json:"liverKidneyStatus"`
}

func defaultForm() FormState {
	return FormState{
		Symptoms:           []string{},
		MedicalConditions:  []string{},
		CurrentMedications: []string{},
		PregnancyStatus:    patient.NotPregnant,
		LiverKidneyStatus:  patient.OrganNormal,
	}
}

func (f FormState) clone() FormState {
	f.Symptoms = append([]string{}, f.Symptoms...)
	f.MedicalConditions = append([]string{}, f.MedicalConditions...)
	f.CurrentMedications = append([]string{}, f.CurrentMedications...)
	return f
}

// Patch carries the scalar fields a client wants to change; nil fields are
// left untouched.
type Patch struct {
	SymptomsDetails   *string                  `json:"symptomsDetails"`
	Allergies         *string                  `json:"allergies"`
	Age               *int                     `json:"age"`
	Gender            *patient.Gender          `json:"gender"`
	Weight            *float64                 `json:"weight"`
	Height            *float64                 `json:"height"`
	PregnancyStatus   *patient.PregnancyStatus `json:"pregnancyStatus"`
	LiverKidneyStatus *patient.OrganStatus     `json:"liverKidneyStatus"`
}

func (p Patch) validate() error {
	if p.Age != nil && *p.Age < 0 {
		return fmt.Errorf("%w: age must not be negative", ErrInvalidField)
	}
	if p.Weight != nil && *p.Weight < 0 {
		return fmt.Errorf("%w: weight must not be negative", ErrInvalidField)
	}
	if p.Height != nil && *p.Height < 0 {
		return fmt.Errorf("%w: height must not be negative", ErrInvalidField)
	}
	if p.Gender != nil && !p.Gender.Valid() {
		return fmt.Errorf("%w: gender %q", ErrInvalidField, *p.Gender)
	}
	if p.PregnancyStatus != nil && !p.PregnancyStatus.Valid() {
		return fmt.Errorf("%w: pregnancy status %q", ErrInvalidField, *p.PregnancyStatus)
	}
	if p.LiverKidneyStatus != nil && !p.LiverKidneyStatus.Valid() {
		return fmt.Errorf("%w: liver/kidney status %q", ErrInvalidField, *p.LiverKidneyStatus)
	}
	return nil
}

func (f *FormState) apply(p Patch) {
	if p.SymptomsDetails != nil {
		f.SymptomsDetails = *p.SymptomsDetails
	}
	if p.Allergies != nil {
		f.Allergies = *p.Allergies
	}
	if p.Age != nil {
		f.Age = *p.Age
	}
	if p.Gender != nil {
		f.Gender = *p.Gender
	}
	if p.Weight != nil {
		f.Weight = *p.Weight
	}
	if p.Height != nil {
		f.Height = *p.Height
	}
	if p.PregnancyStatus != nil {
		f.PregnancyStatus = *p.PregnancyStatus
	}
	if p.LiverKidneyStatus != nil {
		f.LiverKidneyStatus = *p.LiverKidneyStatus
	}
}

func (f *FormState) list(field string) (*[]string, error) {
	switch field {
	case FieldSymptoms:
		return &f.Symptoms, nil
	case FieldMedicalConditions:
		return &f.MedicalConditions, nil
	case FieldCurrentMedications:
		return &f.CurrentMedications, nil
	}
	return nil, fmt.Errorf("%w: unknown list %q", ErrInvalidField, field)
}

func (f *FormState) addItem(field, value string) error {
	list, err := f.list(field)
	if err != nil {
		return err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("%w: empty %s entry", ErrInvalidField, field)
	}
	*list = patient.AppendUnique(*list, value)
	return nil
}

func (f *FormState) removeItem(field, value string) error {
	list, err := f.list(field)
	if err != nil {
		return err
	}
	*list = patient.Remove(*list, value)
	return nil
}
