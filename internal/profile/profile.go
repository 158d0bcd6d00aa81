// Package profile loads and saves the single medical profile record each
// authenticated user owns.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skufu/MedSage/internal/patient"
)

var (
	ErrNotFound      = errors.New("profile not found")
	ErrAlreadyExists = errors.New("profile already exists")
	ErrInvalid       = errors.New("invalid profile")
)

type Profile struct {
	UserID             string                  `json:"user_id"`
	Name               string                  `json:"name"`
	Age                int                     `json:"age"`
	Gender             patient.Gender          `json:"gender"`
	Weight             float64                 `json:"weight"`
	Height             float64                 `json:"height"`
	MedicalHistory     []string                `json:"medical_history"`
	CurrentMedications []string                `json:"current_medications"`
	Allergies          string                  `json:"allergies"`
	PregnancyStatus    patient.PregnancyStatus `json:"pregnancy_status"`
	LiverKidneyStatus  patient.OrganStatus     `json:"liver_kidney_status"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
}

// normalize fills defaults for omitted enum and list fields.
func (p *Profile) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	if p.PregnancyStatus == "" {
		p.PregnancyStatus = patient.NotPregnant
	}
	if p.LiverKidneyStatus == "" {
		p.LiverKidneyStatus = patient.OrganNormal
	}
	if p.MedicalHistory == nil {
		p.MedicalHistory = []string{}
	}
	if p.CurrentMedications == nil {
		p.CurrentMedications = []string{}
	}
}

func (p *Profile) validate() error {
	switch {
	case p.Age < 0 || p.Weight < 0 || p.Height < 0:
		return fmt.Errorf("%w: age, weight and height must not be negative", ErrInvalid)
	case !p.Gender.Valid():
		return fmt.Errorf("%w: gender %q", ErrInvalid, p.Gender)
	case !p.PregnancyStatus.Valid():
		return fmt.Errorf("%w: pregnancy status %q", ErrInvalid, p.PregnancyStatus)
	case !p.LiverKidneyStatus.Valid():
		return fmt.Errorf("%w: liver/kidney status %q", ErrInvalid, p.LiverKidneyStatus)
	}
	return nil
}

// Store is the hosted profile backend. Access rules (a user may only touch
// their own record) are enforced by the backend itself.
type Store interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Insert(ctx context.Context, p *Profile) error
	Update(ctx context.Context, p *Profile) error
	Ping(ctx context.Context) error
}
