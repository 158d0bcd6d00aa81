package profile

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Skufu/MedSage/internal/auth"
	"github.com/Skufu/MedSage/internal/metrics"
)

// State is the page state once an operation settles. Loading and saving
// last exactly as long as the request that carries them.
type State string

const (
	StateReady    State = "ready"
	StateRedirect State = "redirect"
	StateError    State = "error"
)

const (
	LoginPath    = "/auth/login"
	SetupPath    = "/profile/setup"
	SymptomsPath = "/symptoms"
)

type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Destructive bool   `json:"destructive,omitempty"`
}

type View struct {
	State    State    `json:"state"`
	Location string   `json:"location,omitempty"`
	Profile  *Profile `json:"profile,omitempty"`
	Notice   *Notice  `json:"notice,omitempty"`
	// Err is auth.ErrNoIdentity when the caller was anonymous.
	Err error `json:"-"`
}

func redirect(path string) View {
	return View{State: StateRedirect, Location: path}
}

func loginRedirect() View {
	v := redirect(LoginPath)
	v.Err = auth.ErrNoIdentity
	return v
}

func failure(state State, description string) View {
	return View{State: state, Notice: &Notice{Title: "Error", Description: description, Destructive: true}}
}

type Service struct {
	store  Store
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// Load fetches the caller's profile. Without an identity it redirects to
// login; without a record it redirects to setup instead of rendering an
// empty form.
func (s *Service) Load(ctx context.Context, id *auth.Identity) View {
	v := s.load(ctx, id)
	metrics.RecordProfileOperation("load", string(v.State))
	return v
}

func (s *Service) load(ctx context.Context, id *auth.Identity) View {
	if id == nil {
		return loginRedirect()
	}
	p, err := s.store.Get(ctx, id.UserID)
	if errors.Is(err, ErrNotFound) {
		return redirect(SetupPath)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", id.UserID).Msg("fetch profile")
		return failure(StateError, "Failed to load profile data")
	}
	return View{State: StateReady, Profile: p}
}

// Save writes the whole submitted snapshot back, stamping updated_at.
// Concurrent edits are not detected; the last write wins.
func (s *Service) Save(ctx context.Context, id *auth.Identity, p Profile) View {
	v := s.save(ctx, id, p)
	metrics.RecordProfileOperation("save", string(v.State))
	return v
}

func (s *Service) save(ctx context.Context, id *auth.Identity, p Profile) View {
	if id == nil {
		return loginRedirect()
	}
	p.UserID = id.UserID
	p.normalize()
	if err := p.validate(); err != nil {
		return failure(StateReady, err.Error())
	}
	p.UpdatedAt = s.now().UTC()

	err := s.store.Update(ctx, &p)
	if errors.Is(err, ErrNotFound) {
		return redirect(SetupPath)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", id.UserID).Msg("save profile")
		v := failure(StateReady, "Failed to save profile")
		v.Profile = &p
		return v
	}
	return View{
		State:   StateReady,
		Profile: &p,
		Notice:  &Notice{Title: "Success", Description: "Profile updated successfully"},
	}
}

// Setup inserts the caller's first profile and sends them on to the
// symptom assessment.
func (s *Service) Setup(ctx context.Context, id *auth.Identity, p Profile) View {
	v := s.setup(ctx, id, p)
	metrics.RecordProfileOperation("setup", string(v.State))
	return v
}

func (s *Service) setup(ctx context.Context, id *auth.Identity, p Profile) View {
	if id == nil {
		return loginRedirect()
	}
	p.UserID = id.UserID
	p.normalize()
	if p.Name == "" {
		return failure(StateReady, "Full name is required")
	}
	if err := p.validate(); err != nil {
		return failure(StateReady, err.Error())
	}
	now := s.now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	err := s.store.Insert(ctx, &p)
	if errors.Is(err, ErrAlreadyExists) {
		return failure(StateReady, "A profile already exists for this account")
	}
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", id.UserID).Msg("create profile")
		return failure(StateReady, "Failed to create profile")
	}
	v := redirect(SymptomsPath)
	v.Profile = &p
	v.Notice = &Notice{Title: "Profile created successfully", Description: "You can now start using MedSage!"}
	return v
}

// Ping reports whether the backing store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
