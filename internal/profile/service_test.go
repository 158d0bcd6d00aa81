package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Skufu/MedSage/internal/auth"
	"github.com/Skufu/MedSage/internal/patient"
)

type failingStore struct {
	*MemoryStore
	getErr    error
	updateErr error
}

func (f *failingStore) Get(ctx context.Context, userID string) (*Profile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.MemoryStore.Get(ctx, userID)
}

func (f *failingStore) Update(ctx context.Context, p *Profile) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.MemoryStore.Update(ctx, p)
}

var ana = &auth.Identity{UserID: "user-1", Email: "ana@example.com"}

func newService(store Store) *Service {
	svc := NewService(store, zerolog.Nop())
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return svc
}

func TestAnonymousCallerRedirectsToLogin(t *testing.T) {
	svc := newService(NewMemoryStore())
	ctx := context.Background()
	views := map[string]View{
		"load":  svc.Load(ctx, nil),
		"save":  svc.Save(ctx, nil, Profile{Name: "Ana"}),
		"setup": svc.Setup(ctx, nil, Profile{Name: "Ana"}),
	}
	for op, v := range views {
		if v.State != StateRedirect || v.Location != LoginPath {
			t.Fatalf("%s: expected login redirect, got %+v", op, v)
		}
		if !errors.Is(v.Err, auth.ErrNoIdentity) {
			t.Fatalf("%s: expected ErrNoIdentity, got %v", op, v.Err)
		}
	}
}

func TestLoadWithoutRecordRedirectsToSetup(t *testing.T) {
	v := newService(NewMemoryStore()).Load(context.Background(), ana)
	if v.State != StateRedirect || v.Location != SetupPath {
		t.Fatalf("expected setup redirect, got %+v", v)
	}
	if v.Profile != nil {
		t.Fatal("must not render an empty profile form")
	}
	if v.Err != nil {
		t.Fatalf("signed-in caller must not carry an identity error, got %v", v.Err)
	}
}

func TestLoadStoreFailureIsError(t *testing.T) {
	store := &failingStore{MemoryStore: NewMemoryStore(), getErr: errors.New("connection reset")}
	v := newService(store).Load(context.Background(), ana)
	if v.State != StateError || v.Notice == nil || !v.Notice.Destructive {
		t.Fatalf("expected error view with notice, got %+v", v)
	}
}

func TestSetupThenLoadAndSave(t *testing.T) {
	svc := newService(NewMemoryStore())
	ctx := context.Background()

	v := svc.Setup(ctx, ana, Profile{
		UserID:         "someone-else",
		Name:           " Ana ",
		Age:            41,
		Gender:         patient.GenderFemale,
		MedicalHistory: []string{"Asthma"},
	})
	if v.State != StateRedirect || v.Location != SymptomsPath {
		t.Fatalf("expected redirect to symptoms, got %+v", v)
	}

	loaded := svc.Load(ctx, ana)
	if loaded.State != StateReady {
		t.Fatalf("expected ready, got %+v", loaded)
	}
	p := loaded.Profile
	if p.UserID != ana.UserID || p.Name != "Ana" {
		t.Fatalf("identity must come from the session, got %+v", p)
	}
	if p.PregnancyStatus != patient.NotPregnant || p.LiverKidneyStatus != patient.OrganNormal {
		t.Fatalf("expected default statuses, got %+v", p)
	}
	created := p.CreatedAt

	p.CurrentMedications = []string{"Albuterol"}
	saved := svc.Save(ctx, ana, *p)
	if saved.State != StateReady || saved.Notice == nil || saved.Notice.Destructive {
		t.Fatalf("expected success notice, got %+v", saved)
	}
	if !saved.Profile.UpdatedAt.After(created) {
		t.Fatalf("expected updated_at stamped after creation, got %s", saved.Profile.UpdatedAt)
	}

	again := svc.Load(ctx, ana).Profile
	if len(again.CurrentMedications) != 1 || !again.CreatedAt.Equal(created) {
		t.Fatalf("unexpected stored profile %+v", again)
	}
}

func TestSetupTwiceFails(t *testing.T) {
	svc := newService(NewMemoryStore())
	ctx := context.Background()
	svc.Setup(ctx, ana, Profile{Name: "Ana"})
	v := svc.Setup(ctx, ana, Profile{Name: "Ana again"})
	if v.State != StateReady || v.Notice == nil || !v.Notice.Destructive {
		t.Fatalf("expected failure notice, got %+v", v)
	}
}

func TestSetupRequiresName(t *testing.T) {
	v := newService(NewMemoryStore()).Setup(context.Background(), ana, Profile{})
	if v.Notice == nil || !v.Notice.Destructive || v.Location != "" {
		t.Fatalf("expected validation failure, got %+v", v)
	}
}

func TestSaveRejectsInvalidEnum(t *testing.T) {
	svc := newService(NewMemoryStore())
	svc.Setup(context.Background(), ana, Profile{Name: "Ana"})
	v := svc.Save(context.Background(), ana, Profile{Name: "Ana", Gender: "robot"})
	if v.State != StateReady || v.Notice == nil || !v.Notice.Destructive {
		t.Fatalf("expected validation failure, got %+v", v)
	}
}

func TestSaveWithoutRecordRedirectsToSetup(t *testing.T) {
	v := newService(NewMemoryStore()).Save(context.Background(), ana, Profile{Name: "Ana"})
	if v.State != StateRedirect || v.Location != SetupPath {
		t.Fatalf("expected setup redirect, got %+v", v)
	}
}

func TestSaveFailureReturnsToReady(t *testing.T) {
	store := &failingStore{MemoryStore: NewMemoryStore()}
	svc := newService(store)
	svc.Setup(context.Background(), ana, Profile{Name: "Ana"})
	store.updateErr = errors.New("timeout")

	v := svc.Save(context.Background(), ana, Profile{Name: "Ana B"})
	if v.State != StateReady || v.Notice == nil || !v.Notice.Destructive || v.Profile == nil {
		t.Fatalf("expected ready with failure notice and local snapshot, got %+v", v)
	}
}

func TestSaveLastWriteWins(t *testing.T) {
	svc := newService(NewMemoryStore())
	ctx := context.Background()
	svc.Setup(ctx, ana, Profile{Name: "Ana"})

	svc.Save(ctx, ana, Profile{Name: "First tab"})
	svc.Save(ctx, ana, Profile{Name: "Second tab"})
	if got := svc.Load(ctx, ana).Profile.Name; got != "Second tab" {
		t.Fatalf("expected last write to win, got %q", got)
	}
}
