package profile

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/db"
)

const profilesPath = "profiles"

// FirebaseStore keeps one profile per uid under /profiles/<uid> in the
// Realtime Database.
type FirebaseStore struct {
	client *db.Client
}

func NewFirebaseStore(client *db.Client) *FirebaseStore {
	return &FirebaseStore{client: client}
}

func (s *FirebaseStore) ref(userID string) *db.Ref {
	return s.client.NewRef(profilesPath).Child(userID)
}

func (s *FirebaseStore) Get(ctx context.Context, userID string) (*Profile, error) {
	var p *Profile
	if err := s.ref(userID).Get(ctx, &p); err != nil {
		return nil, fmt.Errorf("error reading profile: %w", err)
	}
	return fromSnapshot(p)
}

// fromSnapshot turns a decoded node into a profile. The database drops
// empty arrays, so lists are restored on read.
func fromSnapshot(p *Profile) (*Profile, error) {
	if p == nil {
		return nil, ErrNotFound
	}
	p.normalize()
	return p, nil
}

// Insert creates the record inside a transaction so a concurrent setup
// cannot overwrite it.
func (s *FirebaseStore) Insert(ctx context.Context, p *Profile) error {
	err := s.ref(p.UserID).Transaction(ctx, func(node db.TransactionNode) (interface{}, error) {
		var current *Profile
		if err := node.Unmarshal(&current); err != nil {
			return nil, err
		}
		if current != nil {
			return nil, ErrAlreadyExists
		}
		return p, nil
	})
	if errors.Is(err, ErrAlreadyExists) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("error creating profile: %w", err)
	}
	return nil
}

// Update overwrites an existing record; the last writer wins.
func (s *FirebaseStore) Update(ctx context.Context, p *Profile) error {
	current, err := s.Get(ctx, p.UserID)
	if err != nil {
		return err
	}
	next := *p
	next.CreatedAt = current.CreatedAt
	if err := s.ref(p.UserID).Set(ctx, next); err != nil {
		return fmt.Errorf("error updating profile: %w", err)
	}
	return nil
}

func (s *FirebaseStore) Ping(ctx context.Context) error {
	var v interface{}
	if err := s.client.NewRef(".info/serverTimeOffset").Get(ctx, &v); err != nil {
		return fmt.Errorf("firebase ping: %w", err)
	}
	return nil
}
