// Package memory keeps stub backend data in process memory. Nothing survives a
// restart.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/duynhne/registro-facial/internal/core/domain"
	"github.com/google/uuid"
)

// ProfileRepository implements domain.ProfileRepository in memory, preserving
// insertion order.
type ProfileRepository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]domain.StoredProfile
}

// NewProfileRepository creates an empty repository
func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{byID: make(map[string]domain.StoredProfile)}
}

// Create stores p, assigning a uuid when p.ID is empty.
func (r *ProfileRepository) Create(ctx context.Context, p domain.StoredProfile) (domain.StoredProfile, error) {
	if err := ctx.Err(); err != nil {
		return domain.StoredProfile{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[p.ID]; exists {
		return domain.StoredProfile{}, fmt.Errorf("create profile %q: id already taken", p.ID)
	}
	r.byID[p.ID] = p
	r.order = append(r.order, p.ID)
	return p, nil
}

// List returns every profile in insertion order
func (r *ProfileRepository) List(ctx context.Context) ([]domain.StoredProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.StoredProfile, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out, nil
}

// Get returns one profile
func (r *ProfileRepository) Get(ctx context.Context, id string) (domain.StoredProfile, error) {
	if err := ctx.Err(); err != nil {
		return domain.StoredProfile{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return domain.StoredProfile{}, fmt.Errorf("get profile %q: %w", id, domain.ErrProfileNotFound)
	}
	return p, nil
}

// Update applies changes keyed by wire field name. Keys that are not profile fields
// are ignored. Either every change applies or none does.
func (r *ProfileRepository) Update(ctx context.Context, id string, changes map[string]any) (domain.StoredProfile, error) {
	if err := ctx.Err(); err != nil {
		return domain.StoredProfile{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return domain.StoredProfile{}, fmt.Errorf("update profile %q: %w", id, domain.ErrProfileNotFound)
	}

	for key, value := range changes {
		if err := apply(&p.Profile, key, value); err != nil {
			return domain.StoredProfile{}, fmt.Errorf("update profile %q: %w", id, err)
		}
	}
	r.byID[id] = p
	return p, nil
}

func apply(p *domain.Profile, key string, value any) error {
	if key == "requisitoriado" {
		flagged, err := toBool(value)
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		p.Requisitoriado = flagged
		return nil
	}

	var target *string
	switch key {
	case domain.FieldNombre:
		target = &p.Nombre
	case domain.FieldApellidos:
		target = &p.Apellidos
	case domain.FieldCodigoEstudiante:
		target = &p.CodigoEstudiante
	case domain.FieldCorreo:
		target = &p.Correo
	case "photo_url":
		target = &p.PhotoURL
	default:
		return nil
	}

	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("field %q: %w", key, domain.ErrInvalidValue)
	}
	*target = s
	return nil
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, domain.ErrInvalidValue
		}
		return parsed, nil
	}
	return false, domain.ErrInvalidValue
}

// Delete removes a profile. Deleting an unknown id is not an error.
func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return nil
	}
	delete(r.byID, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// PhotoStore implements domain.PhotoStore in memory
type PhotoStore struct {
	mu     sync.RWMutex
	photos map[string][]byte
}

// NewPhotoStore creates an empty photo store
func NewPhotoStore() *PhotoStore {
	return &PhotoStore{photos: make(map[string][]byte)}
}

// Put stores a copy of data under name
func (s *PhotoStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.photos[name] = append([]byte(nil), data...)
	s.mu.Unlock()
	return nil
}

// Get returns the photo stored under name
func (s *PhotoStore) Get(ctx context.Context, name string) ([]byte, bool) {
	if ctx.Err() != nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.photos[name]
	return data, ok
}
