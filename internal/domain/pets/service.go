package pets

import (
	"context"
	"strings"
	"time"

	"virtual-pet/internal/platform/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Aliases para que los callers no dependan de apperr directamente.
var (
	ErrInvalidInput = apperr.ErrValidation
	ErrNotFound     = apperr.ErrNotFound
	ErrForbidden    = apperr.ErrForbidden
)

const DefaultCallTimeout = 3 * time.Second

type Options struct {
	// CallTimeout acota cada llamada al store; <= 0 usa DefaultCallTimeout.
	CallTimeout time.Duration
	Now         func() time.Time
}

type Service struct {
	repo     Repository
	now      func() time.Time
	timeout  time.Duration
	validate *validator.Validate
}

func NewService(repo Repository, opts Options) *Service {
	s := &Service{
		repo:     repo,
		now:      opts.Now,
		timeout:  opts.CallTimeout,
		validate: validator.New(),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.timeout <= 0 {
		s.timeout = DefaultCallTimeout
	}
	return s
}

type CreateInput struct {
	Name    string `validate:"required,max=80"`
	Species string `validate:"required,max=40"`

	// nil => default
	Age       *int `validate:"omitempty,min=0,max=2147483647"`
	Happiness *int `validate:"omitempty,min=0,max=100"`
	Hunger    *int `validate:"omitempty,min=0,max=100"`
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Pet, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return Pet{}, apperr.ErrUnauthorized
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Species = strings.TrimSpace(in.Species)
	if err := s.validate.Struct(in); err != nil {
		return Pet{}, apperr.Validation(err.Error())
	}

	now := s.now().UTC()
	p := Pet{
		ID:                uuid.NewString(),
		OwnerUserID:       ownerUserID,
		Name:              in.Name,
		Species:           in.Species,
		Age:               valueOr(in.Age, DefaultAge),
		Happiness:         valueOr(in.Happiness, DefaultHappiness),
		Hunger:            valueOr(in.Hunger, DefaultHunger),
		CreatedAt:         now,
		LastInteractionAt: now,
		UpdatedAt:         now,
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, apperr.FromContext(err)
	}
	return p, nil
}

// GetByID no valida ownership; lo usan otros módulos que ya lo hacen.
func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Pet{}, apperr.FromContext(err)
	}
	return p, nil
}

// GetOwned devuelve la mascota solo si actorUserID es el dueño.
func (s *Service) GetOwned(ctx context.Context, petID, actorUserID string) (Pet, error) {
	if strings.TrimSpace(actorUserID) == "" {
		return Pet{}, apperr.ErrUnauthorized
	}
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}
	if p.OwnerUserID != actorUserID {
		return Pet{}, ErrForbidden
	}
	return p, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, apperr.ErrUnauthorized
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	items, err := s.repo.ListByOwner(ctx, ownerUserID)
	if err != nil {
		return nil, apperr.FromContext(err)
	}
	return items, nil
}

type UpdateProfileInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name    *string
	Species *string
}

func (s *Service) UpdateProfile(ctx context.Context, petID, actorUserID string, in UpdateProfileInput) (Pet, error) {
	p, err := s.GetOwned(ctx, petID, actorUserID)
	if err != nil {
		return Pet{}, err
	}

	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		if v == "" {
			return Pet{}, apperr.Validation("name must not be empty")
		}
		p.Name = v
	}
	if in.Species != nil {
		v := strings.TrimSpace(*in.Species)
		if v == "" {
			return Pet{}, apperr.Validation("species must not be empty")
		}
		p.Species = v
	}
	p.UpdatedAt = s.now().UTC()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, apperr.FromContext(err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, petID, actorUserID string) error {
	p, err := s.GetOwned(ctx, petID, actorUserID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return apperr.FromContext(s.repo.Delete(ctx, p.ID))
}

// AdvanceAge suma years (>= 1) a la edad. La edad nunca decrece ni supera MaxAge.
func (s *Service) AdvanceAge(ctx context.Context, petID, actorUserID string, years int) (Pet, error) {
	if _, err := AddAge(0, years); err != nil {
		return Pet{}, err
	}
	p, err := s.GetOwned(ctx, petID, actorUserID)
	if err != nil {
		return Pet{}, err
	}
	// El store vuelve a chequear: otra llamada pudo avanzar la edad entre medio.
	if _, err := AddAge(p.Age, years); err != nil {
		return Pet{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	updated, err := s.repo.AdvanceAge(ctx, p.ID, years, s.now().UTC())
	if err != nil {
		return Pet{}, apperr.FromContext(err)
	}
	return updated, nil
}

func valueOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
