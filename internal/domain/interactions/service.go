package interactions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"virtual-pet/internal/domain/pets"
	"virtual-pet/internal/platform/apperr"
	"virtual-pet/internal/platform/logger"
	"virtual-pet/internal/ports/idempotency"

	"github.com/google/uuid"
)

const (
	DefaultCallTimeout    = 3 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
)

// OwnerLookup evita depender de *pets.Service.
type OwnerLookup interface {
	OwnerOf(ctx context.Context, petID string) (string, error)
}

type Options struct {
	CallTimeout time.Duration
	Now         func() time.Time
	Logger      logger.Logger

	// Idempotency nil => las keys se ignoran.
	Idempotency    idempotency.Store
	IdempotencyTTL time.Duration
}

type Service struct {
	store   Store
	owners  OwnerLookup
	now     func() time.Time
	timeout time.Duration
	log     logger.Logger

	idem    idempotency.Store
	idemTTL time.Duration
}

func NewService(store Store, owners OwnerLookup, opts Options) *Service {
	s := &Service{
		store:   store,
		owners:  owners,
		now:     opts.Now,
		timeout: opts.CallTimeout,
		log:     opts.Logger,
		idem:    opts.Idempotency,
		idemTTL: opts.IdempotencyTTL,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.timeout <= 0 {
		s.timeout = DefaultCallTimeout
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	if s.idemTTL <= 0 {
		s.idemTTL = DefaultIdempotencyTTL
	}
	return s
}

type InteractInput struct {
	Kind Kind

	// nil => DefaultMagnitude del kind.
	Magnitude *int

	// Opcional; misma key (por actor y pet) => misma respuesta sin re-aplicar.
	IdempotencyKey string
}

type Result struct {
	Pet         pets.Pet
	Interaction Interaction
	Replayed    bool
}

// Interact aplica una interacción sobre la mascota y la registra en el log.
func (s *Service) Interact(ctx context.Context, actorUserID, petID string, in InteractInput) (Result, error) {
	actorUserID = strings.TrimSpace(actorUserID)
	if actorUserID == "" {
		return Result{}, apperr.ErrUnauthorized
	}

	// Validación antes de tocar el store.
	kind, err := ParseKind(string(in.Kind))
	if err != nil {
		return Result{}, err
	}
	rule, _ := RuleFor(kind)
	magnitude := rule.DefaultMagnitude
	if in.Magnitude != nil {
		magnitude = *in.Magnitude
	}

	if err := s.authorize(ctx, actorUserID, petID); err != nil {
		return Result{}, err
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" && s.idem != nil {
		scoped := idempotencyKey(actorUserID, petID, key)
		fingerprint := requestFingerprint(kind, magnitude)
		if res, done, err := s.replay(ctx, scoped, fingerprint); done || err != nil {
			return res, err
		}

		res, err := s.apply(ctx, actorUserID, petID, kind, magnitude)
		if err != nil {
			s.settleFailure(ctx, scoped, fingerprint, err)
			return Result{}, err
		}

		s.complete(ctx, scoped, idempotentRecord{Request: fingerprint, Result: &res})
		return res, nil
	}

	return s.apply(ctx, actorUserID, petID, kind, magnitude)
}

func (s *Service) apply(ctx context.Context, actorUserID, petID string, kind Kind, magnitude int) (Result, error) {
	i := Interaction{
		ID:          uuid.NewString(),
		PetID:       petID,
		Kind:        kind,
		Magnitude:   magnitude,
		ActorUserID: actorUserID,
		CreatedAt:   s.now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p, stored, err := s.store.Apply(ctx, i)
	if err != nil {
		return Result{}, apperr.FromContext(err)
	}

	s.log.Info("interaction applied", map[string]any{
		"pet_id":         p.ID,
		"interaction_id": stored.ID,
		"kind":           string(stored.Kind),
		"magnitude":      stored.Magnitude,
		"happiness":      p.Happiness,
		"hunger":         p.Hunger,
	})
	return Result{Pet: p, Interaction: stored}, nil
}

// idempotentRecord es lo que se guarda bajo la key.
// Result nil => el resultado es desconocido (falló con error transitorio).
type idempotentRecord struct {
	Request string
	Result  *Result
}

// replay devuelve done=true si la key ya tiene resultado (o está en curso, con error).
func (s *Service) replay(ctx context.Context, scoped, fingerprint string) (Result, bool, error) {
	payload, started, err := s.idem.Begin(ctx, scoped, s.idemTTL)
	if err != nil {
		return Result{}, true, apperr.Transient(err)
	}
	if started {
		return Result{}, false, nil
	}
	if payload == nil {
		return Result{}, true, fmt.Errorf("%w: idempotency key in progress", apperr.ErrConflict)
	}

	var rec idempotentRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return Result{}, true, err
	}
	if rec.Request != fingerprint {
		return Result{}, true, apperr.Validation("idempotency key reused with a different request")
	}
	if rec.Result == nil {
		return Result{}, true, fmt.Errorf("%w: outcome of idempotency key unknown, check the interaction log", apperr.ErrConflict)
	}

	res := *rec.Result
	res.Replayed = true
	return res, true, nil
}

// settleFailure libera la key solo si el store seguro no aplicó nada.
// Con ErrTransient (timeout, commit cortado) la interacción pudo quedar aplicada:
// la key queda marcada como desconocida y un reintento no vuelve a aplicar.
func (s *Service) settleFailure(ctx context.Context, scoped, fingerprint string, cause error) {
	if errors.Is(cause, apperr.ErrTransient) {
		s.complete(ctx, scoped, idempotentRecord{Request: fingerprint})
		return
	}
	if err := s.idem.Abort(context.WithoutCancel(ctx), scoped); err != nil {
		s.log.Warn("idempotency abort failed", map[string]any{"key": scoped, "error": err.Error()})
	}
}

func (s *Service) complete(ctx context.Context, scoped string, rec idempotentRecord) {
	payload, _ := json.Marshal(rec)
	if err := s.idem.Complete(context.WithoutCancel(ctx), scoped, payload, s.idemTTL); err != nil {
		// Sin registro un reintento con la misma key vuelve a ejecutar.
		s.log.Warn("idempotency complete failed", map[string]any{"key": scoped, "error": err.Error()})
	}
}

// Append registra una interacción en el log sin aplicar su efecto sobre la mascota.
// Uso interno (importaciones, correcciones); la API HTTP aplica siempre vía Interact.
func (s *Service) Append(ctx context.Context, actorUserID, petID string, kind Kind, magnitude int) (Interaction, error) {
	actorUserID = strings.TrimSpace(actorUserID)
	if actorUserID == "" {
		return Interaction{}, apperr.ErrUnauthorized
	}
	k, err := ParseKind(string(kind))
	if err != nil {
		return Interaction{}, err
	}
	if err := s.authorize(ctx, actorUserID, petID); err != nil {
		return Interaction{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stored, err := s.store.Append(ctx, Interaction{
		ID:          uuid.NewString(),
		PetID:       petID,
		Kind:        k,
		Magnitude:   magnitude,
		ActorUserID: actorUserID,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		return Interaction{}, apperr.FromContext(err)
	}
	return stored, nil
}

// Recent lista las últimas interacciones de una mascota del actor.
func (s *Service) Recent(ctx context.Context, actorUserID, petID string, limit int) ([]Interaction, error) {
	actorUserID = strings.TrimSpace(actorUserID)
	if actorUserID == "" {
		return nil, apperr.ErrUnauthorized
	}
	if err := s.authorize(ctx, actorUserID, petID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	items, err := s.store.Recent(ctx, petID, NormalizeLimit(limit))
	if err != nil {
		return nil, apperr.FromContext(err)
	}
	return items, nil
}

// RecentAcrossAllPets lista las últimas interacciones de todas las mascotas del actor.
func (s *Service) RecentAcrossAllPets(ctx context.Context, actorUserID string, limit int) ([]RecentInteraction, error) {
	actorUserID = strings.TrimSpace(actorUserID)
	if actorUserID == "" {
		return nil, apperr.ErrUnauthorized
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	items, err := s.store.RecentByOwner(ctx, actorUserID, NormalizeLimit(limit))
	if err != nil {
		return nil, apperr.FromContext(err)
	}
	return items, nil
}

func (s *Service) authorize(ctx context.Context, actorUserID, petID string) error {
	if strings.TrimSpace(petID) == "" {
		return apperr.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	owner, err := s.owners.OwnerOf(ctx, petID)
	if err != nil {
		return apperr.FromContext(err)
	}
	if owner != actorUserID {
		return apperr.ErrForbidden
	}
	return nil
}

func idempotencyKey(actorUserID, petID, key string) string {
	return "interact:" + actorUserID + ":" + petID + ":" + key
}

// requestFingerprint identifica el pedido ya normalizado (kind + magnitude efectiva).
func requestFingerprint(kind Kind, magnitude int) string {
	return fmt.Sprintf("%s:%d", kind, magnitude)
}
