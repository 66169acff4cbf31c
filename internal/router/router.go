package router

import (
	"net/http"
	"time"

	idemmem "virtual-pet/internal/adapters/idempotency/memory"
	mem "virtual-pet/internal/adapters/storage/memory"
	"virtual-pet/internal/domain/interactions"
	"virtual-pet/internal/domain/pets"
	"virtual-pet/internal/middleware"
	"virtual-pet/internal/platform/logger"
	"virtual-pet/internal/ports/auth"
	"virtual-pet/internal/ports/idempotency"

	_ "virtual-pet/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // nil => modo dev (X-Debug-User-ID)
	Logger       logger.Logger

	// Pets e Interactions deben venir del mismo store para que Apply vea las mismas mascotas.
	// Ambos nil => store in-memory.
	Pets         pets.Repository
	Interactions interactions.Store

	// nil => in-memory.
	Idempotency    idempotency.Store
	IdempotencyTTL time.Duration

	// nil => sin rate limit.
	RateLimiter *middleware.RateLimiter

	CallTimeout    time.Duration
	RequestTimeout time.Duration
	Now            func() time.Time
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))
	r.Use(middleware.RequestLogger(log))

	r.Use(middleware.AuthContext(opts.AuthVerifier, log))
	if opts.RequestTimeout > 0 {
		r.Use(chimw.Timeout(opts.RequestTimeout))
	}
	if opts.RateLimiter != nil {
		r.Use(opts.RateLimiter.Middleware)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	petRepo, store := opts.Pets, opts.Interactions
	if petRepo == nil || store == nil {
		m := mem.New()
		petRepo, store = m.Pets(), m.Interactions()
	}

	idem := opts.Idempotency
	if idem == nil {
		idem = idemmem.New()
	}

	petsSvc := pets.NewService(petRepo, pets.Options{
		CallTimeout: opts.CallTimeout,
		Now:         opts.Now,
	})
	interactionsSvc := interactions.NewService(store, petsSvc, interactions.Options{
		CallTimeout:    opts.CallTimeout,
		Now:            opts.Now,
		Logger:         log.With(map[string]any{"module": "interactions"}),
		Idempotency:    idem,
		IdempotencyTTL: opts.IdempotencyTTL,
	})

	pets.RegisterRoutes(r, petsSvc)
	interactions.RegisterRoutes(r, interactionsSvc)

	return r
}
