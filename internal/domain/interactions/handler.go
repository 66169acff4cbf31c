package interactions

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"virtual-pet/internal/domain/pets"
	"virtual-pet/internal/middleware"
	"virtual-pet/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
)

const IdempotencyKeyHeader = "Idempotency-Key"

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets/{petID}/interactions", func(ir chi.Router) {
		ir.Post("/", interactHandler(svc))
		ir.Get("/", listRecentHandler(svc))
	})

	// Atajos por kind: /pets/{petID}/feed, /play, ...
	for _, k := range Kinds() {
		r.Post("/pets/{petID}/"+string(k), interactKindHandler(svc, k))
	}

	r.Get("/me/interactions", listMyRecentHandler(svc))
}

// interactRequest es el cuerpo para aplicar una interacción.
type interactRequest struct {
	Kind      string `json:"kind" enums:"feed,play,clean,sleep"`
	Magnitude *int   `json:"magnitude,omitempty"`
}

// kindRequest es el cuerpo de los atajos por kind. amount/time son los nombres viejos del cliente móvil.
type kindRequest struct {
	Magnitude *int `json:"magnitude,omitempty"`
	Amount    *int `json:"amount,omitempty"`
	Time      *int `json:"time,omitempty"`
}

// petStateResponse es el estado de la mascota después de la interacción.
type petStateResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Species           string    `json:"species"`
	Age               int       `json:"age"`
	Happiness         int       `json:"happiness"`
	Hunger            int       `json:"hunger"`
	LastInteractionAt time.Time `json:"last_interaction_at"`
}

type interactionResponse struct {
	ID          string    `json:"id"`
	PetID       string    `json:"pet_id"`
	Kind        Kind      `json:"kind"`
	Magnitude   int       `json:"magnitude"`
	ActorUserID string    `json:"actor_user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type recentInteractionResponse struct {
	interactionResponse
	PetName string `json:"pet_name"`
}

type interactResponse struct {
	Pet         petStateResponse    `json:"pet"`
	Interaction interactionResponse `json:"interaction"`
	Replayed    bool                `json:"replayed"`
}

// interactHandler godoc
// @Summary Aplicar interacción
// @Description Aplica feed/play/clean/sleep sobre la mascota y la registra en el log. Solo el dueño. Con `Idempotency-Key` un reintento devuelve la misma respuesta (200) sin volver a aplicar.
// @Tags interactions
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param Idempotency-Key header string false "Clave de idempotencia del cliente"
// @Param petID path string true "ID de la mascota"
// @Param payload body interactRequest true "kind y magnitude opcional"
// @Success 201 {object} interactResponse
// @Success 200 {object} interactResponse "replay"
// @Failure 400 {string} string "invalid json / kind desconocido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Failure 409 {string} string "idempotency key in progress"
// @Failure 503 {string} string "temporarily unavailable"
// @Router /pets/{petID}/interactions [post]
func interactHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.CurrentUserID(r.Context())
		if err != nil {
			apperr.WriteHTTP(w, err)
			return
		}

		var req interactRequest
		if err := decodeOptional(r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		res, err := svc.Interact(r.Context(), userID, chi.URLParam(r, "petID"), InteractInput{
			Kind:           Kind(req.Kind),
			Magnitude:      req.Magnitude,
			IdempotencyKey: r.Header.Get(IdempotencyKeyHeader),
		})
		if err != nil {
			apperr.WriteHTTP(w, err)
			return
		}

		writeInteractResult(w, res)
	}
}

// interactKindHandler godoc
// @Summary Atajo de interacción por kind
// @Description Igual que POST /pets/{petID}/interactions con el kind en el path. Acepta `magnitude` o los nombres viejos `amount`/`time`.
// @Tags interactions
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param Idempotency-Key header string false "Clave de idempotencia del cliente"
// @Param petID path string true "ID de la mascota"
// @Param payload body kindRequest false "magnitude opcional"
// @Success 201 {object} interactResponse
// @Failure 400 {string} string "invalid json"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /pets/{petID}/feed [post]
// @Router /pets/{petID}/play [post]
// @Router /pets/{petID}/clean [post]
// @Router /pets/{petID}/sleep [post]
func interactKindHandler(svc *Service, kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.CurrentUserID(r.Context())
		if err != nil {
			apperr.WriteHTTP(w, err)
			return
		}

		var req kindRequest
		if err := decodeOptional(r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		res, err := svc.Interact(r.Context(), userID, chi.URLParam(r, "petID"), InteractInput{
			Kind:           kind,
			Magnitude:      lo.CoalesceOrEmpty(req.Magnitude, req.Amount, req.Time),
			IdempotencyKey: r.Header.Get(IdempotencyKeyHeader),
		})
		if err != nil {
			apperr.WriteHTTP(w, err)
			return
		}

		writeInteractResult(w, res)
	}
}

// listRecentHandler godoc
// @Summary Últimas interacciones de una mascota
// @Description Devuelve las interacciones más recientes primero. limit por defecto 10, máximo 100.
// @Tags interactions
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Param limit query int false "Máximo a devolver (1-100). Por defecto 10"
// @Success 200 {array} interactionResponse
// @Failure 400 {string} string "limit inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /pets/{petID}/interactions [get]
func listRecentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.CurrentUserID(r.Context())
		if err != nil {
			apperr.WriteHTTP(w, err)
			return
		}

		limit, err := parseLimit(r)
		if err != nil {
			apperr.WriteHTTP(w, err)
			return
		}

		items, err := svc.Recent(r.Context(), userID, chi.URLParam(r, "petID"), limit)
		if err != nil {
			apperr.WriteHTTP(w, err)
			return
		}

		writeJSON(w, http.StatusOK, lo.Map(items, func(i Interaction, _ int) interactionResponse {
			return toInteractionResponse(i)
		}))
	}
}

// listMyRecentHandler godoc
// @Summary Últimas interacciones de todas mis mascotas
// @Description Interacciones de todas las mascotas del usuario, más recientes primero, con el nombre de la mascota.
// @Tags interactions
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param limit query int false "Máximo a devolver (1-100). Por defecto 10"
// @Success 200 {array} recentInteractionResponse
// @Failure 400 {string} string "limit inválido"
// @Failure 401 {string} string "unauthorized"
// @Router /me/interactions [get]
func listMyRecentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.CurrentUserID(r.Context())
		if err != nil {
			apperr.WriteHTTP(w, err)
			return
		}

		limit, err := parseLimit(r)
		if err != nil {
			apperr.WriteHTTP(w, err)
			return
		}

		items, err := svc.RecentAcrossAllPets(r.Context(), userID, limit)
		if err != nil {
			apperr.WriteHTTP(w, err)
			return
		}

		writeJSON(w, http.StatusOK, lo.Map(items, func(i RecentInteraction, _ int) recentInteractionResponse {
			return recentInteractionResponse{
				interactionResponse: toInteractionResponse(i.Interaction),
				PetName:             i.PetName,
			}
		}))
	}
}

func writeInteractResult(w http.ResponseWriter, res Result) {
	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, interactResponse{
		Pet:         toPetStateResponse(res.Pet),
		Interaction: toInteractionResponse(res.Interaction),
		Replayed:    res.Replayed,
	})
}

// parseLimit: ausente => 0 (el service aplica el default).
func parseLimit(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("limit must be an integer")
	}
	return n, nil
}

// decodeOptional acepta body vacío.
func decodeOptional(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func toPetStateResponse(p pets.Pet) petStateResponse {
	return petStateResponse{
		ID:                p.ID,
		Name:              p.Name,
		Species:           p.Species,
		Age:               p.Age,
		Happiness:         p.Happiness,
		Hunger:            p.Hunger,
		LastInteractionAt: p.LastInteractionAt,
	}
}

func toInteractionResponse(i Interaction) interactionResponse {
	return interactionResponse{
		ID:          i.ID,
		PetID:       i.PetID,
		Kind:        i.Kind,
		Magnitude:   i.Magnitude,
		ActorUserID: i.ActorUserID,
		CreatedAt:   i.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
