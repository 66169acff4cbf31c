package pets

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"virtual-pet/internal/middleware"
	"virtual-pet/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc))
		pr.Get("/", listPetsHandler(svc))

		// Solo owner
		pr.Get("/{petID}", getPetHandler(svc))
		pr.Patch("/{petID}", updatePetHandler(svc))
		pr.Delete("/{petID}", deletePetHandler(svc))
		pr.Post("/{petID}/age", agePetHandler(svc))
	})
}

// createPetRequest es el cuerpo para crear una mascota. Los stats son opcionales.
type createPetRequest struct {
	Name      string `json:"name"`
	Species   string `json:"species"`
	Age       *int   `json:"age,omitempty"`
	Happiness *int   `json:"happiness,omitempty"`
	Hunger    *int   `json:"hunger,omitempty"`
}

type petResponse struct {
	ID                string    `json:"id"`
	OwnerUserID       string    `json:"owner_user_id"`
	Name              string    `json:"name"`
	Species           string    `json:"species"`
	Age               int       `json:"age"`
	Happiness         int       `json:"happiness"`
	Hunger            int       `json:"hunger"`
	CreatedAt         time.Time `json:"created_at"`
	LastInteractionAt time.Time `json:"last_interaction_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type updatePetRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name    *string `json:"name"`
	Species *string `json:"species"`
}

type agePetRequest struct {
	Years *int `json:"years,omitempty"`
}

// createPetHandler godoc
// @Summary Crear mascota
// @Description Crea una mascota del usuario autenticado. Defaults: happiness 100, hunger 0, age 0.
// @Tags pets
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createPetRequest true "Datos de la mascota"
// @Success 201 {object} petResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 401 {string} string "unauthorized"
// @Router /pets [post]
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.CurrentUserID(r.Context())
		if err != nil {
			apperr.WriteHTTP(w, err)
			return
		}

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), userID, CreateInput{
			Name:      req.Name,
			Species:   req.Species,
			Age:       req.Age,
			Happiness: req.Happiness,
			Hunger:    req.Hunger,
		})
		if err != nil {
			apperr.WriteHTTP(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

// listPetsHandler godoc
// @Summary Listar mis mascotas
// @Tags pets
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {array} petResponse
// @Failure 401 {string} string "unauthorized"
// @Router /pets [get]
func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.CurrentUserID(r.Context())
		if err != nil {
			apperr.WriteHTTP(w, err)
			return
		}

		items, err := svc.ListByOwner(r.Context(), userID)
		if err != nil {
			apperr.WriteHTTP(w, err)
			return
		}

		writeJSON(w, http.StatusOK, lo.Map(items, func(p Pet, _ int) petResponse {
			return toPetResponse(p)
		}))
	}
}

// getPetHandler godoc
// @Summary Obtener mascota
// @Tags pets
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} petResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.CurrentUserID(r.Context())
		if err != nil {
			apperr.WriteHTTP(w, err)
			return
		}

		p, err := svc.GetOwned(r.Context(), chi.URLParam(r, "petID"), userID)
		if err != nil {
			apperr.WriteHTTP(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// updatePetHandler godoc
// @Summary Editar perfil de mascota
// @Description Solo name y species. Los stats cambian únicamente con interacciones.
// @Tags pets
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Param payload body updatePetRequest true "Campos a cambiar"
// @Success 200 {object} petResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /pets/{petID} [patch]
func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.CurrentUserID(r.Context())
		if err != nil {
			apperr.WriteHTTP(w, err)
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req updatePetRequest
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updated, err := svc.UpdateProfile(r.Context(), chi.URLParam(r, "petID"), userID, UpdateProfileInput{
			Name:    req.Name,
			Species: req.Species,
		})
		if err != nil {
			apperr.WriteHTTP(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(updated))
	}
}

// deletePetHandler godoc
// @Summary Eliminar mascota
// @Description El log de interacciones se conserva pero deja de aparecer en las vistas del dueño.
// @Tags pets
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Success 204
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /pets/{petID} [delete]
func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.CurrentUserID(r.Context())
		if err != nil {
			apperr.WriteHTTP(w, err)
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "petID"), userID); err != nil {
			apperr.WriteHTTP(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// agePetHandler godoc
// @Summary Envejecer mascota
// @Description Suma years (por defecto 1) a la edad.
// @Tags pets
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Param payload body agePetRequest false "years >= 1"
// @Success 200 {object} petResponse
// @Failure 400 {string} string "years inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /pets/{petID}/age [post]
func agePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.CurrentUserID(r.Context())
		if err != nil {
			apperr.WriteHTTP(w, err)
			return
		}

		var req agePetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		years := 1
		if req.Years != nil {
			years = *req.Years
		}

		p, err := svc.AdvanceAge(r.Context(), chi.URLParam(r, "petID"), userID, years)
		if err != nil {
			apperr.WriteHTTP(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:                p.ID,
		OwnerUserID:       p.OwnerUserID,
		Name:              p.Name,
		Species:           p.Species,
		Age:               p.Age,
		Happiness:         p.Happiness,
		Hunger:            p.Hunger,
		CreatedAt:         p.CreatedAt,
		LastInteractionAt: p.LastInteractionAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// writeJSON está duplicado en cada módulo (pets/interactions) a propósito;
// extraerlo recién si aparece un tercer consumidor.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
