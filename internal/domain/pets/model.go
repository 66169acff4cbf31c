package pets

import (
	"fmt"
	"time"

	"virtual-pet/internal/platform/apperr"
)

// Rango cerrado de happiness/hunger.
const (
	MinStat = 0
	MaxStat = 100
)

// MaxAge coincide con el INTEGER de la columna en Postgres.
const MaxAge = 1<<31 - 1

// Valores iniciales de una mascota nueva.
const (
	DefaultHappiness = 100
	DefaultHunger    = 0
	DefaultAge       = 0
)

// Pet representa la mascota virtual y sus atributos numéricos.
type Pet struct {
	ID          string
	OwnerUserID string

	Name    string
	Species string // texto libre, no vacío

	Age       int // monótono, nunca decrece
	Happiness int // [0, 100]
	Hunger    int // [0, 100]

	CreatedAt         time.Time
	LastInteractionAt time.Time
	UpdatedAt         time.Time
}

// InRange indica si v respeta el rango de stats.
func InRange(v int) bool {
	return v >= MinStat && v <= MaxStat
}

// AddAge suma years a age sin desbordar; la edad nunca decrece ni pasa MaxAge.
func AddAge(age, years int) (int, error) {
	if years < 1 {
		return age, apperr.Validation(fmt.Sprintf("years must be >= 1, got %d", years))
	}
	if age < 0 || years > MaxAge-age {
		return age, apperr.Validation(fmt.Sprintf("age %d + %d exceeds %d", age, years, MaxAge))
	}
	return age + years, nil
}

// Valid verifica el invariante de rango de la mascota.
func (p Pet) Valid() bool {
	return InRange(p.Happiness) && InRange(p.Hunger) && p.Age >= 0 && p.Age <= MaxAge
}
