package interactions

import "time"

// Interaction es un registro inmutable de una acción sobre una mascota.
type Interaction struct {
	ID    string
	PetID string

	Kind      Kind
	Magnitude int // delta tal como lo pidió el caller (o el default del kind)

	ActorUserID string

	CreatedAt time.Time

	// Seq lo asigna el store al insertar; solo desempata CreatedAt iguales.
	Seq int64
}

// RecentInteraction agrega el nombre de la mascota para la vista "todas mis mascotas".
type RecentInteraction struct {
	Interaction
	PetName string
}

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// NormalizeLimit aplica default (<= 0) y tope.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Newer define el orden del log: created_at desc, luego seq desc.
func Newer(a, b Interaction) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.Seq > b.Seq
}
