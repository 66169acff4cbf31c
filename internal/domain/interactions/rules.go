package interactions

import (
	"fmt"
	"sort"
	"strings"

	"virtual-pet/internal/domain/pets"
	"virtual-pet/internal/platform/apperr"
)

type Kind string

const (
	KindFeed  Kind = "feed"
	KindPlay  Kind = "play"
	KindClean Kind = "clean"
	KindSleep Kind = "sleep"
)

// Field es el atributo de la mascota que afecta un kind.
// El valor coincide con el nombre de columna en los stores SQL.
type Field string

const (
	FieldHappiness Field = "happiness"
	FieldHunger    Field = "hunger"
)

// Rule describe el efecto de un kind: campo, signo y magnitud por defecto.
type Rule struct {
	Field            Field
	Sign             int // +1 / -1
	DefaultMagnitude int
}

// rules es la única fuente del mapeo kind -> efecto. Agregar un kind = agregar una fila.
var rules = map[Kind]Rule{
	KindFeed:  {Field: FieldHunger, Sign: -1, DefaultMagnitude: 10},
	KindPlay:  {Field: FieldHappiness, Sign: +1, DefaultMagnitude: 15},
	KindClean: {Field: FieldHappiness, Sign: +1, DefaultMagnitude: 5},
	KindSleep: {Field: FieldHappiness, Sign: +1, DefaultMagnitude: 8},
}

func RuleFor(k Kind) (Rule, bool) {
	r, ok := rules[k]
	return r, ok
}

// Kinds devuelve los kinds soportados en orden alfabético.
func Kinds() []Kind {
	out := make([]Kind, 0, len(rules))
	for k := range rules {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseKind normaliza y valida un kind recibido del exterior.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := rules[k]; !ok {
		return "", apperr.Validation(fmt.Sprintf("unknown interaction kind %q", s))
	}
	return k, nil
}

// target devuelve el campo de p que modifica f.
func (f Field) target(p *pets.Pet) *int {
	switch f {
	case FieldHappiness:
		return &p.Happiness
	case FieldHunger:
		return &p.Hunger
	default:
		return nil
	}
}
