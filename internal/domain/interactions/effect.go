package interactions

import (
	"fmt"

	"virtual-pet/internal/domain/pets"
	"virtual-pet/internal/platform/apperr"

	"github.com/samber/lo"
)

// span es el ancho del rango; ningún delta útil lo supera.
const span = pets.MaxStat - pets.MinStat

// Clamp acota v a [MinStat, MaxStat].
func Clamp(v int) int {
	return lo.Clamp(v, pets.MinStat, pets.MaxStat)
}

// AddClamped suma delta a current y acota el resultado.
// delta se acota a ±span antes de sumar: con current en rango el resultado es el mismo
// y la suma no puede desbordar.
func AddClamped(current, delta int) int {
	return Clamp(Clamp(current) + lo.Clamp(delta, -span, span))
}

// Delta es el cambio firmado que produce magnitude según la regla.
func (r Rule) Delta(magnitude int) int {
	return r.Sign * lo.Clamp(magnitude, -span, span)
}

// Apply devuelve la mascota resultante de aplicar i. No toca el store.
// Solo cambian el campo de la regla y LastInteractionAt.
func Apply(p pets.Pet, i Interaction) (pets.Pet, error) {
	rule, ok := RuleFor(i.Kind)
	if !ok {
		return pets.Pet{}, apperr.Validation(fmt.Sprintf("unknown interaction kind %q", i.Kind))
	}

	f := rule.Field.target(&p)
	if f == nil {
		return pets.Pet{}, fmt.Errorf("interaction rule for %q targets unknown field %q", i.Kind, rule.Field)
	}
	*f = AddClamped(*f, rule.Delta(i.Magnitude))
	p.LastInteractionAt = i.CreatedAt

	return p, nil
}
