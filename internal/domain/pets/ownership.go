package pets

import "context"

// OwnerOf expone el ownerUserID de una mascota.
// interactions lo consume vía su interfaz OwnerLookup, sin depender de *Service.
func (s *Service) OwnerOf(ctx context.Context, petID string) (string, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return "", err
	}
	return p.OwnerUserID, nil
}
