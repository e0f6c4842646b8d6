package service

import (
	"github.com/minasenanami/wonderful-editor/internal/models"
)

// Owned is a resource that belongs to exactly one user.
type Owned interface {
	OwnerID() uint
}

// AuthorizeMutation allows a write only when identity owns resource. Denial is
// the same NotFound error a missing id produces, so a caller cannot tell
// "not yours" from "does not exist".
func AuthorizeMutation(identity Identity, resource Owned, kind string, id uint) error {
	if identity.IsAnonymous() || resource == nil || identity.UserID != resource.OwnerID() {
		return models.NewNotFoundError(kind, id)
	}
	return nil
}
