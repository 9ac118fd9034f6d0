package service

import (
	"github.com/google/uuid"

	apperrors "blogapi/internal/errors"
	"blogapi/internal/model"
)

// Authorize fails with PermissionDenied unless actorID owns resource.
// Callers must fetch the resource first so that a missing or deleted resource reports NotFound instead.
func Authorize(actorID uuid.UUID, resource model.Owned) error {
	if resource.OwnerID() != actorID {
		return apperrors.New(apperrors.ErrPermissionDenied, "Not authorized")
	}
	return nil
}
