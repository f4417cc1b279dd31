package service

import (
	"context"
	"errors"

	"github.com/spec-kit/clinic-booking/internal/repository"
	apperrors "github.com/spec-kit/clinic-booking/pkg/util/errorutil"
)

// storeError maps a repository failure onto the error taxonomy.
func storeError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, nil)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict(resource+" already exists", nil)
	case errors.Is(err, context.Canceled):
		return err
	}
	return apperrors.NewRemoteUnavailable("store", err)
}
