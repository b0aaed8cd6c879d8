package profiles

import (
	"context"

	"github.com/google/uuid"

	"github.com/yazbox/yazbox-backend/pkg/db/models"
	pkgerrors "github.com/yazbox/yazbox-backend/pkg/errors"
)

// Fetcher adapts the repository to the session synchronizer's lookup shape.
type Fetcher struct {
	repo Repository
}

// NewFetcher wraps a profiles repository.
func NewFetcher(repo Repository) (*Fetcher, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "profiles repository required")
	}
	return &Fetcher{repo: repo}, nil
}

// FetchProfile looks up a profile by user id.
func (f *Fetcher) FetchProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return f.repo.GetByID(ctx, userID)
}
