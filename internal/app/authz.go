package app

import (
	"context"
	"errors"
	"fmt"

	"kotobuki_stay/internal/domain"
)

// Authorizer turns a session's user id into a Principal and decides which
// lodgings that principal may manage. It is the only place roles are read.
type Authorizer struct {
	repo domain.LodgingRepository
	dir  domain.DirectoryRepository
}

func NewAuthorizer(r domain.LodgingRepository, d domain.DirectoryRepository) *Authorizer {
	return &Authorizer{repo: r, dir: d}
}

// Resolve loads the profile for userID. A user without a profile is
// treated as signed out.
func (a *Authorizer) Resolve(ctx context.Context, userID string) (domain.Principal, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	p, err := a.dir.GetProfile(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}
	return domain.PrincipalFor(p), nil
}

// ManagedLodging returns the lodging if p may edit it. A missing row and a
// missing owner assignment both yield domain.ErrNotFound so the caller
// cannot discover lodgings it does not manage.
func (a *Authorizer) ManagedLodging(ctx context.Context, p domain.Principal, lodgingID string) (domain.Lodging, error) {
	switch pr := p.(type) {
	case domain.Admin:
		return a.repo.GetLodging(ctx, lodgingID)
	case domain.Owner:
		owns, err := a.repo.IsOwner(ctx, pr.P.ID, lodgingID)
		if err != nil {
			return domain.Lodging{}, fmt.Errorf("ownership %s/%s: %w", pr.P.ID, lodgingID, err)
		}
		if !owns {
			return domain.Lodging{}, domain.ErrNotFound
		}
		return a.repo.GetLodging(ctx, lodgingID)
	default:
		return domain.Lodging{}, domain.ErrUnauthenticated
	}
}

// ManagedLodgings lists everything p may edit, ordered by name.
func (a *Authorizer) ManagedLodgings(ctx context.Context, p domain.Principal) ([]domain.Lodging, error) {
	switch pr := p.(type) {
	case domain.Admin:
		return a.repo.ListLodgings(ctx, domain.LodgingsQuery{})
	case domain.Owner:
		return a.repo.GetLodgingsForUser(ctx, pr.P.ID)
	default:
		return nil, domain.ErrUnauthenticated
	}
}
