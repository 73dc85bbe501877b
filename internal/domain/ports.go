package domain

import (
	"context"
	"time"
)

// LodgingRepository is the narrow surface the dashboard and editors use.
type LodgingRepository interface {
	// Read paths
	GetLodging(ctx context.Context, id string) (Lodging, error)
	ListLodgings(ctx context.Context, q LodgingsQuery) ([]Lodging, error)
	// GetLodgingsForUser joins through owner_lodgings, ordered by name.
	GetLodgingsForUser(ctx context.Context, userID string) ([]Lodging, error)
	IsOwner(ctx context.Context, userID, lodgingID string) (bool, error)

	// Write paths; both return the row as stored after the update.
	UpdateVacancy(ctx context.Context, id string, vacancies int, on time.Time) (Lodging, error)
	UpdateLodgingDetails(ctx context.Context, id string, d LodgingDetails) (Lodging, error)
}

// DirectoryRepository serves reference data and identities.
type DirectoryRepository interface {
	ListServices(ctx context.Context) ([]Service, error)
	GetProfile(ctx context.Context, userID string) (Profile, error)
	FindCredentials(ctx context.Context, email string) (Credentials, error)
}

// SeedRepository is only used by the seeder.
type SeedRepository interface {
	UpsertLodging(ctx context.Context, l Lodging) error
	UpsertService(ctx context.Context, s Service) error
	UpsertProfile(ctx context.Context, p Profile, passwordHash string) error
	AssignOwner(ctx context.Context, a OwnerAssignment) error
}

// Store is everything a storage backend implements.
type Store interface {
	LodgingRepository
	DirectoryRepository
	SeedRepository
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type LodgingsQuery struct {
	PublishedOnly bool
	Limit         int // 0 = no limit
}
