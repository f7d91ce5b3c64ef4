package profile

import "context"

type Repository interface {
	GetByID(ctx context.Context, userID string) (PlayerProfile, bool, error)
	ListByIDs(ctx context.Context, userIDs []string) ([]PlayerProfile, error)
	Upsert(ctx context.Context, p PlayerProfile) error
	Search(ctx context.Context, filter SearchFilter) (SearchPage, error)
}
