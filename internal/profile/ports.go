package profile

import "context"

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=profile

type Repository interface {
	GetByID(ctx context.Context, id string) (Profile, error)
	Update(ctx context.Context, id string, updates map[string]any) error
	ListExcept(ctx context.Context, id string) ([]Profile, error)
}
