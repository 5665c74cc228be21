package client

import (
	"context"
	"errors"
)

// ErrNameRequired rejects registrations without a name.
var ErrNameRequired = errors.New("name is required")

// Service manages the client lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new client service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register stores a new client and returns it with the assigned identifier.
func (s *Service) Register(ctx context.Context, c Client) (Client, error) {
	if c.Name == "" {
		return Client{}, ErrNameRequired
	}
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return Client{}, err
	}
	c.ID = id
	return c, nil
}

// Get retrieves a client by identifier.
func (s *Service) Get(ctx context.Context, id int64) (Client, error) {
	return s.repo.Get(ctx, id)
}

// All lists every client.
func (s *Service) All(ctx context.Context) ([]Client, error) {
	return s.repo.All(ctx)
}

// Update applies a partial update; only supplied fields overwrite.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) error {
	return s.repo.Update(ctx, id, input)
}

// NextID previews the next client identifier.
func (s *Service) NextID(ctx context.Context) (int64, error) {
	return s.repo.NextID(ctx)
}
