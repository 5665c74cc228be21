package client

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	clients map[int64]Client
}

// NewMemoryRepository builds an in-memory client store for tests and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{nextID: 1001, clients: make(map[int64]Client)}
}

func (r *memoryRepository) Create(_ context.Context, c Client) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.nextID
	r.nextID++
	r.clients[c.ID] = c
	return c.ID, nil
}

func (r *memoryRepository) Get(_ context.Context, id int64) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[id]
	if !ok {
		return Client{}, ErrNotFound
	}
	return c, nil
}

func (r *memoryRepository) All(_ context.Context) ([]Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clients := make([]Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].ID < clients[j].ID })
	return clients, nil
}

func (r *memoryRepository) Update(_ context.Context, id int64, input UpdateInput) error {
	if input.isEmpty() {
		return ErrNoFields
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok {
		return ErrNotFound
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&c.Name, input.Name)
	apply(&c.Phone, input.Phone)
	apply(&c.Occupation, input.Occupation)
	apply(&c.Address, input.Address)
	apply(&c.Photo, input.Photo)
	apply(&c.PassportNumber, input.PassportNumber)
	apply(&c.DriverLicenseNumber, input.DriverLicenseNumber)
	apply(&c.OwnerOfVehicleNumber, input.OwnerOfVehicleNumber)
	apply(&c.BusinessLicenseNumber, input.BusinessLicenseNumber)
	apply(&c.VehicleNumberPlate, input.VehicleNumberPlate)

	r.clients[id] = c
	return nil
}

func (r *memoryRepository) NextID(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nextID, nil
}
