package mocks

import (
	"context"

	"dat-catalog/core/items"

	"github.com/stretchr/testify/mock"
)

// Store is a mock implementation of catalog.Store
type Store struct {
	mock.Mock
}

func (m *Store) EnsureKey(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *Store) Fetch(ctx context.Context, key string) ([]*items.Item, error) {
	args := m.Called(ctx, key)
	if list, ok := args.Get(0).([]*items.Item); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) Replace(ctx context.Context, key string, list []*items.Item) error {
	args := m.Called(ctx, key, list)
	return args.Error(0)
}

func (m *Store) DeleteKey(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *Store) Keys(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if keys, ok := args.Get(0).([]string); ok {
		return keys, args.Error(1)
	}
	return nil, args.Error(1)
}
