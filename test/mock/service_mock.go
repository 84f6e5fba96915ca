// test/mock/service_mock.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fintrack-app/api/model"
)

// MockResourceService is a mock implementation of service.IResourceService
type MockResourceService struct {
	mock.Mock
}

func (m *MockResourceService) List(ctx context.Context, resource model.Resource, ownerID string) ([]model.OwnedRecord, error) {
	args := m.Called(ctx, resource, ownerID)
	records, _ := args.Get(0).([]model.OwnedRecord)
	return records, args.Error(1)
}

func (m *MockResourceService) Create(ctx context.Context, resource model.Resource, record model.OwnedRecord) (*model.OwnedRecord, error) {
	args := m.Called(ctx, resource, record)
	created, _ := args.Get(0).(*model.OwnedRecord)
	return created, args.Error(1)
}

func (m *MockResourceService) Update(ctx context.Context, resource model.Resource, record model.OwnedRecord) (*model.OwnedRecord, error) {
	args := m.Called(ctx, resource, record)
	updated, _ := args.Get(0).(*model.OwnedRecord)
	return updated, args.Error(1)
}

func (m *MockResourceService) Delete(ctx context.Context, resource model.Resource, id string) error {
	args := m.Called(ctx, resource, id)
	return args.Error(0)
}

func (m *MockResourceService) SelectOptions(ctx context.Context, resource model.Resource, ownerID string) ([]model.SelectOption, error) {
	args := m.Called(ctx, resource, ownerID)
	options, _ := args.Get(0).([]model.SelectOption)
	return options, args.Error(1)
}

func (m *MockResourceService) Balance(ctx context.Context, accountID string) (float64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(float64), args.Error(1)
}
