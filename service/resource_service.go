// api/service/resource_service.go
package service

import (
	"context"

	"github.com/fintrack-app/api/dao"
	"github.com/fintrack-app/api/model"
)

// IResourceService is the domain side of the governed CRUD routes. The
// governor never inspects it; it only runs after every pipeline stage has
// passed.
type IResourceService interface {
	List(ctx context.Context, resource model.Resource, ownerID string) ([]model.OwnedRecord, error)
	Create(ctx context.Context, resource model.Resource, record model.OwnedRecord) (*model.OwnedRecord, error)
	Update(ctx context.Context, resource model.Resource, record model.OwnedRecord) (*model.OwnedRecord, error)
	Delete(ctx context.Context, resource model.Resource, id string) error
	SelectOptions(ctx context.Context, resource model.Resource, ownerID string) ([]model.SelectOption, error)
	Balance(ctx context.Context, accountID string) (float64, error)
}

type ResourceService struct {
	resourceDAO *dao.ResourceDAO
}

func NewResourceService(resourceDAO *dao.ResourceDAO) *ResourceService {
	return &ResourceService{resourceDAO: resourceDAO}
}

func (s *ResourceService) List(ctx context.Context, resource model.Resource, ownerID string) ([]model.OwnedRecord, error) {
	return s.resourceDAO.List(ctx, resource, ownerID)
}

func (s *ResourceService) Create(ctx context.Context, resource model.Resource, record model.OwnedRecord) (*model.OwnedRecord, error) {
	return s.resourceDAO.Create(ctx, resource, record)
}

func (s *ResourceService) Update(ctx context.Context, resource model.Resource, record model.OwnedRecord) (*model.OwnedRecord, error) {
	return s.resourceDAO.Update(ctx, resource, record)
}

func (s *ResourceService) Delete(ctx context.Context, resource model.Resource, id string) error {
	return s.resourceDAO.Delete(ctx, resource, id)
}

func (s *ResourceService) SelectOptions(ctx context.Context, resource model.Resource, ownerID string) ([]model.SelectOption, error) {
	records, err := s.resourceDAO.List(ctx, resource, ownerID)
	if err != nil {
		return nil, err
	}
	options := make([]model.SelectOption, 0, len(records))
	for _, record := range records {
		options = append(options, model.SelectOption{ID: record.ID, Name: record.Name})
	}
	return options, nil
}

func (s *ResourceService) Balance(ctx context.Context, accountID string) (float64, error) {
	return s.resourceDAO.Balance(ctx, accountID)
}
