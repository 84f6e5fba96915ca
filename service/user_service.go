// api/service/user_service.go
package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/fintrack-app/api/dao"
	"github.com/fintrack-app/api/model"
)

type IUserService interface {
	GetProfile(ctx context.Context, userID string) (*model.User, error)
	GetUsage(ctx context.Context, userID string) (map[model.Resource]uint, error)
}

type UserService struct {
	identityDAO *dao.IdentityDAO
}

func NewUserService(identityDAO *dao.IdentityDAO) *UserService {
	return &UserService{identityDAO: identityDAO}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	return s.identityDAO.GetUser(ctx, userID)
}

// GetUsage reports how much of each gated resource the user currently owns;
// the web client shows it next to the plan ceilings. Counts are independent
// reads, so they run concurrently.
func (s *UserService) GetUsage(ctx context.Context, userID string) (map[model.Resource]uint, error) {
	usage := make(map[model.Resource]uint, len(model.GatedResources))
	g, gctx := errgroup.WithContext(ctx)
	var results [3]uint
	for i, resource := range model.GatedResources {
		i, resource := i, resource
		g.Go(func() error {
			count, err := s.identityDAO.CountOwnedBy(gctx, userID, resource)
			if err != nil {
				return err
			}
			results[i] = count
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, resource := range model.GatedResources {
		usage[resource] = results[i]
	}
	return usage, nil
}
