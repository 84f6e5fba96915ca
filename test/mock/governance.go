// test/mock/governance.go
package mock

import (
	"context"
	"strings"

	"github.com/stretchr/testify/mock"

	fintrack_errors "github.com/fintrack-app/api/errors"
	"github.com/fintrack-app/api/model"
)

// MockIdentityStore is a mock implementation of governor.IdentityStore
type MockIdentityStore struct {
	mock.Mock
}

func (m *MockIdentityStore) GetIdentity(ctx context.Context, userID string) (model.Identity, *model.Plan, error) {
	args := m.Called(ctx, userID)
	plan, _ := args.Get(1).(*model.Plan)
	return args.Get(0).(model.Identity), plan, args.Error(2)
}

// MockInstanceLoader is a mock implementation of governor.InstanceLoader
type MockInstanceLoader struct {
	mock.Mock
}

func (m *MockInstanceLoader) LoadOwned(ctx context.Context, resource model.Resource, id string) (*model.OwnedRecord, error) {
	args := m.Called(ctx, resource, id)
	record, _ := args.Get(0).(*model.OwnedRecord)
	return record, args.Error(1)
}

// MockCounter is a mock implementation of quota.Counter
type MockCounter struct {
	mock.Mock
}

func (m *MockCounter) CountOwnedBy(ctx context.Context, userID string, resource model.Resource) (uint, error) {
	args := m.Called(ctx, userID, resource)
	return args.Get(0).(uint), args.Error(1)
}

// StaticTokenVerifier resolves fixed bearer tokens to user IDs, bypassing
// real JWT parsing in tests.
type StaticTokenVerifier struct {
	Tokens map[string]string
}

func (v StaticTokenVerifier) Verify(authorization string) (string, error) {
	if authorization == "" {
		return "", fintrack_errors.ErrMissingToken
	}
	token := strings.TrimPrefix(authorization, "Bearer ")
	userID, ok := v.Tokens[token]
	if !ok {
		return "", fintrack_errors.ErrInvalidToken
	}
	return userID, nil
}
